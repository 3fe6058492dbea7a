// Package enrich merges the output of the extraction stack into one
// normalized event record with per-field provenance and confidence.
package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/citypulse/harvester/internal/extract"
	"github.com/citypulse/harvester/internal/model"
)

// llmMinDescriptionLen is the description length below which the draft still
// counts as missing a description for LLM gating.
const llmMinDescriptionLen = 50

// Enricher runs the enabled extractors in a fixed order and folds their
// partial outputs into one record. The extractor fields are swappable for
// tests; New wires the real implementations.
type Enricher struct {
	JSONLD       extract.Extractor
	OpenGraph    extract.Extractor
	Heuristic    extract.Extractor
	LLM          extract.Extractor
	NewSelectors func(model.SelectorSet) extract.Extractor
}

// New creates an Enricher with the standard extraction stack. llm may be nil
// when no LLM client is configured; use_llm profiles then skip the fallback.
func New(llm extract.Extractor) *Enricher {
	return &Enricher{
		JSONLD:    extract.JSONLDExtractor{},
		OpenGraph: extract.OpenGraphExtractor{},
		Heuristic: extract.HeuristicExtractor{},
		LLM:       llm,
		NewSelectors: func(set model.SelectorSet) extract.Extractor {
			return extract.NewSelectorExtractor(set)
		},
	}
}

// EnrichDetail extracts one detail page into a normalized event record.
// Absence of data is the steady state: extractor failures contribute
// nothing, and the call never errors for missing or malformed fields. An
// empty HTML string short-circuits to an empty record.
func (e *Enricher) EnrichDetail(ctx context.Context, html, pageURL, source string, cfg model.DetailConfig) (*model.EventRecord, error) {
	draft := NewDraft(pageURL)
	if strings.TrimSpace(html) == "" {
		return draft.Finalize(), nil
	}

	in := extract.Input{HTML: html, PageURL: pageURL, Source: source}

	if cfg.JSONLDOnly {
		p := e.run(ctx, e.JSONLD, in)
		if p.Empty() {
			// Explicit skip: "nothing here", distinct from a mostly-empty
			// event. No other extractor runs.
			return &model.EventRecord{Skip: true, ExtractionVersion: model.ExtractionVersion}, nil
		}
		draft.Apply(e.JSONLD.Name(), extract.TierFor(e.JSONLD.Name()), p)
		return draft.Finalize(), nil
	}

	if cfg.UseJSONLD {
		e.runInto(ctx, draft, e.JSONLD, in)
	}
	if cfg.UseOpenGraph {
		e.runInto(ctx, draft, e.OpenGraph, in)
	}
	if !cfg.Selectors.Empty() {
		e.runInto(ctx, draft, e.NewSelectors(cfg.Selectors), in)
	}
	if cfg.UseHeuristic {
		e.runInto(ctx, draft, e.Heuristic, in)
	}

	if cfg.UseLLM && e.LLM != nil && needsLLM(draft) {
		e.runInto(ctx, draft, e.LLM, in)
	}

	return draft.Finalize(), nil
}

// runInto runs an extractor and folds its output into the draft.
func (e *Enricher) runInto(ctx context.Context, draft *Draft, ex extract.Extractor, in extract.Input) {
	p := e.run(ctx, ex, in)
	draft.Apply(ex.Name(), extract.TierFor(ex.Name()), p)
}

// run executes one extractor, converting failure into an empty contribution.
func (e *Enricher) run(ctx context.Context, ex extract.Extractor, in extract.Input) extract.Partial {
	p, err := ex.Extract(ctx, in)
	if err != nil {
		zap.L().Warn("enrich: extractor failed",
			zap.String("extractor", ex.Name()),
			zap.String("url", in.PageURL),
			zap.Error(err),
		)
		return extract.NewPartial()
	}
	if p.Fields == nil {
		p.Fields = make(map[model.FieldKey]any)
	}
	return p
}

// needsLLM decides whether the LLM fallback is worth a call: it runs only
// when at least one of the five coverage conditions is still unmet after the
// cheaper extractors. All five are always checked.
func needsLLM(d *Draft) bool {
	hasDescription := len(d.fieldString(model.FieldDescription)) > llmMinDescriptionLen
	hasImage := d.hasField(model.FieldImageURL) || len(d.imageOrder) > 0
	hasTicket := d.hasField(model.FieldTicketURL)
	hasStart := d.hasField(model.FieldStartTime)
	hasPricing := d.hasField(model.FieldPriceMin) || d.hasField(model.FieldIsFree)

	return !hasDescription || !hasImage || !hasTicket || !hasStart || !hasPricing
}
