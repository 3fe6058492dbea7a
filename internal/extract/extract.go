// Package extract holds the five detail-page extractors. Each one is a
// stateless pass from raw HTML to a partial field set; cross-extractor
// conflict resolution lives in the enrich package.
package extract

import (
	"context"

	"github.com/citypulse/harvester/internal/model"
)

// Extractor names, as recorded in field provenance.
const (
	NameJSONLD    = "jsonld"
	NameSelectors = "selectors"
	NameOpenGraph = "open_graph"
	NameHeuristic = "heuristic"
	NameLLM       = "llm"
)

// Trust tiers. The tier is stamped into field confidence whenever the
// extractor changes a field, and decides which source "wins" bookkeeping-wise
// on media dedup. It never decides which value wins.
const (
	ConfidenceJSONLD    = 0.90
	ConfidenceSelectors = 0.80
	ConfidenceOpenGraph = 0.65
	ConfidenceHeuristic = 0.55
	ConfidenceLLM       = 0.50
)

// tiers maps extractor name to trust tier.
var tiers = map[string]float64{
	NameJSONLD:    ConfidenceJSONLD,
	NameSelectors: ConfidenceSelectors,
	NameOpenGraph: ConfidenceOpenGraph,
	NameHeuristic: ConfidenceHeuristic,
	NameLLM:       ConfidenceLLM,
}

// TierFor returns the trust tier for an extractor name, 0 for unknown names.
func TierFor(name string) float64 {
	return tiers[name]
}

// Input is the page context shared by every extractor in one enrichment call.
type Input struct {
	HTML    string
	PageURL string
	Source  string
}

// ImageCandidate is one image surfaced by an extractor, before dedup and URL
// normalization.
type ImageCandidate struct {
	URL    string
	Width  int
	Height int
	Type   string
}

// LinkCandidate is one outbound link surfaced by an extractor.
type LinkCandidate struct {
	Type string
	URL  string
}

// Partial is the output of a single extractor: a field subset plus any
// multi-valued image/link candidates beyond the scalar fields.
type Partial struct {
	Fields map[model.FieldKey]any
	Images []ImageCandidate
	Links  []LinkCandidate
}

// NewPartial returns an empty Partial with an allocated field map.
func NewPartial() Partial {
	return Partial{Fields: make(map[model.FieldKey]any)}
}

// Set stores a field value, dropping empty strings and nils.
func (p Partial) Set(key model.FieldKey, value any) {
	if value == nil {
		return
	}
	if s, ok := value.(string); ok && s == "" {
		return
	}
	p.Fields[key] = value
}

// Empty reports whether the extractor found nothing at all.
func (p Partial) Empty() bool {
	return len(p.Fields) == 0 && len(p.Images) == 0 && len(p.Links) == 0
}

// Extractor produces a partial field set from one HTML page via one specific
// technique. Implementations fail soft: "field not found" is an empty
// Partial, never an error. Errors are reserved for real I/O failure (the LLM
// call) and are treated by the engine as an empty contribution.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, in Input) (Partial, error)
}
