package enrich

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citypulse/harvester/internal/extract"
	"github.com/citypulse/harvester/internal/model"
)

// stubExtractor counts calls and returns a canned partial.
type stubExtractor struct {
	name    string
	partial extract.Partial
	calls   int
}

func (s *stubExtractor) Name() string { return s.name }

func (s *stubExtractor) Extract(ctx context.Context, in extract.Input) (extract.Partial, error) {
	s.calls++
	return s.partial, nil
}

func newStub(name string) *stubExtractor {
	return &stubExtractor{name: name, partial: extract.NewPartial()}
}

// stubbedEnricher wires an Enricher entirely out of stubs.
func stubbedEnricher() (*Enricher, map[string]*stubExtractor) {
	stubs := map[string]*stubExtractor{
		extract.NameJSONLD:    newStub(extract.NameJSONLD),
		extract.NameOpenGraph: newStub(extract.NameOpenGraph),
		extract.NameSelectors: newStub(extract.NameSelectors),
		extract.NameHeuristic: newStub(extract.NameHeuristic),
		extract.NameLLM:       newStub(extract.NameLLM),
	}
	e := &Enricher{
		JSONLD:    stubs[extract.NameJSONLD],
		OpenGraph: stubs[extract.NameOpenGraph],
		Heuristic: stubs[extract.NameHeuristic],
		LLM:       stubs[extract.NameLLM],
		NewSelectors: func(model.SelectorSet) extract.Extractor {
			return stubs[extract.NameSelectors]
		},
	}
	return e, stubs
}

func TestEnrichDetail_JazzNightScenario(t *testing.T) {
	html := `<html><head><script type="application/ld+json">
	{"@type": "MusicEvent", "name": "Jazz Night", "image": "poster.jpg"}
	</script></head><body></body></html>`
	pageURL := "https://venue.example/events/1"

	e := New(nil)
	rec, err := e.EnrichDetail(context.Background(), html, pageURL, "venue", model.DetailConfig{
		Enabled:      true,
		UseJSONLD:    true,
		UseOpenGraph: true,
	})
	require.NoError(t, err)
	require.False(t, rec.Skip)

	assert.Equal(t, "Jazz Night", rec.String(model.FieldTitle))
	assert.Equal(t, "https://venue.example/events/poster.jpg", rec.String(model.FieldImageURL))

	require.Len(t, rec.Images, 1)
	img := rec.Images[0]
	assert.Equal(t, "https://venue.example/events/poster.jpg", img.URL)
	assert.True(t, img.IsPrimary)
	assert.Equal(t, "jsonld", img.Source)
	assert.Equal(t, 0.90, img.Confidence)

	prov := rec.Provenance[model.FieldTitle]
	assert.Equal(t, "jsonld", prov.Source)
	assert.Equal(t, pageURL, prov.URL)
	assert.Equal(t, model.ExtractionVersion, rec.ExtractionVersion)
}

func TestEnrichDetail_DescriptionConflictScenario(t *testing.T) {
	e, stubs := stubbedEnricher()

	short := "Jazz quartet plays downtown tonight."
	long := ""
	for len(long) < 200 {
		long += "An extended description of the night. "
	}
	long = long[:200]

	stubs[extract.NameJSONLD].partial = partialWith(map[model.FieldKey]any{
		model.FieldDescription: short,
	})
	stubs[extract.NameHeuristic].partial = partialWith(map[model.FieldKey]any{
		model.FieldDescription: long,
	})

	rec, err := e.EnrichDetail(context.Background(), "<html></html>", testPage, "venue", model.DetailConfig{
		UseJSONLD:    true,
		UseHeuristic: true,
	})
	require.NoError(t, err)

	assert.Equal(t, long, rec.String(model.FieldDescription))
	// Longer value won, but confidence tracks the max trust tier seen.
	assert.Equal(t, 0.90, rec.Confidence[model.FieldDescription])
	assert.Equal(t, model.SourceMixed, rec.Provenance[model.FieldDescription].Source)
}

func TestEnrichDetail_JSONLDOnlyShortCircuit(t *testing.T) {
	e, stubs := stubbedEnricher()

	rec, err := e.EnrichDetail(context.Background(), "<html><body>no structured data</body></html>", testPage, "venue", model.DetailConfig{
		UseJSONLD:    true,
		UseOpenGraph: true,
		UseHeuristic: true,
		UseLLM:       true,
		JSONLDOnly:   true,
	})
	require.NoError(t, err)

	assert.True(t, rec.Skip)
	assert.Equal(t, model.ExtractionVersion, rec.ExtractionVersion)
	assert.Empty(t, rec.Fields)

	assert.Equal(t, 1, stubs[extract.NameJSONLD].calls)
	assert.Equal(t, 0, stubs[extract.NameOpenGraph].calls)
	assert.Equal(t, 0, stubs[extract.NameSelectors].calls)
	assert.Equal(t, 0, stubs[extract.NameHeuristic].calls)
	assert.Equal(t, 0, stubs[extract.NameLLM].calls)
}

func TestEnrichDetail_JSONLDOnlyWithData(t *testing.T) {
	e, stubs := stubbedEnricher()
	stubs[extract.NameJSONLD].partial = partialWith(map[model.FieldKey]any{
		model.FieldTitle: "Jazz Night",
	})

	rec, err := e.EnrichDetail(context.Background(), "<html></html>", testPage, "venue", model.DetailConfig{
		UseJSONLD:  true,
		UseLLM:     true,
		JSONLDOnly: true,
	})
	require.NoError(t, err)

	assert.False(t, rec.Skip)
	assert.Equal(t, "Jazz Night", rec.String(model.FieldTitle))
	assert.Equal(t, 0, stubs[extract.NameLLM].calls)
}

func TestEnrichDetail_LLMSkippedWhenCovered(t *testing.T) {
	e, stubs := stubbedEnricher()
	stubs[extract.NameJSONLD].partial = partialWith(map[model.FieldKey]any{
		model.FieldDescription: "A sixty character description of the jazz night downtownxyz",
		model.FieldImageURL:    "https://venue.example/poster.jpg",
		model.FieldTicketURL:   "https://tickets.example/buy",
		model.FieldStartTime:   "2026-09-01T20:00:00Z",
		model.FieldIsFree:      true,
	})

	_, err := e.EnrichDetail(context.Background(), "<html></html>", testPage, "venue", model.DetailConfig{
		UseJSONLD: true,
		UseLLM:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stubs[extract.NameLLM].calls)
}

func TestEnrichDetail_LLMRunsWhenFieldMissing(t *testing.T) {
	e, stubs := stubbedEnricher()
	// Everything but pricing present.
	stubs[extract.NameJSONLD].partial = partialWith(map[model.FieldKey]any{
		model.FieldDescription: "A sixty character description of the jazz night downtownxyz",
		model.FieldImageURL:    "https://venue.example/poster.jpg",
		model.FieldTicketURL:   "https://tickets.example/buy",
		model.FieldStartTime:   "2026-09-01T20:00:00Z",
	})

	_, err := e.EnrichDetail(context.Background(), "<html></html>", testPage, "venue", model.DetailConfig{
		UseJSONLD: true,
		UseLLM:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stubs[extract.NameLLM].calls)
}

func TestEnrichDetail_LLMDisabledByConfig(t *testing.T) {
	e, stubs := stubbedEnricher()

	_, err := e.EnrichDetail(context.Background(), "<html></html>", testPage, "venue", model.DetailConfig{
		UseJSONLD: true,
		UseLLM:    false,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, stubs[extract.NameLLM].calls)
}

func TestEnrichDetail_ShortDescriptionStillNeedsLLM(t *testing.T) {
	e, stubs := stubbedEnricher()
	// Exactly 50 chars is not "more than 50".
	desc := "12345678901234567890123456789012345678901234567890"
	require.Len(t, desc, 50)
	stubs[extract.NameJSONLD].partial = partialWith(map[model.FieldKey]any{
		model.FieldDescription: desc,
		model.FieldImageURL:    "https://venue.example/poster.jpg",
		model.FieldTicketURL:   "https://tickets.example/buy",
		model.FieldStartTime:   "2026-09-01T20:00:00Z",
		model.FieldIsFree:      true,
	})

	_, err := e.EnrichDetail(context.Background(), "<html></html>", testPage, "venue", model.DetailConfig{
		UseJSONLD: true,
		UseLLM:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stubs[extract.NameLLM].calls)
}

func TestEnrichDetail_EmptyHTMLShortCircuits(t *testing.T) {
	e, stubs := stubbedEnricher()

	rec, err := e.EnrichDetail(context.Background(), "   ", testPage, "venue", model.DetailConfig{
		UseJSONLD: true,
	})
	require.NoError(t, err)
	assert.False(t, rec.Skip)
	assert.Empty(t, rec.Fields)
	assert.Equal(t, 0, stubs[extract.NameJSONLD].calls)
}

func TestEnrichDetail_RunOrderFixed(t *testing.T) {
	e, _ := stubbedEnricher()

	var order []string
	e.JSONLD = &namedTrace{name: extract.NameJSONLD, order: &order}
	e.OpenGraph = &namedTrace{name: extract.NameOpenGraph, order: &order}
	e.Heuristic = &namedTrace{name: extract.NameHeuristic, order: &order}
	e.LLM = &namedTrace{name: extract.NameLLM, order: &order}
	e.NewSelectors = func(model.SelectorSet) extract.Extractor {
		return &namedTrace{name: extract.NameSelectors, order: &order}
	}

	_, err := e.EnrichDetail(context.Background(), "<html></html>", testPage, "venue", model.DetailConfig{
		UseJSONLD:    true,
		UseOpenGraph: true,
		Selectors:    model.SelectorSet{Title: "h1"},
		UseHeuristic: true,
		UseLLM:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"jsonld", "open_graph", "selectors", "heuristic", "llm"}, order)
}

// namedTrace appends its name to a shared order slice on every call.
type namedTrace struct {
	name  string
	order *[]string
}

func (n *namedTrace) Name() string { return n.name }

func (n *namedTrace) Extract(ctx context.Context, in extract.Input) (extract.Partial, error) {
	*n.order = append(*n.order, n.name)
	return extract.NewPartial(), nil
}
