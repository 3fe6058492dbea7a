package model

import "sort"

// SourceMixed marks a field whose current value was shaped by more than one
// extractor.
const SourceMixed = "mixed"

// FieldProvenance records which extractor(s) supplied the current value of a
// field. Sources is populated only when Source == SourceMixed, and holds the
// sorted set of all contributing extractor names.
type FieldProvenance struct {
	Source  string   `json:"source"`
	Sources []string `json:"sources,omitempty"`
	URL     string   `json:"url"`
}

// Merge folds a new contributing source into the provenance record. A repeat
// contribution from an already-recorded source is a no-op; a contribution
// from a second distinct source converts the record to mixed.
func (p FieldProvenance) Merge(source string) FieldProvenance {
	if p.Source == source {
		return p
	}
	if p.Source == SourceMixed {
		for _, s := range p.Sources {
			if s == source {
				return p
			}
		}
		merged := make([]string, 0, len(p.Sources)+1)
		merged = append(merged, p.Sources...)
		merged = append(merged, source)
		sort.Strings(merged)
		return FieldProvenance{Source: SourceMixed, Sources: merged, URL: p.URL}
	}
	merged := []string{p.Source, source}
	sort.Strings(merged)
	return FieldProvenance{Source: SourceMixed, Sources: merged, URL: p.URL}
}
