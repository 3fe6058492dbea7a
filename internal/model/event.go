package model

import "time"

// ExtractionVersion tags every finalized record with the pipeline revision
// that produced it, so backfills can tell stale extractions apart.
const ExtractionVersion = "detail-v2.3"

// EventRecord is the finalized output of one detail-page enrichment call:
// the merged field values plus per-field provenance and confidence sidecars.
// Skip is set (with everything else empty) when a jsonld_only source yielded
// no structured data — the caller should not persist such a record.
type EventRecord struct {
	Fields            map[FieldKey]any             `json:"fields"`
	Images            []ImageRecord                `json:"images,omitempty"`
	Links             []LinkRecord                 `json:"links,omitempty"`
	Provenance        map[FieldKey]FieldProvenance `json:"field_provenance"`
	Confidence        map[FieldKey]float64         `json:"field_confidence"`
	ExtractionVersion string                       `json:"extraction_version"`
	Skip              bool                         `json:"_skip,omitempty"`
}

// String returns the field value as a string, or "" when absent or not a
// string.
func (r *EventRecord) String(key FieldKey) string {
	if r == nil || r.Fields == nil {
		return ""
	}
	s, _ := r.Fields[key].(string)
	return s
}

// Has reports whether the field carries a non-nil value.
func (r *EventRecord) Has(key FieldKey) bool {
	if r == nil || r.Fields == nil {
		return false
	}
	v, ok := r.Fields[key]
	return ok && v != nil
}

// Event is one persisted event row.
type Event struct {
	ID          string      `json:"id"`
	SourceName  string      `json:"source_name"`
	Title       string      `json:"title"`
	StartTime   *time.Time  `json:"start_time,omitempty"`
	VenueID     string      `json:"venue_id,omitempty"`
	ContentHash string      `json:"content_hash"`
	Record      EventRecord `json:"record"`
	CreatedAt   time.Time   `json:"created_at"`
}
