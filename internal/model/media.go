package model

// ImageRecord is one deduplicated image candidate collected during
// enrichment. Records are keyed by normalized absolute URL and keep the
// insertion order of first sighting.
type ImageRecord struct {
	URL        string  `json:"url"`
	Width      int     `json:"width,omitempty"`
	Height     int     `json:"height,omitempty"`
	Type       string  `json:"type,omitempty"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
	IsPrimary  bool    `json:"is_primary"`
}

// LinkRecord is one deduplicated outbound link candidate (ticket pages,
// streaming links). Dedup key is (lowercased type, normalized URL): the same
// URL under two different types stays as two records.
type LinkRecord struct {
	Type       string  `json:"type"`
	URL        string  `json:"url"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}
