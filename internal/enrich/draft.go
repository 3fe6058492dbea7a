package enrich

import (
	"strings"

	"github.com/citypulse/harvester/internal/extract"
	"github.com/citypulse/harvester/internal/model"
)

// linkKey dedups collected links by (lowercased type, normalized URL). The
// same URL under two different types stays as two records.
type linkKey struct {
	typ string
	url string
}

// Draft is the mutable accumulator for one enrichment call. Each extractor's
// partial output is folded in via Apply; Finalize materializes the record.
// A Draft has no identity beyond the call that created it.
type Draft struct {
	pageURL    string
	fields     map[model.FieldKey]any
	provenance map[model.FieldKey]model.FieldProvenance
	confidence map[model.FieldKey]float64

	images     map[string]*model.ImageRecord
	imageOrder []string
	links      map[linkKey]*model.LinkRecord
	linkOrder  []linkKey
}

// NewDraft creates an empty draft for one page.
func NewDraft(pageURL string) *Draft {
	return &Draft{
		pageURL:    pageURL,
		fields:     make(map[model.FieldKey]any),
		provenance: make(map[model.FieldKey]model.FieldProvenance),
		confidence: make(map[model.FieldKey]float64),
		images:     make(map[string]*model.ImageRecord),
		links:      make(map[linkKey]*model.LinkRecord),
	}
}

// Apply folds one extractor's partial output into the draft: scalar fields
// through the merge policy with provenance/confidence bookkeeping, then
// image/link collection over the extractor's raw output.
func (d *Draft) Apply(source string, tier float64, p extract.Partial) {
	for field, incoming := range p.Fields {
		current := d.fields[field]
		merged := MergeField(field, current, incoming)
		if valuesEqual(merged, current) {
			continue
		}
		d.fields[field] = merged

		if prov, ok := d.provenance[field]; ok {
			d.provenance[field] = prov.Merge(source)
		} else {
			d.provenance[field] = model.FieldProvenance{Source: source, URL: d.pageURL}
		}

		if existing, ok := d.confidence[field]; !ok || tier > existing {
			d.confidence[field] = tier
		}
	}

	d.collectImages(source, tier, p)
	d.collectLinks(source, tier, p)
}

// collectImages dedups image candidates by normalized URL. A scalar
// image_url in the partial counts as an implicit candidate ahead of the
// explicit list. Repeat sightings fill missing dimensions and upgrade
// confidence/attribution when the new sighting is strictly more trusted.
func (d *Draft) collectImages(source string, tier float64, p extract.Partial) {
	var candidates []extract.ImageCandidate
	if scalar, ok := p.Fields[model.FieldImageURL].(string); ok && scalar != "" {
		candidates = append(candidates, extract.ImageCandidate{URL: scalar})
	}
	candidates = append(candidates, p.Images...)

	for _, cand := range candidates {
		u := AbsoluteURL(cand.URL, d.pageURL)
		if u == "" {
			continue
		}
		rec, seen := d.images[u]
		if !seen {
			d.images[u] = &model.ImageRecord{
				URL:        u,
				Width:      cand.Width,
				Height:     cand.Height,
				Type:       cand.Type,
				Source:     source,
				Confidence: tier,
			}
			d.imageOrder = append(d.imageOrder, u)
			continue
		}
		if rec.Width == 0 {
			rec.Width = cand.Width
		}
		if rec.Height == 0 {
			rec.Height = cand.Height
		}
		if rec.Type == "" {
			rec.Type = cand.Type
		}
		if tier > rec.Confidence {
			rec.Confidence = tier
			rec.Source = source
		}
	}
}

// collectLinks dedups link candidates by (type, normalized URL). A scalar
// ticket_url counts as an implicit "tickets" candidate ahead of the
// explicit list.
func (d *Draft) collectLinks(source string, tier float64, p extract.Partial) {
	var candidates []extract.LinkCandidate
	if scalar, ok := p.Fields[model.FieldTicketURL].(string); ok && scalar != "" {
		candidates = append(candidates, extract.LinkCandidate{Type: "tickets", URL: scalar})
	}
	candidates = append(candidates, p.Links...)

	for _, cand := range candidates {
		u := AbsoluteURL(cand.URL, d.pageURL)
		if u == "" {
			continue
		}
		key := linkKey{typ: strings.ToLower(strings.TrimSpace(cand.Type)), url: u}
		rec, seen := d.links[key]
		if !seen {
			d.links[key] = &model.LinkRecord{
				Type:       cand.Type,
				URL:        u,
				Source:     source,
				Confidence: tier,
			}
			d.linkOrder = append(d.linkOrder, key)
			continue
		}
		if tier > rec.Confidence {
			rec.Confidence = tier
			rec.Source = source
		}
	}
}

// Field returns the current value of a field.
func (d *Draft) Field(key model.FieldKey) any {
	return d.fields[key]
}

// fieldString returns the field as a string, "" when absent or non-string.
func (d *Draft) fieldString(key model.FieldKey) string {
	s, _ := d.fields[key].(string)
	return s
}

func (d *Draft) hasField(key model.FieldKey) bool {
	return !isEmptyValue(d.fields[key])
}

// Finalize normalizes the scalar and collected URLs against the page URL,
// materializes the ordered image/link lists, flags primary images, and
// stamps the extraction version. Every collected image whose normalized URL
// equals the finalized image_url is flagged primary; duplicate-normalizing
// entries can therefore yield more than one primary.
func (d *Draft) Finalize() *model.EventRecord {
	if s := d.fieldString(model.FieldTicketURL); s != "" {
		d.fields[model.FieldTicketURL] = AbsoluteURL(s, d.pageURL)
	}
	if s := d.fieldString(model.FieldImageURL); s != "" {
		d.fields[model.FieldImageURL] = AbsoluteURL(s, d.pageURL)
	}

	rec := &model.EventRecord{
		Fields:            d.fields,
		Provenance:        d.provenance,
		Confidence:        d.confidence,
		ExtractionVersion: model.ExtractionVersion,
	}

	primary := d.fieldString(model.FieldImageURL)
	for _, u := range d.imageOrder {
		img := *d.images[u]
		img.URL = AbsoluteURL(img.URL, d.pageURL)
		img.IsPrimary = primary != "" && img.URL == primary
		rec.Images = append(rec.Images, img)
	}
	for _, key := range d.linkOrder {
		link := *d.links[key]
		link.URL = AbsoluteURL(link.URL, d.pageURL)
		rec.Links = append(rec.Links, link)
	}

	return rec
}
