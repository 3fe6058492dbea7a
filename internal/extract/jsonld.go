package extract

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/citypulse/harvester/internal/model"
)

var jsonLDScriptRe = regexp.MustCompile(`(?is)<script[^>]*type\s*=\s*["']application/ld\+json["'][^>]*>(.*?)</script>`)

// JSONLDExtractor parses embedded schema.org Event markup. Highest trust:
// structured data is maintained by the publisher, not scraped off layout.
type JSONLDExtractor struct{}

func (JSONLDExtractor) Name() string { return NameJSONLD }

// Extract scans every ld+json script block for the first Event-typed object
// and maps its properties onto event fields. Malformed JSON blocks are
// skipped, never fatal.
func (JSONLDExtractor) Extract(_ context.Context, in Input) (Partial, error) {
	out := NewPartial()
	for _, m := range jsonLDScriptRe.FindAllStringSubmatch(in.HTML, -1) {
		raw := strings.TrimSpace(m[1])
		for _, obj := range decodeLDObjects(raw) {
			if !isEventType(obj["@type"]) {
				continue
			}
			mapEventObject(obj, out)
			if !out.Empty() {
				return out, nil
			}
		}
	}
	return out, nil
}

// decodeLDObjects decodes a raw ld+json payload into candidate objects,
// flattening top-level arrays and @graph containers.
func decodeLDObjects(raw string) []map[string]any {
	var single map[string]any
	if err := json.Unmarshal([]byte(raw), &single); err == nil {
		if graph, ok := single["@graph"].([]any); ok {
			return anySliceToObjects(graph)
		}
		return []map[string]any{single}
	}
	var arr []any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return anySliceToObjects(arr)
	}
	return nil
}

func anySliceToObjects(items []any) []map[string]any {
	var out []map[string]any
	for _, it := range items {
		if obj, ok := it.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}

// isEventType accepts Event and its schema.org subtypes (MusicEvent,
// TheaterEvent, Festival, ...). @type can be a string or a list.
func isEventType(t any) bool {
	switch v := t.(type) {
	case string:
		lower := strings.ToLower(v)
		return lower == "event" || lower == "festival" || strings.HasSuffix(lower, "event")
	case []any:
		for _, item := range v {
			if isEventType(item) {
				return true
			}
		}
	}
	return false
}

// mapEventObject maps schema.org Event properties onto the partial.
func mapEventObject(obj map[string]any, out Partial) {
	if s := ldString(obj["name"]); s != "" {
		out.Set(model.FieldTitle, s)
	}
	if s := ldString(obj["description"]); s != "" {
		out.Set(model.FieldDescription, s)
	}
	if s := ldString(obj["startDate"]); s != "" {
		out.Set(model.FieldStartTime, s)
	}
	if s := ldString(obj["endDate"]); s != "" {
		out.Set(model.FieldEndTime, s)
	}
	if s := ldString(obj["url"]); s != "" {
		out.Set(model.FieldDetailURL, s)
	}

	mapEventImages(obj["image"], out)
	mapEventOffers(obj["offers"], out)

	if artists := ldPerformers(obj["performer"]); len(artists) > 0 {
		out.Fields[model.FieldArtists] = artists
	}
	if loc, ok := obj["location"].(map[string]any); ok {
		if s := ldString(loc["name"]); s != "" {
			out.Set(model.FieldVenueName, s)
		}
	}
}

// mapEventImages handles the image property: a bare URL, an ImageObject, or
// a list of either. The first URL becomes the scalar image_url; every URL
// becomes a collection candidate.
func mapEventImages(v any, out Partial) {
	var items []any
	switch img := v.(type) {
	case nil:
		return
	case []any:
		items = img
	default:
		items = []any{img}
	}
	for _, item := range items {
		cand := ImageCandidate{}
		switch img := item.(type) {
		case string:
			cand.URL = img
		case map[string]any:
			cand.URL = ldString(img["url"])
			if cand.URL == "" {
				cand.URL = ldString(img["contentUrl"])
			}
			cand.Width = ldInt(img["width"])
			cand.Height = ldInt(img["height"])
			cand.Type = ldString(img["encodingFormat"])
		}
		if cand.URL == "" {
			continue
		}
		if _, ok := out.Fields[model.FieldImageURL]; !ok {
			out.Set(model.FieldImageURL, cand.URL)
		}
		out.Images = append(out.Images, cand)
	}
}

// mapEventOffers handles offers: price, lowPrice, free flag, and ticket URL.
func mapEventOffers(v any, out Partial) {
	var offers []map[string]any
	switch o := v.(type) {
	case map[string]any:
		offers = []map[string]any{o}
	case []any:
		offers = anySliceToObjects(o)
	default:
		return
	}
	for _, offer := range offers {
		price, priceOK := ldFloat(offer["price"])
		if !priceOK {
			price, priceOK = ldFloat(offer["lowPrice"])
		}
		if priceOK {
			if price == 0 {
				out.Set(model.FieldIsFree, true)
			} else {
				if _, exists := out.Fields[model.FieldPriceMin]; !exists {
					out.Set(model.FieldPriceMin, price)
				}
			}
		}
		if u := ldString(offer["url"]); u != "" {
			if _, exists := out.Fields[model.FieldTicketURL]; !exists {
				out.Set(model.FieldTicketURL, u)
			}
			out.Links = append(out.Links, LinkCandidate{Type: "tickets", URL: u})
		}
	}
}

// ldPerformers flattens performer into a list of names.
func ldPerformers(v any) []string {
	var items []any
	switch p := v.(type) {
	case nil:
		return nil
	case []any:
		items = p
	default:
		items = []any{p}
	}
	var names []string
	for _, item := range items {
		switch p := item.(type) {
		case string:
			if s := strings.TrimSpace(p); s != "" {
				names = append(names, s)
			}
		case map[string]any:
			if s := ldString(p["name"]); s != "" {
				names = append(names, s)
			}
		}
	}
	return names
}

// ldString returns a trimmed string value, tolerating single-element lists.
func ldString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []any:
		if len(s) > 0 {
			return ldString(s[0])
		}
	}
	return ""
}

// ldInt parses an int from a JSON number or numeric string.
func ldInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i
		}
	}
	return 0
}

// ldFloat parses a float from a JSON number or numeric string like "25.00".
func ldFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(strings.TrimPrefix(n, "$"))
		if s == "" {
			return 0, false
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
