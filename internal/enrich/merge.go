package enrich

import (
	"reflect"
	"strings"

	"github.com/citypulse/harvester/internal/extract"
	"github.com/citypulse/harvester/internal/model"
)

// MergeField resolves a conflict between the current draft value and an
// incoming extractor value for one field. It is a pure function; the caller
// applies bookkeeping only when the returned value differs from current.
//
// Policy: an empty incoming value never erases data; an empty current value
// adopts the incoming one; when both are present, description keeps the
// longer text, ticket_url prefers a link that self-identifies as a ticket
// link, artists takes the deduplicated union, and every other field keeps
// the current value — the first extractor in the fixed run order is
// authoritative.
func MergeField(field model.FieldKey, current, incoming any) any {
	if isEmptyValue(incoming) {
		return current
	}
	if isEmptyValue(current) {
		return incoming
	}

	switch field {
	case model.FieldDescription:
		cur, curOK := current.(string)
		inc, incOK := incoming.(string)
		if curOK && incOK && len(inc) > len(cur) {
			return inc
		}
		return current

	case model.FieldTicketURL:
		cur, curOK := current.(string)
		inc, incOK := incoming.(string)
		// Only the incoming value is inspected for the "ticket" marker;
		// current keeps its seat unless the challenger names itself.
		if curOK && incOK && inc != cur && strings.Contains(strings.ToLower(inc), "ticket") {
			return inc
		}
		return current

	case model.FieldArtists:
		cur, curOK := toStringList(current)
		inc, incOK := toStringList(incoming)
		if !curOK || !incOK {
			return current
		}
		return extract.DedupArtists(append(append([]string{}, cur...), inc...))

	default:
		return current
	}
}

// isEmptyValue reports whether a field value counts as absent for merge
// purposes.
func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []string:
		return len(val) == 0
	case []any:
		return len(val) == 0
	}
	return false
}

// toStringList coerces a field value into a string list. A bare string is a
// single-element list; anything else is unparseable.
func toStringList(v any) ([]string, bool) {
	switch val := v.(type) {
	case []string:
		return val, true
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, true
		}
		return []string{val}, true
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// valuesEqual reports whether the merge produced an actual change.
func valuesEqual(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
