package model

// FieldKey identifies one logical event field populated by extractors.
// Using a closed set of constants instead of free-form strings lets the
// compiler catch typos at every call site that touches a field.
type FieldKey string

const (
	FieldTitle       FieldKey = "title"
	FieldDescription FieldKey = "description"
	FieldDate        FieldKey = "date"
	FieldTime        FieldKey = "time"
	FieldStartTime   FieldKey = "start_time"
	FieldEndTime     FieldKey = "end_time"
	FieldDetailURL   FieldKey = "detail_url"
	FieldTicketURL   FieldKey = "ticket_url"
	FieldImageURL    FieldKey = "image_url"
	FieldPrice       FieldKey = "price"
	FieldPriceMin    FieldKey = "price_min"
	FieldIsFree      FieldKey = "is_free"
	FieldArtists     FieldKey = "artists"
	FieldVenueName   FieldKey = "venue_name"
)

// AllFieldKeys lists every recognized field key in a stable order.
var AllFieldKeys = []FieldKey{
	FieldTitle,
	FieldDescription,
	FieldDate,
	FieldTime,
	FieldStartTime,
	FieldEndTime,
	FieldDetailURL,
	FieldTicketURL,
	FieldImageURL,
	FieldPrice,
	FieldPriceMin,
	FieldIsFree,
	FieldArtists,
	FieldVenueName,
}

// Valid reports whether k is one of the recognized field keys.
func (k FieldKey) Valid() bool {
	for _, known := range AllFieldKeys {
		if k == known {
			return true
		}
	}
	return false
}
