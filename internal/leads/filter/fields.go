package filter

// FieldType describes how a lead field is stored and compared.
type FieldType int

const (
	FieldText FieldType = iota + 1
	FieldNumber
	FieldBool
	FieldTime
)

// SearchKey expands to a substring match across SearchFields.
const SearchKey = "search"

// SearchFields are the text fields covered by the search key.
var SearchFields = []string{
	"first_name",
	"last_name",
	"email",
	"company",
	"phone",
	"city",
	"state",
}

var leadFields = map[string]FieldType{
	"first_name":       FieldText,
	"last_name":        FieldText,
	"email":            FieldText,
	"phone":            FieldText,
	"company":          FieldText,
	"city":             FieldText,
	"state":            FieldText,
	"source":           FieldText,
	"status":           FieldText,
	"score":            FieldNumber,
	"lead_value":       FieldNumber,
	"is_qualified":     FieldBool,
	"last_activity_at": FieldTime,
	"created_at":       FieldTime,
	"updated_at":       FieldTime,
}

// bare keys naming one of these fields compile to a case-insensitive match
var bareEqualsFields = map[string]bool{
	"status":     true,
	"source":     true,
	"city":       true,
	"state":      true,
	"email":      true,
	"company":    true,
	"first_name": true,
	"last_name":  true,
}

// the owner constraint is injected by the store, never by a filter
var ownerFields = map[string]bool{
	"user":    true,
	"user_id": true,
}

var fieldAliases = map[string]string{
	"created":        "created_at",
	"createdAt":      "created_at",
	"updated":        "updated_at",
	"updatedAt":      "updated_at",
	"last_activity":  "last_activity_at",
	"lastActivityAt": "last_activity_at",
}

// TypeOf returns the type of a lead field. ok is false for unknown fields.
func TypeOf(field string) (t FieldType, ok bool) {
	t, ok = leadFields[field]
	return t, ok
}

func canonicalField(name string) string {
	if alias, ok := fieldAliases[name]; ok {
		return alias
	}
	return name
}
