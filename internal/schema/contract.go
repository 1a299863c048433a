// Package schema declares the validation contract applied to loaded tables.
package schema

// Field describes one column's constraints. All constraints apply only to
// non-null values; nullability is universal at load time unless Required.
type Field struct {
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"` // "text" | "number" | "date"
	Required bool   `json:"required,omitempty"`

	// Pattern is a regular expression a non-empty value must match.
	Pattern string `json:"pattern,omitempty"`

	// ListSep, when set, requires every non-empty value to contain at least
	// one occurrence of the separator (semicolon-terminated list fields).
	ListSep string `json:"list_sep,omitempty"`
}

// Contract is the declarative schema for one table.
type Contract struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// DurationPattern matches H:MM / HH:MM duration text (no seconds).
const DurationPattern = `^\d{1,2}:\d{2}$`

// EVA returns the contract for the spacewalk record set. Every column is
// required to exist; individual values may be null or empty except where a
// format constraint applies to non-empty text.
func EVA() Contract {
	return Contract{
		Name: "eva",
		Fields: []Field{
			{Name: "eva", Type: "number", Required: true},
			{Name: "country", Type: "text", Required: true},
			{Name: "crew", Type: "text", Required: true, ListSep: ";"},
			{Name: "vehicle", Type: "text", Required: true},
			{Name: "date", Type: "date", Required: true},
			{Name: "duration", Type: "text", Required: true, Pattern: DurationPattern},
			{Name: "purpose", Type: "text", Required: true},
		},
	}
}

// Columns returns the contract's field names in declaration order.
func (c Contract) Columns() []string {
	out := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		out[i] = f.Name
	}
	return out
}
