package core

// Field describes one field of an index pattern as offered to the rule editor
type Field struct {
	Name           string `json:"name"`
	Type           string `json:"type"`
	NormalizedType string `json:"normalizedType"`
	Aggregatable   bool   `json:"aggregatable"`
	Searchable     bool   `json:"searchable"`
}

// FieldsResult is the response of a field lookup
type FieldsResult struct {
	Fields []Field `json:"fields"`
}

// IndicesResult is the response of an index lookup
type IndicesResult struct {
	Indices []string `json:"indices"`
}

// numberTypes collapse to the "number" normalized type
var numberTypes = map[string]bool{
	"long":          true,
	"integer":       true,
	"short":         true,
	"byte":          true,
	"double":        true,
	"float":         true,
	"half_float":    true,
	"scaled_float":  true,
	"unsigned_long": true,
}

// stringTypes collapse to the "string" normalized type
var stringTypes = map[string]bool{
	"keyword":          true,
	"text":             true,
	"match_only_text":  true,
	"constant_keyword": true,
	"wildcard":         true,
}

// NormalizeFieldType maps an Elasticsearch field type to the coarse type used
// by the editor: number, date, string, or the type itself.
func NormalizeFieldType(esType string) string {
	switch {
	case numberTypes[esType]:
		return "number"
	case stringTypes[esType]:
		return "string"
	case esType == "date" || esType == "date_nanos":
		return "date"
	default:
		return esType
	}
}
