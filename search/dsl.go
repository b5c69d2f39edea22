package search

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Fragment is a query-DSL object. Fragments returned by this package are
// shared and must be treated as read-only.
type Fragment = map[string]any

// Term builds a term query
func Term(field string, value any) Fragment {
	return Fragment{"term": Fragment{field: value}}
}

// Terms builds a terms query
func Terms(field string, values any) Fragment {
	return Fragment{"terms": Fragment{field: values}}
}

// Wildcard builds a wildcard query
func Wildcard(field, pattern string) Fragment {
	return Fragment{"wildcard": Fragment{field: pattern}}
}

// Exists builds an exists query
func Exists(field string) Fragment {
	return Fragment{"exists": Fragment{"field": field}}
}

// IDs builds an ids query
func IDs(ids ...string) Fragment {
	return Fragment{"ids": Fragment{"values": ids}}
}

// MustNot wraps clauses in bool.must_not
func MustNot(clauses ...Fragment) Fragment {
	return Fragment{"bool": Fragment{"must_not": clauses}}
}

// Should wraps clauses in bool.should
func Should(clauses ...Fragment) Fragment {
	return Fragment{"bool": Fragment{"should": clauses}}
}

// ShouldMatchOne wraps clauses in bool.should with minimum_should_match 1
func ShouldMatchOne(clauses ...Fragment) Fragment {
	return Fragment{"bool": Fragment{"should": clauses, "minimum_should_match": 1}}
}

// FilterQuery wraps fragments in bool.filter. A nil or empty list matches all documents.
func FilterQuery(fragments []Fragment) Fragment {
	if len(fragments) == 0 {
		return Fragment{"match_all": Fragment{}}
	}
	return Fragment{"bool": Fragment{"filter": fragments}}
}

// ParseRawFilter decodes a caller supplied query-DSL object. Empty input yields nil.
func ParseRawFilter(raw string) (Fragment, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var f Fragment
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("filter is not a valid query-DSL object: %w", err)
	}
	if len(f) == 0 {
		return nil, nil
	}
	return f, nil
}

// KueryFilter turns an opaque filter expression into a query. JSON objects are
// used as query-DSL, anything else runs as a query_string query.
func KueryFilter(kuery string) Fragment {
	kuery = strings.TrimSpace(kuery)
	if kuery == "" {
		return nil
	}
	if strings.HasPrefix(kuery, "{") {
		if f, err := ParseRawFilter(kuery); err == nil && f != nil {
			return f
		}
	}
	return Fragment{"query_string": Fragment{"query": kuery, "analyze_wildcard": true}}
}
