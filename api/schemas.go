package api

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaBaseURL is the base under which shared schemas are registered for $ref
const schemaBaseURL = "lookout://schemas/"

// sharedSchemas are referenced by route schemas and never used on their own
var sharedSchemas = []string{"annotation.json", "id_params.json", "rule_params.json"}

// routeSchema is a compiled request schema plus the query parameter types it
// declares, which drive query string coercion
type routeSchema struct {
	schema     *gojsonschema.Schema
	queryTypes map[string]string
}

// loadRouteSchema compiles schemas/<name> with the shared schemas available
func loadRouteSchema(name string) (*routeSchema, error) {
	loader := gojsonschema.NewSchemaLoader()
	for _, shared := range sharedSchemas {
		data, err := schemaFS.ReadFile(path.Join("schemas", shared))
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", shared, err)
		}
		if err := loader.AddSchema(schemaBaseURL+shared, gojsonschema.NewBytesLoader(data)); err != nil {
			return nil, fmt.Errorf("failed to register schema %s: %w", shared, err)
		}
	}

	data, err := schemaFS.ReadFile(path.Join("schemas", name))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema %s: %w", name, err)
	}
	schema, err := loader.Compile(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	queryTypes, err := queryPropertyTypes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to read query types of %s: %w", name, err)
	}
	return &routeSchema{schema: schema, queryTypes: queryTypes}, nil
}

// mustLoadRouteSchema panics on a broken embedded schema
func mustLoadRouteSchema(name string) *routeSchema {
	s, err := loadRouteSchema(name)
	if err != nil {
		panic(err)
	}
	return s
}

// queryPropertyTypes reads properties.query.properties.*.type from a schema
func queryPropertyTypes(data []byte) (map[string]string, error) {
	var doc struct {
		Properties struct {
			Query struct {
				Properties map[string]struct {
					Type string `json:"type"`
				} `json:"properties"`
			} `json:"query"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	types := make(map[string]string, len(doc.Properties.Query.Properties))
	for name, prop := range doc.Properties.Query.Properties {
		if prop.Type != "" {
			types[name] = prop.Type
		}
	}
	return types, nil
}
