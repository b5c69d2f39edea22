package ecs

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadSample(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/ecs_flat_sample.yml")
	require.NoError(t, err)
	return data
}

func TestParseFlat(t *testing.T) {
	fm, err := ParseFlat(loadSample(t))
	require.NoError(t, err)
	require.Len(t, fm, 7)

	assert.Equal(t, FieldSpec{Type: "date", Required: true}, fm["@timestamp"])
	assert.Equal(t, FieldSpec{Type: "keyword", Array: true, IgnoreAbove: 1024}, fm["tags"])
	assert.Equal(t, FieldSpec{Type: "scaled_float", ScalingFactor: 1000}, fm["host.cpu.usage"])
	assert.Equal(t, []MultiField{{Name: "text", Type: "match_only_text"}}, fm["user.name"].MultiFields)
}

func TestParseFlat_Invalid(t *testing.T) {
	_, err := ParseFlat([]byte("::: not yaml"))
	assert.Error(t, err)

	_, err = ParseFlat([]byte(""))
	assert.Error(t, err)

	_, err = ParseFlat([]byte("foo:\n  flat_name: foo\n"))
	assert.ErrorContains(t, err, "has no type")
}

func TestGenerate(t *testing.T) {
	src, err := Generate(loadSample(t), GenerateOptions{Version: "8.11.0"})
	require.NoError(t, err)

	out := string(src)
	assert.True(t, strings.HasPrefix(out, "// Code generated by lookout ecs generate from ECS 8.11.0; DO NOT EDIT."))
	assert.Contains(t, out, "package ecs")
	assert.Contains(t, out, `const ecsVersion = "8.11.0"`)
	assert.Contains(t, out, "var ecsFieldMap = FieldMap{")
	assert.Contains(t, out, `{Name: "text", Type: "match_only_text"},`)

	// keys are sorted
	ts := strings.Index(out, `"@timestamp"`)
	host := strings.Index(out, `"host.name"`)
	user := strings.Index(out, `"user.name"`)
	assert.True(t, ts < host && host < user, "field keys should be sorted")
}

func TestGenerate_Prefixes(t *testing.T) {
	src, err := Generate(loadSample(t), GenerateOptions{
		Package:  "fields",
		VarName:  "hostFields",
		Prefixes: []string{"host"},
	})
	require.NoError(t, err)

	out := string(src)
	assert.Contains(t, out, "package fields")
	assert.Contains(t, out, "var hostFields = FieldMap{")
	assert.Contains(t, out, `"host.name"`)
	assert.Contains(t, out, `"host.cpu.usage"`)
	assert.NotContains(t, out, `"user.name"`)

	_, err = Generate(loadSample(t), GenerateOptions{Prefixes: []string{"nope"}})
	assert.Error(t, err)
}

func TestGenerate_MatchesCheckedInMap(t *testing.T) {
	sample, err := ParseFlat(loadSample(t))
	require.NoError(t, err)

	fields := Fields()
	for name, spec := range sample {
		got, ok := fields[name]
		require.True(t, ok, "generated map is missing %s", name)
		assert.Equal(t, spec, got, name)
	}
	assert.Equal(t, "8.11.0", Version())
}

func TestFieldMapSubset(t *testing.T) {
	fm := FieldMap{
		"host.name":    {Type: "keyword"},
		"hostname":     {Type: "keyword"},
		"host":         {Type: "object"},
		"service.name": {Type: "keyword"},
	}
	sub := fm.Subset("host")
	assert.ElementsMatch(t, []string{"host", "host.name"}, sub.Names())
	assert.Len(t, fm.Subset(), 4)
}

func TestMappingFromFieldMap(t *testing.T) {
	fm := FieldMap{
		"@timestamp":       {Type: "date"},
		"labels":           {Type: "object"},
		"labels.team":      {Type: "keyword", IgnoreAbove: 256},
		"host.cpu.usage":   {Type: "scaled_float", ScalingFactor: 1000},
		"user.name":        {Type: "keyword", MultiFields: []MultiField{{Name: "text", Type: "match_only_text"}}},
		"message":          {Type: "text"},
		"message.length":   {Type: "long"},
		"annotation.style": {Type: "object", Disabled: true},
	}

	m := MappingFromFieldMap(fm)
	props := m["properties"].(map[string]any)

	assert.Equal(t, map[string]any{"type": "date"}, props["@timestamp"])

	labels := props["labels"].(map[string]any)
	assert.Equal(t, "object", labels["type"])
	assert.Equal(t, map[string]any{"type": "keyword", "ignore_above": 256},
		labels["properties"].(map[string]any)["team"])

	cpu := props["host"].(map[string]any)["properties"].(map[string]any)["cpu"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "scaled_float", "scaling_factor": 1000},
		cpu["properties"].(map[string]any)["usage"])

	user := props["user"].(map[string]any)["properties"].(map[string]any)["name"].(map[string]any)
	assert.Equal(t, map[string]any{"text": map[string]any{"type": "match_only_text"}}, user["fields"])

	assert.Equal(t, map[string]any{"type": "text"}, props["message"], "fields below a text leaf are dropped")

	style := props["annotation"].(map[string]any)["properties"].(map[string]any)["style"]
	assert.Equal(t, map[string]any{"type": "object", "enabled": false}, style)
}

func TestAnnotationMappings(t *testing.T) {
	m := AnnotationMappings()
	assert.Equal(t, false, m["dynamic"])

	props := m["properties"].(map[string]any)
	for _, key := range []string{"@timestamp", "message", "tags", "annotation", "event", "service", "slo", "monitor", "host"} {
		assert.Contains(t, props, key)
	}

	event := props["event"].(map[string]any)["properties"].(map[string]any)
	for _, key := range []string{"start", "end", "created", "updated"} {
		assert.Equal(t, map[string]any{"type": "date"}, event[key])
	}

	slo := props["slo"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, "keyword", slo["instanceId"].(map[string]any)["type"])
	assert.NotContains(t, props, "user", "only annotation fields are mapped")
}
