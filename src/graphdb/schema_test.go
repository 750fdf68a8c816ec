package graphdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticSchemaTrims(t *testing.T) {
	assert.Equal(t, "Person {name: STRING}", StaticSchema("\n  Person {name: STRING}\n").Schema())
}

func TestFormatSchemaFromIntrospectionRows(t *testing.T) {
	nodes := &ResultSet{Rows: []map[string]any{
		{"nodeLabels": []any{"Project"}, "propertyName": "summary", "propertyTypes": []any{"String"}},
		{"nodeLabels": []any{"Project"}, "propertyName": "name", "propertyTypes": []any{"String"}},
		{"nodeLabels": []any{"CLIENT"}, "propertyName": "id", "propertyTypes": []any{"String"}},
		{"nodeLabels": []any{"Person"}, "propertyName": "name", "propertyTypes": []any{"String"}},
		{"nodeLabels": []any{"Marker"}, "propertyName": nil, "propertyTypes": nil},
	}}
	rels := &ResultSet{Rows: []map[string]any{
		{"relType": ":`HAS_PEOPLE`", "propertyName": "role", "propertyTypes": []any{"String"}},
		{"relType": ":`HAS_CLIENT`", "propertyName": nil, "propertyTypes": nil},
	}}
	pats := &ResultSet{Rows: []map[string]any{
		{"fromLabels": []any{"Project"}, "relType": "HAS_PEOPLE", "toLabels": []any{"Person"}},
		{"fromLabels": []any{"Project"}, "relType": "HAS_CLIENT", "toLabels": []any{"CLIENT"}},
		{"fromLabels": []any{"Project"}, "relType": "HAS_CLIENT", "toLabels": []any{"CLIENT"}},
	}}

	got := FormatSchema(nodeProperties(nodes), relProperties(rels), patterns(pats))

	want := `Node properties are the following:
CLIENT {id: STRING}
Marker {}
Person {name: STRING}
Project {name: STRING, summary: STRING}
Relationship properties are the following:
HAS_PEOPLE {role: STRING}
The relationships are the following:
(:Project)-[:HAS_CLIENT]->(:CLIENT)
(:Project)-[:HAS_PEOPLE]->(:Person)`
	assert.Equal(t, want, got)
}

func TestPropertyTypeDefaultsToAny(t *testing.T) {
	assert.Equal(t, "ANY", propertyType(nil))
	assert.Equal(t, "LONG", propertyType([]any{"Long"}))
}
