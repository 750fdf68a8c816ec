package graphdb

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// StaticSchema is a schema description supplied as text
type StaticSchema string

func (s StaticSchema) Schema() string {
	return strings.TrimSpace(string(s))
}

const (
	nodePropertiesQuery = `CALL db.schema.nodeTypeProperties()
YIELD nodeLabels, propertyName, propertyTypes
RETURN nodeLabels, propertyName, propertyTypes`

	relPropertiesQuery = `CALL db.schema.relTypeProperties()
YIELD relType, propertyName, propertyTypes
RETURN relType, propertyName, propertyTypes`

	relPatternsQuery = `MATCH (a)-[r]->(b)
WITH labels(a) AS fromLabels, type(r) AS relType, labels(b) AS toLabels
RETURN DISTINCT fromLabels, relType, toLabels
LIMIT 200`
)

type Property struct {
	Name string
	Type string
}

// TypeProperties lists the properties seen on a node label or relationship type
type TypeProperties struct {
	Name       string
	Properties []Property
}

type Pattern struct {
	From string
	Rel  string
	To   string
}

// IntrospectSchema reads labels, relationship types and their properties from
// the database and renders them like the static schema text.
func (e *Executor) IntrospectSchema(ctx context.Context) (StaticSchema, error) {
	nodeRows, err := e.run(ctx, nodePropertiesQuery, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read node properties: %w", err)
	}
	relRows, err := e.run(ctx, relPropertiesQuery, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read relationship properties: %w", err)
	}
	patternRows, err := e.run(ctx, relPatternsQuery, nil)
	if err != nil {
		return "", fmt.Errorf("failed to read relationship patterns: %w", err)
	}

	return StaticSchema(FormatSchema(
		nodeProperties(nodeRows),
		relProperties(relRows),
		patterns(patternRows),
	)), nil
}

// FormatSchema renders the three schema sections in a stable order
func FormatSchema(nodes, rels []TypeProperties, pats []Pattern) string {
	var b strings.Builder

	b.WriteString("Node properties are the following:\n")
	for _, n := range nodes {
		b.WriteString(formatType(n))
		b.WriteString("\n")
	}

	b.WriteString("Relationship properties are the following:\n")
	for _, r := range rels {
		if len(r.Properties) == 0 {
			continue
		}
		b.WriteString(formatType(r))
		b.WriteString("\n")
	}

	b.WriteString("The relationships are the following:\n")
	for _, p := range pats {
		fmt.Fprintf(&b, "(:%s)-[:%s]->(:%s)\n", p.From, p.Rel, p.To)
	}

	return strings.TrimSpace(b.String())
}

func formatType(t TypeProperties) string {
	parts := make([]string, 0, len(t.Properties))
	for _, p := range t.Properties {
		parts = append(parts, fmt.Sprintf("%s: %s", p.Name, p.Type))
	}
	return fmt.Sprintf("%s {%s}", t.Name, strings.Join(parts, ", "))
}

func nodeProperties(rs *ResultSet) []TypeProperties {
	grouped := map[string][]Property{}
	for _, row := range rs.Rows {
		labels := toStrings(row["nodeLabels"])
		if len(labels) == 0 {
			continue
		}
		label := strings.Join(labels, ":")
		if _, ok := grouped[label]; !ok {
			grouped[label] = nil
		}
		if name, ok := row["propertyName"].(string); ok && name != "" {
			grouped[label] = append(grouped[label], Property{Name: name, Type: propertyType(row["propertyTypes"])})
		}
	}
	return sortedTypes(grouped)
}

func relProperties(rs *ResultSet) []TypeProperties {
	grouped := map[string][]Property{}
	for _, row := range rs.Rows {
		relType, _ := row["relType"].(string)
		// db.schema reports relationship types as ":`NAME`"
		relType = strings.Trim(strings.TrimPrefix(relType, ":"), "`")
		if relType == "" {
			continue
		}
		if _, ok := grouped[relType]; !ok {
			grouped[relType] = nil
		}
		if name, ok := row["propertyName"].(string); ok && name != "" {
			grouped[relType] = append(grouped[relType], Property{Name: name, Type: propertyType(row["propertyTypes"])})
		}
	}
	return sortedTypes(grouped)
}

func patterns(rs *ResultSet) []Pattern {
	seen := map[Pattern]bool{}
	var out []Pattern
	for _, row := range rs.Rows {
		from := toStrings(row["fromLabels"])
		to := toStrings(row["toLabels"])
		rel, _ := row["relType"].(string)
		if len(from) == 0 || len(to) == 0 || rel == "" {
			continue
		}
		p := Pattern{From: from[0], Rel: rel, To: to[0]}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		if out[i].Rel != out[j].Rel {
			return out[i].Rel < out[j].Rel
		}
		return out[i].To < out[j].To
	})
	return out
}

func sortedTypes(grouped map[string][]Property) []TypeProperties {
	out := make([]TypeProperties, 0, len(grouped))
	for name, props := range grouped {
		sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
		out = append(out, TypeProperties{Name: name, Properties: props})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func propertyType(value any) string {
	types := toStrings(value)
	if len(types) == 0 {
		return "ANY"
	}
	return strings.ToUpper(types[0])
}

func toStrings(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}
