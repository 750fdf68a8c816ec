package graphdb

import (
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ResultSet is the tabular outcome of one query
type ResultSet struct {
	Keys []string         `json:"keys"`
	Rows []map[string]any `json:"rows"`
}

// NewResultSet converts driver records into plain rows. Graph values become
// maps so the rows can be rendered as JSON.
func NewResultSet(keys []string, records []*neo4j.Record) *ResultSet {
	rs := &ResultSet{
		Keys: keys,
		Rows: make([]map[string]any, 0, len(records)),
	}
	for _, record := range records {
		row := make(map[string]any, len(record.Keys))
		for i, key := range record.Keys {
			if i < len(record.Values) {
				row[key] = convertValue(record.Values[i])
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs
}

func (r *ResultSet) IsEmpty() bool {
	return r == nil || len(r.Rows) == 0
}

// Text renders at most topK rows as indented JSON; topK <= 0 renders all rows
func (r *ResultSet) Text(topK int) (string, error) {
	rows := []map[string]any{}
	if r != nil && r.Rows != nil {
		rows = r.Rows
	}
	if topK > 0 && len(rows) > topK {
		rows = rows[:topK]
	}
	data, err := sonic.ConfigStd.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render result set: %w", err)
	}
	return string(data), nil
}

func convertValue(value any) any {
	switch v := value.(type) {
	case neo4j.Node:
		return convertProps(v.Props)
	case neo4j.Relationship:
		props := convertProps(v.Props)
		props["_type"] = v.Type
		return props
	case neo4j.Path:
		nodes := make([]any, 0, len(v.Nodes))
		for _, n := range v.Nodes {
			nodes = append(nodes, convertValue(n))
		}
		rels := make([]string, 0, len(v.Relationships))
		for _, rel := range v.Relationships {
			rels = append(rels, rel.Type)
		}
		return map[string]any{"nodes": nodes, "relationships": rels}
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = convertValue(item)
		}
		return out
	case map[string]any:
		return convertProps(v)
	case neo4j.Date:
		return v.Time().Format("2006-01-02")
	case neo4j.LocalDateTime:
		return v.Time().Format("2006-01-02T15:04:05")
	case neo4j.LocalTime:
		return v.Time().Format("15:04:05")
	case neo4j.Time:
		return v.Time().Format("15:04:05Z07:00")
	case time.Time:
		return v.Format(time.RFC3339)
	case neo4j.Duration:
		return v.String()
	case neo4j.Point2D:
		return v.String()
	case neo4j.Point3D:
		return v.String()
	default:
		return v
	}
}

func convertProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = convertValue(v)
	}
	return out
}
