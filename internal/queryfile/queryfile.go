// Package queryfile loads query graphs from JSON documents. It is an input
// adapter only: documents translate 1:1 into graph values and nothing below
// this package knows they exist.
package queryfile

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/satishbabariya/nestql/internal/core/query/graph"
	"github.com/satishbabariya/nestql/internal/filterdsl"
	"github.com/spf13/afero"
)

// Document is the JSON shape of one query.
//
//	{
//	  "collection": "articles",
//	  "fields": [
//	    "id",
//	    {"fn": "year", "field": "published_at"},
//	    {"relation": "author", "kind": "m2o", "foreign_key": "author_id",
//	     "collection": "users", "related_key": "id", "fields": ["name"]},
//	    {"relation": "comments", "kind": "o2m", "parent_key": "id",
//	     "child_key": "article_id", "query": {...}}
//	  ],
//	  "filter": "status = \"published\"",
//	  "sort": ["-published_at"],
//	  "limit": 10
//	}
type Document struct {
	Collection string            `json:"collection"`
	Fields     []json.RawMessage `json:"fields"`
	Filter     string            `json:"filter,omitempty"`
	Sort       []string          `json:"sort,omitempty"`
	Limit      *int              `json:"limit,omitempty"`
	Offset     *int              `json:"offset,omitempty"`
}

type fieldDoc struct {
	// Function fields.
	Fn    string `json:"fn,omitempty"`
	Field string `json:"field,omitempty"`
	Alias string `json:"alias,omitempty"`

	// Relation fields.
	Relation        string            `json:"relation,omitempty"`
	Kind            string            `json:"kind,omitempty"`
	ForeignKey      string            `json:"foreign_key,omitempty"`
	Collection      string            `json:"collection,omitempty"`
	CollectionField string            `json:"collection_field,omitempty"`
	RelatedKey      string            `json:"related_key,omitempty"`
	ParentKey       string            `json:"parent_key,omitempty"`
	ChildKey        string            `json:"child_key,omitempty"`
	Fields          []json.RawMessage `json:"fields,omitempty"`
	Query           *Document         `json:"query,omitempty"`
}

// Load reads and parses a query document from the given filesystem.
func Load(fs afero.Fs, path string) (*graph.Graph, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("query file %s: %w", path, err)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("query file %s: %w", path, err)
	}
	return g, nil
}

// Parse parses a query document.
func Parse(data []byte) (*graph.Graph, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Graph()
}

// Graph converts the document into a query graph.
func (d *Document) Graph() (*graph.Graph, error) {
	g := &graph.Graph{
		Collection: d.Collection,
		Limit:      d.Limit,
		Offset:     d.Offset,
	}

	for _, raw := range d.Fields {
		f, err := parseField(raw)
		if err != nil {
			return nil, err
		}
		g.Fields = append(g.Fields, f)
	}

	if d.Filter != "" {
		tree, err := filterdsl.Parse(d.Filter)
		if err != nil {
			return nil, err
		}
		g.Filter = tree
	}

	for _, s := range d.Sort {
		desc := strings.HasPrefix(s, "-")
		g.Sort = append(g.Sort, graph.Sort{
			Path: strings.Split(strings.TrimPrefix(s, "-"), "."),
			Desc: desc,
		})
	}
	return g, nil
}

func parseField(raw json.RawMessage) (graph.FieldNode, error) {
	// A bare string selects a primitive column.
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return graph.Primitive{Field: name}, nil
	}

	var f fieldDoc
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("invalid field entry: %w", err)
	}

	if f.Relation == "" {
		if f.Fn == "" || f.Field == "" {
			return nil, fmt.Errorf("function field needs fn and field")
		}
		return graph.Function{Fn: graph.Func(f.Fn), Field: f.Field, Alias: f.Alias}, nil
	}

	switch f.Kind {
	case "m2o":
		fields, err := parseFields(f.Fields)
		if err != nil {
			return nil, err
		}
		return graph.RelationOne{
			Field: f.Relation,
			Join: graph.ManyToOne{
				ForeignKey: f.ForeignKey,
				Collection: f.Collection,
				RelatedKey: f.RelatedKey,
			},
			Fields: fields,
		}, nil
	case "a2o":
		fields, err := parseFields(f.Fields)
		if err != nil {
			return nil, err
		}
		return graph.RelationOne{
			Field: f.Relation,
			Join: graph.AnyToOne{
				ForeignKey:      f.ForeignKey,
				CollectionField: f.CollectionField,
				Collection:      f.Collection,
				RelatedKey:      f.RelatedKey,
			},
			Fields: fields,
		}, nil
	case "o2m":
		q, err := relationQuery(f)
		if err != nil {
			return nil, err
		}
		return graph.RelationMany{
			Field: f.Relation,
			Join:  graph.OneToMany{ParentKey: f.ParentKey, ChildKey: f.ChildKey},
			Query: q,
		}, nil
	case "o2a":
		q, err := relationQuery(f)
		if err != nil {
			return nil, err
		}
		return graph.RelationMany{
			Field: f.Relation,
			Join: graph.OneToAny{
				ParentKey:       f.ParentKey,
				ChildKey:        f.ChildKey,
				CollectionField: f.CollectionField,
			},
			Query: q,
		}, nil
	default:
		return nil, fmt.Errorf("relation %q has unsupported kind %q", f.Relation, f.Kind)
	}
}

func parseFields(raw []json.RawMessage) ([]graph.FieldNode, error) {
	fields := make([]graph.FieldNode, 0, len(raw))
	for _, r := range raw {
		f, err := parseField(r)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func relationQuery(f fieldDoc) (*graph.Graph, error) {
	if f.Query == nil {
		return nil, fmt.Errorf("relation %q needs a query", f.Relation)
	}
	return f.Query.Graph()
}
