// Package fixture provides the shared conformance fixture: the canonical
// model schemas and a deterministic seed dataset loaded from testdata.
package fixture

import (
	_ "embed"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"

	"github.com/mqlconform/mqlconform/schema"
)

//go:embed testdata/dataset.yaml
var datasetYAML []byte

// Fixture holds the registered schemas and the typed seed rows
type Fixture struct {
	registry *schema.Registry
	rows     map[string][]map[string]any
}

// New builds the fixture: registers the canonical schemas and parses the
// embedded dataset against them.
func New() (*Fixture, error) {
	registry := schema.NewRegistry()
	for _, s := range canonicalSchemas() {
		if err := registry.Register(s); err != nil {
			return nil, err
		}
	}

	var raw struct {
		Models map[string][]map[string]any `yaml:"models"`
	}
	if err := yaml.Unmarshal(datasetYAML, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse seed dataset: %w", err)
	}

	rows := make(map[string][]map[string]any, len(raw.Models))
	for model, modelRows := range raw.Models {
		s, err := registry.Get(model)
		if err != nil {
			return nil, fmt.Errorf("seed dataset references unknown model: %w", err)
		}
		typed := make([]map[string]any, 0, len(modelRows))
		for i, row := range modelRows {
			converted, err := convertRow(s, row)
			if err != nil {
				return nil, fmt.Errorf("seed row %d of model %s: %w", i, model, err)
			}
			typed = append(typed, converted)
		}
		rows[model] = typed
	}

	return &Fixture{registry: registry, rows: rows}, nil
}

// MustNew builds the fixture or panics; the dataset is embedded, so
// failure means the repo itself is broken.
func MustNew() *Fixture {
	f, err := New()
	if err != nil {
		panic(err)
	}
	return f
}

// canonicalSchemas defines the entity-to-collection mappings every
// conformance run uses.
func canonicalSchemas() []*schema.Schema {
	customer := schema.New("Customer").
		AddField(schema.Field{Name: "id", Type: schema.FieldTypeInt64, PrimaryKey: true}).
		AddField(schema.Field{Name: "name", Type: schema.FieldTypeString}).
		AddField(schema.Field{Name: "cityName", Type: schema.FieldTypeString, Map: "city"}).
		AddField(schema.Field{Name: "country", Type: schema.FieldTypeString, Nullable: true}).
		AddRelation("orders", schema.Relation{
			Type:       schema.RelationOneToMany,
			Model:      "Order",
			ForeignKey: "customerId",
			References: "id",
		})

	order := schema.New("Order").
		AddField(schema.Field{Name: "id", Type: schema.FieldTypeInt64, PrimaryKey: true}).
		AddField(schema.Field{Name: "customerId", Type: schema.FieldTypeInt64}).
		AddField(schema.Field{Name: "total", Type: schema.FieldTypeFloat}).
		AddField(schema.Field{Name: "status", Type: schema.FieldTypeString}).
		AddField(schema.Field{Name: "placedAt", Type: schema.FieldTypeDateTime}).
		AddRelation("customer", schema.Relation{
			Type:       schema.RelationManyToOne,
			Model:      "Customer",
			ForeignKey: "customerId",
			References: "id",
		})

	product := schema.New("Product").
		AddField(schema.Field{Name: "id", Type: schema.FieldTypeInt64, PrimaryKey: true}).
		AddField(schema.Field{Name: "name", Type: schema.FieldTypeString}).
		AddField(schema.Field{Name: "price", Type: schema.FieldTypeFloat}).
		AddField(schema.Field{Name: "embedding", Type: schema.FieldTypeVector, VectorDims: 3})

	return []*schema.Schema{customer, order, product}
}

// convertRow coerces YAML values to the field types the schema declares
func convertRow(s *schema.Schema, row map[string]any) (map[string]any, error) {
	converted := make(map[string]any, len(row))
	for name, value := range row {
		field, err := s.GetField(name)
		if err != nil {
			return nil, err
		}
		if value == nil {
			if !field.Nullable {
				return nil, fmt.Errorf("field %s is not nullable", name)
			}
			converted[name] = nil
			continue
		}
		typed, err := convertValue(field, value)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		converted[name] = typed
	}
	return converted, nil
}

func convertValue(field *schema.Field, value any) (any, error) {
	switch field.Type {
	case schema.FieldTypeString:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected string, got %T", value)
		}
		return s, nil
	case schema.FieldTypeInt, schema.FieldTypeInt64:
		switch v := value.(type) {
		case int:
			return int64(v), nil
		case int64:
			return v, nil
		default:
			return nil, fmt.Errorf("expected integer, got %T", value)
		}
	case schema.FieldTypeFloat:
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		default:
			return nil, fmt.Errorf("expected float, got %T", value)
		}
	case schema.FieldTypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("expected bool, got %T", value)
		}
		return b, nil
	case schema.FieldTypeDateTime:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("expected RFC3339 string, got %T", value)
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("invalid timestamp %q: %w", s, err)
		}
		return t.UTC(), nil
	case schema.FieldTypeVector:
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("expected vector array, got %T", value)
		}
		if len(items) != field.VectorDims {
			return nil, fmt.Errorf("vector has %d dimensions, schema declares %d", len(items), field.VectorDims)
		}
		vec := make([]float64, len(items))
		for i, item := range items {
			switch v := item.(type) {
			case float64:
				vec[i] = v
			case int:
				vec[i] = float64(v)
			default:
				return nil, fmt.Errorf("vector element %d: expected number, got %T", i, item)
			}
		}
		return vec, nil
	default:
		return nil, fmt.Errorf("unhandled field type %s", field.Type)
	}
}

// Registry returns the schema registry backing the fixture
func (f *Fixture) Registry() *schema.Registry {
	return f.registry
}

// ModelNames returns the models with seed data
func (f *Fixture) ModelNames() []string {
	names := make([]string, 0, len(f.rows))
	for name := range f.rows {
		names = append(names, name)
	}
	return names
}

// Rows returns copies of the typed seed rows for a model, keyed by field name
func (f *Fixture) Rows(model string) []map[string]any {
	src := f.rows[model]
	out := make([]map[string]any, len(src))
	for i, row := range src {
		clone := make(map[string]any, len(row))
		for k, v := range row {
			clone[k] = v
		}
		out[i] = clone
	}
	return out
}

// Float64s collects a float field across all seed rows of a model
func (f *Fixture) Float64s(model, field string) []float64 {
	rows := f.rows[model]
	out := make([]float64, 0, len(rows))
	for _, row := range rows {
		if v, ok := row[field].(float64); ok {
			out = append(out, v)
		}
	}
	return out
}

// Documents renders the seed rows of a model as insertion documents,
// element-name keyed, in schema field order.
func (f *Fixture) Documents(model string) ([]bson.D, error) {
	s, err := f.registry.Get(model)
	if err != nil {
		return nil, err
	}

	rows, ok := f.rows[model]
	if !ok {
		return nil, fmt.Errorf("no seed data for model %s", model)
	}

	docs := make([]bson.D, 0, len(rows))
	for _, row := range rows {
		doc := bson.D{}
		for _, field := range s.Fields {
			value, ok := row[field.Name]
			if !ok {
				continue
			}
			element, err := f.registry.ElementName(model, field.Name)
			if err != nil {
				return nil, err
			}
			doc = append(doc, bson.E{Key: element, Value: value})
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
