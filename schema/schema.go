package schema

import (
	"fmt"

	"github.com/mqlconform/mqlconform/utils"
)

type FieldType string

const (
	FieldTypeString   FieldType = "string"
	FieldTypeInt      FieldType = "int"
	FieldTypeInt64    FieldType = "int64"
	FieldTypeFloat    FieldType = "float"
	FieldTypeBool     FieldType = "bool"
	FieldTypeDateTime FieldType = "datetime"

	// Dense numeric vector, used by vector search
	FieldTypeVector FieldType = "vector"
)

type Field struct {
	Name       string
	Type       FieldType
	PrimaryKey bool
	Nullable   bool
	Map        string // BSON element name mapping, overrides the derived name
	VectorDims int    // Number of dimensions, only meaningful for vector fields
}

// ElementName returns the BSON element name this field is stored under
func (f Field) ElementName() string {
	if f.Map != "" {
		return f.Map
	}
	// Automatically convert camelCase field names to snake_case element names
	return utils.ToSnakeCase(f.Name)
}

type RelationType string

const (
	RelationOneToOne  RelationType = "oneToOne"
	RelationOneToMany RelationType = "oneToMany"
	RelationManyToOne RelationType = "manyToOne"
)

type Relation struct {
	Type       RelationType
	Model      string
	ForeignKey string // Field on the owning side holding the reference
	References string // Field on the related model being referenced
}

// Schema describes how a model maps onto a MongoDB collection
type Schema struct {
	Name       string
	Collection string
	Fields     []Field
	Relations  map[string]Relation
}

func New(name string) *Schema {
	return &Schema{
		Name:       name,
		Collection: ModelNameToCollectionName(name),
		Fields:     []Field{},
		Relations:  make(map[string]Relation),
	}
}

// ModelNameToCollectionName converts a model name to the default collection name (pluralized, snake_case)
func ModelNameToCollectionName(modelName string) string {
	return utils.Pluralize(utils.ToSnakeCase(modelName))
}

func (s *Schema) WithCollection(name string) *Schema {
	s.Collection = name
	return s
}

func (s *Schema) AddField(field Field) *Schema {
	s.Fields = append(s.Fields, field)
	return s
}

func (s *Schema) AddRelation(name string, relation Relation) *Schema {
	s.Relations[name] = relation
	return s
}

func (s *Schema) GetField(name string) (*Field, error) {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("field %s not found in model %s", name, s.Name)
}

func (s *Schema) GetPrimaryKey() (*Field, error) {
	for i := range s.Fields {
		if s.Fields[i].PrimaryKey {
			return &s.Fields[i], nil
		}
	}
	return nil, fmt.Errorf("model %s has no primary key", s.Name)
}

func (s *Schema) HasRelation(relationName string) bool {
	_, ok := s.Relations[relationName]
	return ok
}

func (s *Schema) GetRelation(relationName string) (*Relation, error) {
	rel, ok := s.Relations[relationName]
	if !ok {
		return nil, fmt.Errorf("relation %s not found in model %s", relationName, s.Name)
	}
	return &rel, nil
}

// Validate checks structural consistency of the schema
func (s *Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s has no fields", s.Name)
	}

	seen := make(map[string]bool, len(s.Fields))
	pkCount := 0
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s has a field with an empty name", s.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %s has duplicate field %s", s.Name, f.Name)
		}
		seen[f.Name] = true
		if f.PrimaryKey {
			pkCount++
		}
		if f.Type == FieldTypeVector && f.VectorDims <= 0 {
			return fmt.Errorf("vector field %s.%s must declare its dimensions", s.Name, f.Name)
		}
	}
	if pkCount > 1 {
		return fmt.Errorf("schema %s has more than one primary key field", s.Name)
	}

	for name, rel := range s.Relations {
		if rel.Model == "" {
			return fmt.Errorf("relation %s in model %s has no target model", name, s.Name)
		}
		if rel.ForeignKey == "" || rel.References == "" {
			return fmt.Errorf("relation %s in model %s must declare foreign key and referenced field", name, s.Name)
		}
	}

	return nil
}
