package schema

import (
	"fmt"
	"sync"
)

// Registry holds the registered model schemas for a conformance run
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*Schema
}

func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

// Register validates and registers a schema under its model name
func (r *Registry) Register(s *Schema) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.schemas[s.Name] = s
	return nil
}

// Get returns the schema registered for a model
func (r *Registry) Get(modelName string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[modelName]
	if !ok {
		return nil, fmt.Errorf("schema not registered for model %s", modelName)
	}
	return s, nil
}

// ModelNames returns the names of all registered models
func (r *Registry) ModelNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	return names
}

// CollectionName resolves the MongoDB collection a model is stored in
func (r *Registry) CollectionName(modelName string) (string, error) {
	s, err := r.Get(modelName)
	if err != nil {
		return "", err
	}
	return s.Collection, nil
}

// ElementName resolves a model field to its BSON element name.
// A single primary key field is always stored as _id.
func (r *Registry) ElementName(modelName, fieldName string) (string, error) {
	s, err := r.Get(modelName)
	if err != nil {
		return "", err
	}
	field, err := s.GetField(fieldName)
	if err != nil {
		return "", err
	}
	if field.PrimaryKey {
		return "_id", nil
	}
	return field.ElementName(), nil
}

// FieldName resolves a BSON element name back to the model field name
func (r *Registry) FieldName(modelName, elementName string) (string, error) {
	s, err := r.Get(modelName)
	if err != nil {
		return "", err
	}
	if elementName == "_id" {
		if pk, err := s.GetPrimaryKey(); err == nil {
			return pk.Name, nil
		}
	}
	for _, f := range s.Fields {
		if f.ElementName() == elementName {
			return f.Name, nil
		}
	}
	return "", fmt.Errorf("element %s not found in model %s", elementName, modelName)
}

// Relation resolves a named relation on a model
func (r *Registry) Relation(modelName, relationName string) (*Relation, error) {
	s, err := r.Get(modelName)
	if err != nil {
		return nil, err
	}
	return s.GetRelation(relationName)
}
