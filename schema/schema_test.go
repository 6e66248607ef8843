package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerSchema() *Schema {
	return New("Customer").
		AddField(Field{Name: "id", Type: FieldTypeInt64, PrimaryKey: true}).
		AddField(Field{Name: "name", Type: FieldTypeString}).
		AddField(Field{Name: "cityName", Type: FieldTypeString, Map: "city"}).
		AddField(Field{Name: "signedUpAt", Type: FieldTypeDateTime}).
		AddRelation("orders", Relation{
			Type:       RelationOneToMany,
			Model:      "Order",
			ForeignKey: "customerId",
			References: "id",
		})
}

func TestModelNameToCollectionName(t *testing.T) {
	tests := []struct {
		model    string
		expected string
	}{
		{"Customer", "customers"},
		{"OrderItem", "order_items"},
		{"Category", "categories"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ModelNameToCollectionName(tt.model))
	}
}

func TestSchemaFieldLookup(t *testing.T) {
	s := customerSchema()

	field, err := s.GetField("name")
	require.NoError(t, err)
	assert.Equal(t, "name", field.ElementName())

	field, err = s.GetField("cityName")
	require.NoError(t, err)
	assert.Equal(t, "city", field.ElementName(), "explicit mapping wins over derived name")

	field, err = s.GetField("signedUpAt")
	require.NoError(t, err)
	assert.Equal(t, "signed_up_at", field.ElementName())

	_, err = s.GetField("missing")
	assert.Error(t, err)
}

func TestSchemaValidate(t *testing.T) {
	require.NoError(t, customerSchema().Validate())

	empty := New("Empty")
	assert.Error(t, empty.Validate())

	dup := New("Dup").
		AddField(Field{Name: "a", Type: FieldTypeString}).
		AddField(Field{Name: "a", Type: FieldTypeString})
	assert.Error(t, dup.Validate())

	twoKeys := New("TwoKeys").
		AddField(Field{Name: "a", Type: FieldTypeInt64, PrimaryKey: true}).
		AddField(Field{Name: "b", Type: FieldTypeInt64, PrimaryKey: true})
	assert.Error(t, twoKeys.Validate())

	vec := New("Doc").
		AddField(Field{Name: "embedding", Type: FieldTypeVector})
	assert.Error(t, vec.Validate(), "vector field without dimensions must be rejected")
}

func TestRegistryElementName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(customerSchema()))

	name, err := reg.ElementName("Customer", "id")
	require.NoError(t, err)
	assert.Equal(t, "_id", name, "single primary key maps to _id")

	name, err = reg.ElementName("Customer", "cityName")
	require.NoError(t, err)
	assert.Equal(t, "city", name)

	_, err = reg.ElementName("Customer", "missing")
	assert.Error(t, err)

	_, err = reg.ElementName("Unknown", "id")
	assert.Error(t, err)
}

func TestRegistryFieldName(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(customerSchema()))

	name, err := reg.FieldName("Customer", "_id")
	require.NoError(t, err)
	assert.Equal(t, "id", name)

	name, err = reg.FieldName("Customer", "city")
	require.NoError(t, err)
	assert.Equal(t, "cityName", name)
}

func TestRegistryRelation(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(customerSchema()))

	rel, err := reg.Relation("Customer", "orders")
	require.NoError(t, err)
	assert.Equal(t, "Order", rel.Model)
	assert.Equal(t, RelationOneToMany, rel.Type)

	_, err = reg.Relation("Customer", "invoices")
	assert.Error(t, err)
}
