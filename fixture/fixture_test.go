package fixture

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/mqlconform/mqlconform/teststore"
)

func TestFixtureLoads(t *testing.T) {
	f, err := New()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"Customer", "Order", "Product"}, f.ModelNames())
	assert.Len(t, f.Rows("Customer"), 5)
	assert.Len(t, f.Rows("Order"), 8)
	assert.Len(t, f.Rows("Product"), 3)
}

func TestFixtureRowTypes(t *testing.T) {
	f := MustNew()

	orders := f.Rows("Order")
	require.NotEmpty(t, orders)
	assert.IsType(t, int64(0), orders[0]["id"])
	assert.IsType(t, float64(0), orders[0]["total"])
	placedAt, ok := orders[0]["placedAt"].(time.Time)
	require.True(t, ok)
	assert.Equal(t, time.UTC, placedAt.Location())

	customers := f.Rows("Customer")
	var sawNullCountry bool
	for _, row := range customers {
		if row["country"] == nil {
			sawNullCountry = true
		}
	}
	assert.True(t, sawNullCountry, "dataset keeps a null country for null-check queries")

	products := f.Rows("Product")
	embedding, ok := products[0]["embedding"].([]float64)
	require.True(t, ok)
	assert.Len(t, embedding, 3)
}

func TestFixtureRowsAreCopies(t *testing.T) {
	f := MustNew()

	rows := f.Rows("Customer")
	rows[0]["name"] = "mutated"
	assert.NotEqual(t, "mutated", f.Rows("Customer")[0]["name"])
}

func TestFixtureFloat64s(t *testing.T) {
	f := MustNew()

	totals := f.Float64s("Order", "total")
	assert.Len(t, totals, 8)

	prices := f.Float64s("Product", "price")
	assert.Equal(t, []float64{19.99, 45.5, 89.9}, prices)
}

func TestFixtureDocuments(t *testing.T) {
	f := MustNew()

	docs, err := f.Documents("Customer")
	require.NoError(t, err)
	require.Len(t, docs, 5)

	first := docs[0]
	require.NotEmpty(t, first)
	assert.Equal(t, "_id", first[0].Key, "primary key is stored as _id")

	asMap := first.Map()
	assert.Equal(t, int64(1), asMap["_id"])
	assert.Equal(t, "Berlin", asMap["city"], "mapped element name is used")
	assert.NotContains(t, asMap, "cityName")

	_, err = f.Documents("Invoice")
	assert.Error(t, err)
}

func TestFixtureSeed(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping seed test in short mode")
	}

	ctx := context.Background()
	store := teststore.New(ctx, t)

	f := MustNew()
	require.NoError(t, f.Seed(ctx, store.Database()))

	count, err := store.Collection("customers").CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	assert.EqualValues(t, 5, count)

	count, err = store.Collection("orders").CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	assert.EqualValues(t, 8, count)
}
