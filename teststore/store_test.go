package teststore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestURIFromEnv(t *testing.T) {
	t.Setenv(URIEnv, "mongodb://example:27017")
	assert.Equal(t, "mongodb://example:27017", URIFromEnv())
}

func TestConnectUnreachable(t *testing.T) {
	ctx := context.Background()
	_, err := Connect(ctx, "mongodb://127.0.0.1:1/?connectTimeoutMS=200&serverSelectionTimeoutMS=200")
	assert.Error(t, err)
}

func TestStoreLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping store tests in short mode")
	}

	ctx := context.Background()
	store := New(ctx, t)

	assert.True(t, strings.HasPrefix(store.Name(), "mqlconform_"))
	assert.Equal(t, store.Name(), store.Database().Name())

	// Two stores never collide on a database name
	other := New(ctx, t)
	assert.NotEqual(t, store.Name(), other.Name())

	coll := store.Collection("probe")
	_, err := coll.InsertOne(ctx, bson.D{{Key: "ok", Value: true}})
	require.NoError(t, err)

	count, err := coll.CountDocuments(ctx, bson.D{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}
