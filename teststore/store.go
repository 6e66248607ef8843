// Package teststore manages the MongoDB instance conformance runs execute
// against: env-based connection config and uniquely named per-run databases.
package teststore

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// URIEnv names the environment variable holding the MongoDB test URI
const URIEnv = "MQLCONFORM_MONGO_URI"

// defaultURI is used when no URI is configured
const defaultURI = "mongodb://localhost:27017"

var loadEnvOnce sync.Once

// URIFromEnv resolves the MongoDB test URI. A .env file in the working
// directory is honored, matching how CI configures test credentials.
func URIFromEnv() string {
	loadEnvOnce.Do(func() {
		// Missing .env is not an error
		_ = godotenv.Load()
	})
	if uri := os.Getenv(URIEnv); uri != "" {
		return uri
	}
	return defaultURI
}

// Store is one uniquely named test database on a MongoDB instance
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	name   string
}

// Connect connects to MongoDB and creates a uniquely named database for
// this run. The caller owns cleanup via Drop and Close.
func Connect(ctx context.Context, uri string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("MongoDB not reachable: %w", err)
	}

	name := "mqlconform_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return &Store{
		client: client,
		db:     client.Database(name),
		name:   name,
	}, nil
}

// New connects for a test, skipping it when MongoDB is unavailable, and
// registers database cleanup.
func New(ctx context.Context, t *testing.T) *Store {
	t.Helper()

	store, err := Connect(ctx, URIFromEnv())
	if err != nil {
		t.Skipf("MongoDB not available: %v", err)
		return nil
	}

	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Drop(cleanupCtx); err != nil {
			t.Logf("failed to drop test database %s: %v", store.name, err)
		}
		_ = store.Close(cleanupCtx)
	})
	return store
}

// Name returns the generated database name
func (s *Store) Name() string {
	return s.name
}

// Database returns the test database
func (s *Store) Database() *mongo.Database {
	return s.db
}

// Collection returns a collection in the test database
func (s *Store) Collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// Drop removes the test database
func (s *Store) Drop(ctx context.Context) error {
	if err := s.db.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop database %s: %w", s.name, err)
	}
	return nil
}

// Close disconnects from MongoDB
func (s *Store) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	return nil
}
