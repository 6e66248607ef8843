// Package mongodb is the reference provider: it translates structured
// queries into aggregation pipelines and runs them through the official
// driver. Execution is a passthrough; all query semantics live in MongoDB.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/mqlconform/mqlconform/logger"
	"github.com/mqlconform/mqlconform/mql"
	"github.com/mqlconform/mqlconform/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Provider translates and executes queries against one MongoDB database
type Provider struct {
	registry *schema.Registry
	db       *mongo.Database
	log      logger.Logger
}

// NewProvider creates a provider. The database may be nil for
// translation-only use; Execute then fails.
func NewProvider(registry *schema.Registry, db *mongo.Database, log logger.Logger) *Provider {
	if log == nil {
		log = logger.NewNullLogger()
	}
	return &Provider{
		registry: registry,
		db:       db,
		log:      log,
	}
}

// Name returns the provider name used in test output
func (p *Provider) Name() string {
	return "mongodb"
}

// Registry returns the schema registry the provider translates against
func (p *Provider) Registry() *schema.Registry {
	return p.registry
}

// Execute runs a translated command and decodes all results into dest.
// The rendered MQL is logged through the provider's logger, which is how
// the conformance suite captures it.
func (p *Provider) Execute(ctx context.Context, cmd *mql.Command, dest any) error {
	if p.db == nil {
		return fmt.Errorf("provider is not connected to a database")
	}

	rendered, err := cmd.Render()
	if err != nil {
		return err
	}

	start := time.Now()
	coll := p.db.Collection(cmd.Collection)

	var cursor *mongo.Cursor
	switch cmd.Operation {
	case mql.OpFind:
		filter := cmd.Filter
		if filter == nil {
			filter = bson.D{}
		}
		opts := options.Find()
		if cmd.Projection != nil {
			opts.SetProjection(cmd.Projection)
		}
		cursor, err = coll.Find(ctx, filter, opts)
	case mql.OpAggregate:
		cursor, err = coll.Aggregate(ctx, mongo.Pipeline(cmd.Pipeline))
	default:
		return fmt.Errorf("unsupported command operation: %s", cmd.Operation)
	}
	if err != nil {
		return fmt.Errorf("failed to execute %s on %s: %w", cmd.Operation, cmd.Collection, err)
	}

	if err := cursor.All(ctx, dest); err != nil {
		return fmt.Errorf("failed to decode %s results: %w", cmd.Collection, err)
	}

	p.log.LogMQL(rendered, time.Since(start))
	return nil
}
