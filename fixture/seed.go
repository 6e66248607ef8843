package fixture

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"
)

// Seed inserts every model's seed documents into the database, one
// collection per goroutine. Document order within a collection is kept.
func (f *Fixture) Seed(ctx context.Context, db *mongo.Database) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, model := range f.ModelNames() {
		model := model
		g.Go(func() error {
			docs, err := f.Documents(model)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				return nil
			}

			collection, err := f.registry.CollectionName(model)
			if err != nil {
				return err
			}

			payload := make([]any, len(docs))
			for i, doc := range docs {
				payload[i] = doc
			}
			if _, err := db.Collection(collection).InsertMany(ctx, payload); err != nil {
				return fmt.Errorf("failed to seed %s: %w", collection, err)
			}
			return nil
		})
	}

	return g.Wait()
}
