package conformance

import (
	"testing"

	"github.com/mqlconform/mqlconform/query"
)

// Vector search baselines are asserted for every provider; execution needs
// an Atlas search index, so these tests stay translation-only unless the
// provider declares SupportsVectorSearch.

func (s *Suite) TestVectorSearchNearestNeighbors(t *testing.T) {
	q := query.New("Product").NearestNeighbors(query.VectorSearch{
		Field:      "embedding",
		Index:      "product_embedding_index",
		Vector:     []float64{0.1, 0.4, 0.8},
		Limit:      2,
		Candidates: 20,
	})
	s.assertMQL(t, q,
		`db.products.aggregate([
    {"$vectorSearch":{"index":"product_embedding_index","path":"embedding","queryVector":[0.1,0.4,0.8],"numCandidates":20,"limit":2}}
])`)

	if s.Store == nil || !s.Characteristics.SupportsVectorSearch {
		return
	}
	if got := s.execute(t, q); len(got) != 2 {
		t.Errorf("expected 2 nearest neighbors, got %d", len(got))
	}
}

func (s *Suite) TestVectorSearchFiltered(t *testing.T) {
	s.assertMQL(t,
		query.New("Product").
			Where(query.Lt("price", 50)).
			NearestNeighbors(query.VectorSearch{
				Field:      "embedding",
				Index:      "product_embedding_index",
				Vector:     []float64{0.1, 0.4, 0.8},
				Limit:      2,
				Candidates: 20,
			}),
		`db.products.aggregate([
    {"$vectorSearch":{"index":"product_embedding_index","path":"embedding","queryVector":[0.1,0.4,0.8],"numCandidates":20,"limit":2,"filter":{"price":{"$lt":50}}}}
])`)
}

func (s *Suite) TestVectorSearchWithGrouping(t *testing.T) {
	s.assertUnsupported(t,
		query.New("Product").
			NearestNeighbors(query.VectorSearch{
				Field:      "embedding",
				Index:      "product_embedding_index",
				Vector:     []float64{0.1, 0.4, 0.8},
				Limit:      2,
				Candidates: 20,
			}).
			Count("productCount"),
		"vector search cannot be combined with grouping or DISTINCT")
}
