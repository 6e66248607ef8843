package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderChaining(t *testing.T) {
	q := New("Customer").
		Where(Eq("cityName", "Berlin"), Gt("orderCount", 2)).
		OrderBy("name", Asc).
		Skip(10).
		Take(5)

	assert.Equal(t, "Customer", q.Model)
	require.Len(t, q.Conditions, 2)
	assert.Equal(t, OpEquals, q.Conditions[0].Op)
	assert.Equal(t, OpGreater, q.Conditions[1].Op)
	require.Len(t, q.Orders, 1)
	assert.Equal(t, Asc, q.Orders[0].Direction)
	assert.Equal(t, 10, q.SkipN)
	assert.Equal(t, 5, q.TakeN)
	assert.True(t, q.HasPaging())
}

func TestNewQueryHasNoPaging(t *testing.T) {
	q := New("Order")
	assert.Equal(t, -1, q.SkipN)
	assert.Equal(t, -1, q.TakeN)
	assert.False(t, q.HasPaging())
}

func TestCompositeConditions(t *testing.T) {
	cond := Or(
		And(Eq("country", "Germany"), StartsWith("cityName", "B")),
		Not(IsNull("cityName")),
	)

	assert.Equal(t, KindOr, cond.Kind)
	require.Len(t, cond.Children, 2)
	assert.Equal(t, KindAnd, cond.Children[0].Kind)
	assert.Equal(t, KindNot, cond.Children[1].Kind)
	require.Len(t, cond.Children[1].Children, 1)
	assert.Equal(t, OpIsNull, cond.Children[1].Children[0].Op)
}

func TestInsensitiveReturnsCopy(t *testing.T) {
	base := Contains("name", "berlin")
	marked := base.Insensitive()

	assert.False(t, base.CaseInsensitive)
	assert.True(t, marked.CaseInsensitive)
}

func TestAggregateBuilders(t *testing.T) {
	q := New("Order").
		GroupByFields("customerId").
		Count("orderCount").
		Sum("total", "totalSum").
		Avg("total", "totalAvg")

	assert.Equal(t, []string{"customerId"}, q.GroupBy)
	require.Len(t, q.Aggregates, 3)
	assert.Equal(t, AggregateCount, q.Aggregates[0].Type)
	assert.Equal(t, "", q.Aggregates[0].Field)
	assert.Equal(t, AggregateSum, q.Aggregates[1].Type)
	assert.Equal(t, "total", q.Aggregates[1].Field)
}

func TestCloneIsDeep(t *testing.T) {
	q := New("Product").
		Where(Eq("name", "Widget")).
		NearestNeighbors(VectorSearch{
			Field:      "embedding",
			Index:      "product_embedding",
			Vector:     []float64{0.1, 0.2},
			Limit:      3,
			Candidates: 30,
		})

	clone := q.Clone()
	clone.Conditions[0].Value = "Gadget"
	clone.Vector.Vector[0] = 0.9

	assert.Equal(t, "Widget", q.Conditions[0].Value)
	assert.Equal(t, 0.1, q.Vector.Vector[0])
}
