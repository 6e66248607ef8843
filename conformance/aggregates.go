package conformance

import (
	"testing"

	"github.com/montanaflynn/stats"

	"github.com/mqlconform/mqlconform/query"
)

// orderTotals collects the seeded order totals for one customer; aggregate
// expectations are computed from the dataset rather than hard-coded.
func (s *Suite) orderTotals(t *testing.T, customerID int64) []float64 {
	t.Helper()
	s.mustInit(t)
	var totals []float64
	for _, row := range s.Fixture.Rows("Order") {
		if row["customerId"] == customerID {
			totals = append(totals, row["total"].(float64))
		}
	}
	if len(totals) == 0 {
		t.Fatalf("no seeded orders for customer %d", customerID)
	}
	return totals
}

func (s *Suite) sumTotals(t *testing.T, customerID int64) float64 {
	t.Helper()
	sum, err := stats.Sum(s.orderTotals(t, customerID))
	if err != nil {
		t.Fatalf("failed to sum order totals: %v", err)
	}
	return sum
}

func (s *Suite) TestCount(t *testing.T) {
	s.mustInit(t)
	s.assertMQLScalar(t,
		query.New("Order").Count("orderCount"),
		"orderCount",
		`db.orders.aggregate([
    {"$count":"orderCount"}
])`,
		float64(len(s.Fixture.Rows("Order"))))
}

func (s *Suite) TestCountFiltered(t *testing.T) {
	s.assertMQLScalar(t,
		query.New("Order").
			Where(query.Eq("status", "shipped")).
			Count("shippedCount"),
		"shippedCount",
		`db.orders.aggregate([
    {"$match":{"status":"shipped"}},
    {"$count":"shippedCount"}
])`,
		5)
}

func (s *Suite) TestSum(t *testing.T) {
	s.mustInit(t)
	want, err := stats.Sum(s.Fixture.Float64s("Order", "total"))
	if err != nil {
		t.Fatalf("failed to compute expected sum: %v", err)
	}
	s.assertMQLScalar(t,
		query.New("Order").Sum("total", "totalSum"),
		"totalSum",
		`db.orders.aggregate([
    {"$group":{"_id":null,"totalSum":{"$sum":"$total"}}}
])`,
		want)
}

func (s *Suite) TestAverage(t *testing.T) {
	s.mustInit(t)
	want, err := stats.Mean(s.Fixture.Float64s("Order", "total"))
	if err != nil {
		t.Fatalf("failed to compute expected mean: %v", err)
	}
	s.assertMQLScalar(t,
		query.New("Order").Avg("total", "totalAvg"),
		"totalAvg",
		`db.orders.aggregate([
    {"$group":{"_id":null,"totalAvg":{"$avg":"$total"}}}
])`,
		want)
}

func (s *Suite) TestMinMax(t *testing.T) {
	s.mustInit(t)
	totals := s.Fixture.Float64s("Order", "total")
	min, err := stats.Min(totals)
	if err != nil {
		t.Fatalf("failed to compute expected min: %v", err)
	}
	max, err := stats.Max(totals)
	if err != nil {
		t.Fatalf("failed to compute expected max: %v", err)
	}
	s.assertMQLQuery(t,
		query.New("Order").
			Min("total", "minTotal").
			Max("total", "maxTotal"),
		`db.orders.aggregate([
    {"$group":{"_id":null,"minTotal":{"$min":"$total"},"maxTotal":{"$max":"$total"}}}
])`,
		[]map[string]any{
			{"_id": nil, "minTotal": min, "maxTotal": max},
		})
}

func (s *Suite) TestGroupByWithCount(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Order").
			GroupByFields("customerId").
			Count("orderCount").
			OrderBy("customerId", query.Asc),
		`db.orders.aggregate([
    {"$group":{"_id":"$customer_id","orderCount":{"$sum":1}}},
    {"$sort":{"_id":1}}
])`,
		[]map[string]any{
			{"_id": int64(1), "orderCount": int64(2)},
			{"_id": int64(2), "orderCount": int64(2)},
			{"_id": int64(3), "orderCount": int64(1)},
			{"_id": int64(4), "orderCount": int64(3)},
		})
}

func (s *Suite) TestGroupByWithSum(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Order").
			GroupByFields("customerId").
			Sum("total", "totalSum").
			OrderBy("customerId", query.Asc),
		`db.orders.aggregate([
    {"$group":{"_id":"$customer_id","totalSum":{"$sum":"$total"}}},
    {"$sort":{"_id":1}}
])`,
		[]map[string]any{
			{"_id": int64(1), "totalSum": s.sumTotals(t, 1)},
			{"_id": int64(2), "totalSum": s.sumTotals(t, 2)},
			{"_id": int64(3), "totalSum": s.sumTotals(t, 3)},
			{"_id": int64(4), "totalSum": s.sumTotals(t, 4)},
		})
}

func (s *Suite) TestHaving(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Order").
			GroupByFields("customerId").
			Count("orderCount").
			HavingCondition(query.Gt("orderCount", 2)).
			OrderBy("customerId", query.Asc),
		`db.orders.aggregate([
    {"$group":{"_id":"$customer_id","orderCount":{"$sum":1}}},
    {"$match":{"orderCount":{"$gt":2}}},
    {"$sort":{"_id":1}}
])`,
		[]map[string]any{
			{"_id": int64(4), "orderCount": int64(3)},
		})
}

func (s *Suite) TestOrderByAggregate(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Order").
			GroupByFields("customerId").
			Sum("total", "totalSum").
			OrderBy("totalSum", query.Desc),
		`db.orders.aggregate([
    {"$group":{"_id":"$customer_id","totalSum":{"$sum":"$total"}}},
    {"$sort":{"totalSum":-1}}
])`,
		[]map[string]any{
			{"_id": int64(3), "totalSum": s.sumTotals(t, 3)},
			{"_id": int64(4), "totalSum": s.sumTotals(t, 4)},
			{"_id": int64(2), "totalSum": s.sumTotals(t, 2)},
			{"_id": int64(1), "totalSum": s.sumTotals(t, 1)},
		})
}
