package conformance

import (
	"testing"

	"github.com/mqlconform/mqlconform/query"
)

func (s *Suite) TestIncludeOneToMany(t *testing.T) {
	customer := s.doc(t, "Customer", 3)
	customer["orders"] = []any{s.doc(t, "Order", 5)}

	s.assertMQLQuery(t,
		query.New("Customer").
			Where(query.Eq("id", 3)).
			IncludeRelation("orders"),
		`db.customers.aggregate([
    {"$match":{"_id":3}},
    {"$lookup":{"from":"orders","localField":"_id","foreignField":"customer_id","as":"orders"}}
])`,
		[]map[string]any{customer})
}

func (s *Suite) TestIncludeManyToOne(t *testing.T) {
	order := s.doc(t, "Order", 5)
	order["customer"] = s.doc(t, "Customer", 3)

	s.assertMQLQuery(t,
		query.New("Order").
			Where(query.Eq("id", 5)).
			IncludeRelation("customer"),
		`db.orders.aggregate([
    {"$match":{"_id":5}},
    {"$lookup":{"from":"customers","localField":"customer_id","foreignField":"_id","as":"customer"}},
    {"$unwind":{"path":"$customer","preserveNullAndEmptyArrays":true}}
])`,
		[]map[string]any{order})
}

func (s *Suite) TestIncludeFiltered(t *testing.T) {
	customer := s.doc(t, "Customer", 3)
	customer["orders"] = []any{s.doc(t, "Order", 5)}

	s.assertMQLQuery(t,
		query.New("Customer").
			Where(query.Eq("cityName", "Paris")).
			IncludeRelation("orders"),
		`db.customers.aggregate([
    {"$match":{"city":"Paris"}},
    {"$lookup":{"from":"orders","localField":"_id","foreignField":"customer_id","as":"orders"}}
])`,
		[]map[string]any{customer})
}

func (s *Suite) TestIncludePaging(t *testing.T) {
	s.assertUnsupported(t,
		query.New("Customer").IncludeWith(query.Include{Relation: "orders", Take: 1}),
		"paging inside Include(orders)")
}

func (s *Suite) TestIncludeWithGrouping(t *testing.T) {
	s.assertUnsupported(t,
		query.New("Customer").IncludeRelation("orders").Count("customerCount"),
		"Include(orders) cannot be combined with GroupBy or aggregates")
}
