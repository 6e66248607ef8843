package conformance

import (
	"testing"

	"github.com/mqlconform/mqlconform/query"
)

func (s *Suite) TestOrderBy(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Customer").OrderBy("name", query.Asc),
		`db.customers.aggregate([
    {"$sort":{"name":1}}
])`,
		s.docs(t, "Customer", 2, 1, 4, 3, 5))
}

func (s *Suite) TestOrderByDescending(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Order").OrderBy("total", query.Desc),
		`db.orders.aggregate([
    {"$sort":{"total":-1}}
])`,
		s.docs(t, "Order", 5, 3, 7, 1, 6, 2, 8, 4))
}

func (s *Suite) TestOrderByMultiple(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Customer").
			OrderBy("cityName", query.Asc).
			OrderBy("name", query.Desc),
		`db.customers.aggregate([
    {"$sort":{"city":1,"name":-1}}
])`,
		s.docs(t, "Customer", 4, 1, 5, 2, 3))
}

func (s *Suite) TestSkip(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Order").OrderBy("id", query.Asc).Skip(6),
		`db.orders.aggregate([
    {"$sort":{"_id":1}},
    {"$skip":6}
])`,
		s.docs(t, "Order", 7, 8))
}

func (s *Suite) TestTake(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Order").OrderBy("id", query.Asc).Take(3),
		`db.orders.aggregate([
    {"$sort":{"_id":1}},
    {"$limit":3}
])`,
		s.docs(t, "Order", 1, 2, 3))
}

func (s *Suite) TestSkipTake(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Order").OrderBy("id", query.Asc).Skip(2).Take(2),
		`db.orders.aggregate([
    {"$sort":{"_id":1}},
    {"$skip":2},
    {"$limit":2}
])`,
		s.docs(t, "Order", 3, 4))
}
