package conformance

import (
	"testing"
	"time"

	"github.com/mqlconform/mqlconform/query"
)

func (s *Suite) TestFilterEquals(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.Eq("cityName", "Berlin")),
		`db.customers.find({"city":"Berlin"})`,
		s.docs(t, "Customer", 1, 4))
}

func (s *Suite) TestFilterNotEquals(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.Ne("cityName", "Berlin")),
		`db.customers.find({"city":{"$ne":"Berlin"}})`,
		s.docs(t, "Customer", 2, 3, 5))
}

func (s *Suite) TestFilterAnd(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(
			query.Eq("country", "Germany"),
			query.Gt("id", 2),
		),
		`db.customers.find({"$and":[{"country":"Germany"},{"_id":{"$gt":2}}]})`,
		s.docs(t, "Customer", 4))
}

func (s *Suite) TestFilterGreaterThan(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Order").Where(query.Gt("total", 100)),
		`db.orders.find({"total":{"$gt":100}})`,
		s.docs(t, "Order", 1, 3, 5, 7))
}

func (s *Suite) TestFilterLessThanOrEqual(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Order").Where(query.Lte("total", 60)),
		`db.orders.find({"total":{"$lte":60}})`,
		s.docs(t, "Order", 4, 8))
}

func (s *Suite) TestFilterIn(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.In("cityName", "Berlin", "Paris")),
		`db.customers.find({"city":{"$in":["Berlin","Paris"]}})`,
		s.docs(t, "Customer", 1, 3, 4))
}

func (s *Suite) TestFilterNotIn(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Order").Where(query.NotIn("status", "shipped", "pending")),
		`db.orders.find({"status":{"$nin":["shipped","pending"]}})`,
		s.docs(t, "Order", 4))
}

func (s *Suite) TestFilterStringStartsWith(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.StartsWith("name", "Bo")),
		`db.customers.find({"name":{"$regex":"^Bo"}})`,
		s.docs(t, "Customer", 1))
}

func (s *Suite) TestFilterStringEndsWith(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.EndsWith("name", "son")),
		`db.customers.find({"name":{"$regex":"son$"}})`,
		s.docs(t, "Customer", 4))
}

func (s *Suite) TestFilterStringContains(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.Contains("name", "an")),
		`db.customers.find({"name":{"$regex":".*an.*"}})`,
		s.docs(t, "Customer", 1))
}

func (s *Suite) TestFilterStringContainsCaseInsensitive(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.Contains("name", "AN").Insensitive()),
		`db.customers.find({"name":{"$regex":".*AN.*","$options":"i"}})`,
		s.docs(t, "Customer", 1, 2))
}

func (s *Suite) TestFilterNull(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.IsNull("country")),
		`db.customers.find({"country":null})`,
		s.docs(t, "Customer", 5))
}

func (s *Suite) TestFilterNotNull(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.NotNull("country")),
		`db.customers.find({"country":{"$ne":null}})`,
		s.docs(t, "Customer", 1, 2, 3, 4))
}

func (s *Suite) TestFilterBetween(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Order").Where(query.Between("total", 50, 130)),
		`db.orders.find({"total":{"$gte":50,"$lte":130}})`,
		s.docs(t, "Order", 1, 2, 6, 8))
}

func (s *Suite) TestFilterDateComparison(t *testing.T) {
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	s.assertMQLQueryUnordered(t,
		query.New("Order").Where(query.Gte("placedAt", cutoff)),
		`db.orders.find({"placed_at":{"$gte":{"$date":"2024-06-01T00:00:00Z"}}})`,
		s.docs(t, "Order", 2, 4, 6, 8))
}

func (s *Suite) TestFilterOr(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.Or(
			query.Eq("cityName", "Berlin"),
			query.Eq("cityName", "Paris"),
		)),
		`db.customers.find({"$or":[{"city":"Berlin"},{"city":"Paris"}]})`,
		s.docs(t, "Customer", 1, 3, 4))
}

func (s *Suite) TestFilterNot(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Where(query.Not(query.Eq("cityName", "Berlin"))),
		`db.customers.find({"$nor":[{"city":"Berlin"}]})`,
		s.docs(t, "Customer", 2, 3, 5))
}

func (s *Suite) TestFilterCaseInsensitiveEquality(t *testing.T) {
	s.assertUnsupported(t,
		query.New("Customer").Where(query.Eq("cityName", "berlin").Insensitive()),
		"requires a collation")
}
