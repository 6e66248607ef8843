package conformance

import (
	"testing"

	"github.com/mqlconform/mqlconform/query"
)

func (s *Suite) TestSelect(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Customer").
			Select("name", "cityName").
			OrderBy("name", query.Asc),
		`db.customers.aggregate([
    {"$sort":{"name":1}},
    {"$project":{"name":1,"city":1,"_id":0}}
])`,
		[]map[string]any{
			{"name": "Anders", "city": "London"},
			{"name": "Bowman", "city": "Berlin"},
			{"name": "Larsson", "city": "Berlin"},
			{"name": "Moreau", "city": "Paris"},
			{"name": "Okafor", "city": "London"},
		})
}

func (s *Suite) TestSelectWithPrimaryKey(t *testing.T) {
	s.assertMQLQueryUnordered(t,
		query.New("Customer").Select("id", "name"),
		`db.customers.find({}, {"_id":1,"name":1})`,
		[]map[string]any{
			{"_id": int64(1), "name": "Bowman"},
			{"_id": int64(2), "name": "Anders"},
			{"_id": int64(3), "name": "Moreau"},
			{"_id": int64(4), "name": "Larsson"},
			{"_id": int64(5), "name": "Okafor"},
		})
}

func (s *Suite) TestDistinct(t *testing.T) {
	s.assertMQLQuery(t,
		query.New("Customer").
			Select("cityName").
			WithDistinct().
			OrderBy("cityName", query.Asc),
		`db.customers.aggregate([
    {"$group":{"_id":"$city"}},
    {"$project":{"city":"$_id","_id":0}},
    {"$sort":{"city":1}}
])`,
		[]map[string]any{
			{"city": "Berlin"},
			{"city": "London"},
			{"city": "Paris"},
		})
}

func (s *Suite) TestDistinctMultipleFields(t *testing.T) {
	s.assertUnsupported(t,
		query.New("Customer").Select("cityName", "country").WithDistinct(),
		"DISTINCT requires exactly one projected field")
}
