package sample

import "testing"

func TestCityFilter(t *testing.T) {
	actual := translateCityFilter()
	AssertMQL(t, actual, `db.customers.find({"city":"Paris"})`)
}

func TestOrderCount(t *testing.T) {
	actual := translateOrderCount()
	AssertMQL(t, actual, ``)
}
