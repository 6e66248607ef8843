package query

// Order is a sort direction
type Order string

const (
	Asc  Order = "ASC"
	Desc Order = "DESC"
)

// OrderClause sorts results by a field
type OrderClause struct {
	Field     string
	Direction Order
}

// AggregateType identifies an accumulator
type AggregateType string

const (
	AggregateCount AggregateType = "count"
	AggregateSum   AggregateType = "sum"
	AggregateAvg   AggregateType = "avg"
	AggregateMin   AggregateType = "min"
	AggregateMax   AggregateType = "max"
)

// Aggregate computes an accumulator over the (grouped) result set
type Aggregate struct {
	Type  AggregateType
	Field string // empty for count
	Alias string
}

// Include pulls a named relation into the result documents
type Include struct {
	Relation string
	Skip     int // per-relation paging, not expressible in a single $lookup
	Take     int
}

// VectorSearch describes an approximate nearest-neighbor clause
type VectorSearch struct {
	Field      string
	Index      string
	Vector     []float64
	Limit      int
	Candidates int
}

// Query is a structured, provider-independent query description.
// A provider translates it into a single MongoDB command.
type Query struct {
	Model      string
	Conditions []Condition
	Orders     []OrderClause
	GroupBy    []string
	Having     []Condition
	Aggregates []Aggregate
	Projection []string
	Includes   []Include
	SkipN      int // -1 when unset
	TakeN      int // -1 when unset
	Distinct   bool
	Vector     *VectorSearch
}

// New creates a query against a model
func New(model string) *Query {
	return &Query{
		Model: model,
		SkipN: -1,
		TakeN: -1,
	}
}

// Where appends filter conditions (combined with AND)
func (q *Query) Where(conditions ...Condition) *Query {
	q.Conditions = append(q.Conditions, conditions...)
	return q
}

// OrderBy appends a sort clause
func (q *Query) OrderBy(field string, direction Order) *Query {
	q.Orders = append(q.Orders, OrderClause{Field: field, Direction: direction})
	return q
}

// GroupByFields groups the result set by the given fields
func (q *Query) GroupByFields(fields ...string) *Query {
	q.GroupBy = append(q.GroupBy, fields...)
	return q
}

// HavingCondition filters grouped results by aggregate aliases
func (q *Query) HavingCondition(conditions ...Condition) *Query {
	q.Having = append(q.Having, conditions...)
	return q
}

// Select projects the given fields
func (q *Query) Select(fields ...string) *Query {
	q.Projection = append(q.Projection, fields...)
	return q
}

// IncludeRelation pulls named relations into the result documents
func (q *Query) IncludeRelation(relations ...string) *Query {
	for _, r := range relations {
		q.Includes = append(q.Includes, Include{Relation: r})
	}
	return q
}

// IncludeWith pulls a relation with per-relation options
func (q *Query) IncludeWith(include Include) *Query {
	q.Includes = append(q.Includes, include)
	return q
}

// Skip skips the first n results
func (q *Query) Skip(n int) *Query {
	q.SkipN = n
	return q
}

// Take limits the result set to n results
func (q *Query) Take(n int) *Query {
	q.TakeN = n
	return q
}

// WithDistinct deduplicates the projected result set
func (q *Query) WithDistinct() *Query {
	q.Distinct = true
	return q
}

// Count appends a count accumulator
func (q *Query) Count(alias string) *Query {
	q.Aggregates = append(q.Aggregates, Aggregate{Type: AggregateCount, Alias: alias})
	return q
}

// Sum appends a sum accumulator over a field
func (q *Query) Sum(field, alias string) *Query {
	q.Aggregates = append(q.Aggregates, Aggregate{Type: AggregateSum, Field: field, Alias: alias})
	return q
}

// Avg appends an average accumulator over a field
func (q *Query) Avg(field, alias string) *Query {
	q.Aggregates = append(q.Aggregates, Aggregate{Type: AggregateAvg, Field: field, Alias: alias})
	return q
}

// Min appends a minimum accumulator over a field
func (q *Query) Min(field, alias string) *Query {
	q.Aggregates = append(q.Aggregates, Aggregate{Type: AggregateMin, Field: field, Alias: alias})
	return q
}

// Max appends a maximum accumulator over a field
func (q *Query) Max(field, alias string) *Query {
	q.Aggregates = append(q.Aggregates, Aggregate{Type: AggregateMax, Field: field, Alias: alias})
	return q
}

// NearestNeighbors attaches a vector search clause
func (q *Query) NearestNeighbors(vs VectorSearch) *Query {
	q.Vector = &vs
	return q
}

// HasPaging reports whether skip or take is set
func (q *Query) HasPaging() bool {
	return q.SkipN >= 0 || q.TakeN >= 0
}

// Clone returns a deep copy of the query
func (q *Query) Clone() *Query {
	clone := *q
	clone.Conditions = append([]Condition(nil), q.Conditions...)
	clone.Orders = append([]OrderClause(nil), q.Orders...)
	clone.GroupBy = append([]string(nil), q.GroupBy...)
	clone.Having = append([]Condition(nil), q.Having...)
	clone.Aggregates = append([]Aggregate(nil), q.Aggregates...)
	clone.Projection = append([]string(nil), q.Projection...)
	clone.Includes = append([]Include(nil), q.Includes...)
	if q.Vector != nil {
		vs := *q.Vector
		vs.Vector = append([]float64(nil), q.Vector.Vector...)
		clone.Vector = &vs
	}
	return &clone
}
