package query

// Operator identifies a filter comparison
type Operator string

const (
	OpEquals     Operator = "eq"
	OpNotEquals  Operator = "ne"
	OpGreater    Operator = "gt"
	OpGreaterEq  Operator = "gte"
	OpLess       Operator = "lt"
	OpLessEq     Operator = "lte"
	OpIn         Operator = "in"
	OpNotIn      Operator = "nin"
	OpContains   Operator = "contains"
	OpStartsWith Operator = "startswith"
	OpEndsWith   Operator = "endswith"
	OpIsNull     Operator = "null"
	OpNotNull    Operator = "not_null"
	OpBetween    Operator = "between"
)

// ConditionKind distinguishes field comparisons from composites
type ConditionKind string

const (
	KindField ConditionKind = "field"
	KindAnd   ConditionKind = "and"
	KindOr    ConditionKind = "or"
	KindNot   ConditionKind = "not"
)

// Condition is one node of a filter tree. Field conditions carry an
// operator and operands; composite conditions carry children.
type Condition struct {
	Kind   ConditionKind
	Field  string
	Op     Operator
	Value  any
	Values []any // operands for In/NotIn/Between

	// CaseInsensitive marks a string comparison as case-insensitive.
	// Providers that cannot express this must reject the query.
	CaseInsensitive bool

	Children []Condition
}

// Insensitive returns a copy of the condition marked case-insensitive
func (c Condition) Insensitive() Condition {
	c.CaseInsensitive = true
	return c
}

func Eq(field string, value any) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpEquals, Value: value}
}

func Ne(field string, value any) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpNotEquals, Value: value}
}

func Gt(field string, value any) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpGreater, Value: value}
}

func Gte(field string, value any) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpGreaterEq, Value: value}
}

func Lt(field string, value any) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpLess, Value: value}
}

func Lte(field string, value any) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpLessEq, Value: value}
}

func In(field string, values ...any) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpIn, Values: values}
}

func NotIn(field string, values ...any) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpNotIn, Values: values}
}

func Contains(field, value string) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpContains, Value: value}
}

func StartsWith(field, value string) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpStartsWith, Value: value}
}

func EndsWith(field, value string) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpEndsWith, Value: value}
}

func IsNull(field string) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpIsNull}
}

func NotNull(field string) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpNotNull}
}

func Between(field string, min, max any) Condition {
	return Condition{Kind: KindField, Field: field, Op: OpBetween, Values: []any{min, max}}
}

func And(conditions ...Condition) Condition {
	return Condition{Kind: KindAnd, Children: conditions}
}

func Or(conditions ...Condition) Condition {
	return Condition{Kind: KindOr, Children: conditions}
}

func Not(condition Condition) Condition {
	return Condition{Kind: KindNot, Children: []Condition{condition}}
}
