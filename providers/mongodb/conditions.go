package mongodb

import (
	"fmt"
	"strings"

	"github.com/mqlconform/mqlconform/providers"
	"github.com/mqlconform/mqlconform/query"
	"go.mongodb.org/mongo-driver/bson"
)

// fieldResolver maps a query field name to the BSON element name used in
// the emitted filter. Filters before $group resolve through the schema;
// HAVING filters resolve to aggregate aliases as-is.
type fieldResolver func(field string) (string, error)

// buildConditions combines top-level conditions into a single filter document
func buildConditions(conditions []query.Condition, resolve fieldResolver) (bson.D, error) {
	if len(conditions) == 0 {
		return nil, nil
	}
	if len(conditions) == 1 {
		return buildCondition(conditions[0], resolve)
	}
	return buildCondition(query.And(conditions...), resolve)
}

// buildCondition translates one condition tree node into a filter document
func buildCondition(cond query.Condition, resolve fieldResolver) (bson.D, error) {
	switch cond.Kind {
	case query.KindAnd, query.KindOr:
		if len(cond.Children) == 0 {
			return nil, fmt.Errorf("composite condition has no children")
		}
		if len(cond.Children) == 1 {
			return buildCondition(cond.Children[0], resolve)
		}
		parts := make(bson.A, len(cond.Children))
		for i, child := range cond.Children {
			doc, err := buildCondition(child, resolve)
			if err != nil {
				return nil, err
			}
			parts[i] = doc
		}
		op := "$and"
		if cond.Kind == query.KindOr {
			op = "$or"
		}
		return bson.D{{Key: op, Value: parts}}, nil

	case query.KindNot:
		if len(cond.Children) != 1 {
			return nil, fmt.Errorf("NOT condition must have exactly one child")
		}
		doc, err := buildCondition(cond.Children[0], resolve)
		if err != nil {
			return nil, err
		}
		// MongoDB has no document-level $not; $nor of one branch is equivalent
		return bson.D{{Key: "$nor", Value: bson.A{doc}}}, nil

	case query.KindField:
		return buildFieldCondition(cond, resolve)

	default:
		return nil, fmt.Errorf("unknown condition kind: %s", cond.Kind)
	}
}

func buildFieldCondition(cond query.Condition, resolve fieldResolver) (bson.D, error) {
	element, err := resolve(cond.Field)
	if err != nil {
		return nil, err
	}

	if cond.CaseInsensitive && !isRegexOperator(cond.Op) {
		return nil, providers.Unsupportedf(
			"case-insensitive %s comparison on %s requires a collation, which cannot be expressed in the emitted filter",
			cond.Op, cond.Field)
	}

	switch cond.Op {
	case query.OpEquals:
		return bson.D{{Key: element, Value: cond.Value}}, nil
	case query.OpNotEquals:
		return bson.D{{Key: element, Value: bson.D{{Key: "$ne", Value: cond.Value}}}}, nil
	case query.OpGreater:
		return bson.D{{Key: element, Value: bson.D{{Key: "$gt", Value: cond.Value}}}}, nil
	case query.OpGreaterEq:
		return bson.D{{Key: element, Value: bson.D{{Key: "$gte", Value: cond.Value}}}}, nil
	case query.OpLess:
		return bson.D{{Key: element, Value: bson.D{{Key: "$lt", Value: cond.Value}}}}, nil
	case query.OpLessEq:
		return bson.D{{Key: element, Value: bson.D{{Key: "$lte", Value: cond.Value}}}}, nil
	case query.OpIn:
		return bson.D{{Key: element, Value: bson.D{{Key: "$in", Value: bson.A(cond.Values)}}}}, nil
	case query.OpNotIn:
		return bson.D{{Key: element, Value: bson.D{{Key: "$nin", Value: bson.A(cond.Values)}}}}, nil
	case query.OpContains:
		return regexCondition(element, fmt.Sprintf(".*%s.*", escapeRegex(stringOperand(cond))), cond.CaseInsensitive), nil
	case query.OpStartsWith:
		return regexCondition(element, fmt.Sprintf("^%s", escapeRegex(stringOperand(cond))), cond.CaseInsensitive), nil
	case query.OpEndsWith:
		return regexCondition(element, fmt.Sprintf("%s$", escapeRegex(stringOperand(cond))), cond.CaseInsensitive), nil
	case query.OpIsNull:
		return bson.D{{Key: element, Value: nil}}, nil
	case query.OpNotNull:
		return bson.D{{Key: element, Value: bson.D{{Key: "$ne", Value: nil}}}}, nil
	case query.OpBetween:
		if len(cond.Values) != 2 {
			return nil, fmt.Errorf("between condition on %s needs exactly two operands", cond.Field)
		}
		return bson.D{{Key: element, Value: bson.D{
			{Key: "$gte", Value: cond.Values[0]},
			{Key: "$lte", Value: cond.Values[1]},
		}}}, nil
	default:
		return nil, providers.Unsupportedf("filter operator %s has no MQL equivalent", cond.Op)
	}
}

func isRegexOperator(op query.Operator) bool {
	switch op {
	case query.OpContains, query.OpStartsWith, query.OpEndsWith:
		return true
	default:
		return false
	}
}

func regexCondition(element, pattern string, insensitive bool) bson.D {
	expr := bson.D{{Key: "$regex", Value: pattern}}
	if insensitive {
		expr = append(expr, bson.E{Key: "$options", Value: "i"})
	}
	return bson.D{{Key: element, Value: expr}}
}

func stringOperand(cond query.Condition) string {
	if s, ok := cond.Value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", cond.Value)
}

// escapeRegex escapes regex metacharacters in a literal string operand
func escapeRegex(s string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\", // Must be first
		".", "\\.",
		"^", "\\^",
		"$", "\\$",
		"*", "\\*",
		"+", "\\+",
		"?", "\\?",
		"(", "\\(",
		")", "\\)",
		"[", "\\[",
		"]", "\\]",
		"{", "\\{",
		"}", "\\}",
		"|", "\\|",
	)
	return replacer.Replace(s)
}
