package rules

import (
	"log/slog"
	"strings"

	"github.com/tourops/backoffice/pkg/parse"
)

const (
	KIND_GROUP     string = "group"
	KIND_CONDITION string = "condition"

	COMBINATOR_AND string = "AND"
	COMBINATOR_OR  string = "OR"

	OP_EQUALS           string = "equals"
	OP_NOT_EQUALS       string = "not_equals"
	OP_CONTAINS         string = "contains"
	OP_NOT_CONTAINS     string = "not_contains"
	OP_STARTS_WITH      string = "starts_with"
	OP_ENDS_WITH        string = "ends_with"
	OP_GREATER          string = "greater_than"
	OP_LESS             string = "less_than"
	OP_GREATER_OR_EQUAL string = "greater_or_equal"
	OP_LESS_OR_EQUAL    string = "less_or_equal"
	OP_IS_TRUE          string = "is_true"
	OP_IS_FALSE         string = "is_false"
	OP_IS_EMPTY         string = "is_empty"
	OP_IS_NOT_EMPTY     string = "is_not_empty"
)

// ConditionNode is the recursive boolean expression of a rule.
// Kind selects between the two closed variants: a group combines its
// children with AND/OR, a condition compares a single event field.
type ConditionNode struct {
	Kind       string           `json:"kind" yaml:"kind"`
	Combinator string           `json:"combinator,omitempty" yaml:"combinator,omitempty"`
	Children   []*ConditionNode `json:"children,omitempty" yaml:"children,omitempty"`
	Field      string           `json:"field,omitempty" yaml:"field,omitempty"`
	Operator   string           `json:"operator,omitempty" yaml:"operator,omitempty"`
	Value      interface{}      `json:"value,omitempty" yaml:"value,omitempty"`
}

// Evaluate walks the condition tree against the event attributes.
// Pure function: same node and data always yield the same result.
// A nil node, like a group with no children, matches everything,
// so a rule authored without conditions fires unconditionally.
func Evaluate(node *ConditionNode, data map[string]interface{}) bool {
	if node == nil {
		return true
	}

	switch node.Kind {
	case KIND_GROUP:
		return evaluateGroup(node, data)
	case KIND_CONDITION:
		return evaluateCondition(node, data)
	}

	slog.Warn("unknown condition node kind", "kind", node.Kind)
	return false
}

func evaluateGroup(node *ConditionNode, data map[string]interface{}) bool {
	if len(node.Children) == 0 {
		return true
	}

	if node.Combinator == COMBINATOR_OR {
		for _, child := range node.Children {
			if Evaluate(child, data) {
				return true
			}
		}
		return false
	}

	// AND is the default combinator
	for _, child := range node.Children {
		if !Evaluate(child, data) {
			return false
		}
	}
	return true
}

func evaluateCondition(node *ConditionNode, data map[string]interface{}) bool {
	fv, present := data[node.Field]
	if !present || fv == nil {
		// a missing field only satisfies the emptiness check
		return node.Operator == OP_IS_EMPTY
	}

	switch node.Operator {
	case OP_EQUALS:
		return valuesEqual(fv, node.Value)
	case OP_NOT_EQUALS:
		return !valuesEqual(fv, node.Value)
	case OP_CONTAINS:
		return strings.Contains(foldString(fv), foldString(node.Value))
	case OP_NOT_CONTAINS:
		return !strings.Contains(foldString(fv), foldString(node.Value))
	case OP_STARTS_WITH:
		return strings.HasPrefix(foldString(fv), foldString(node.Value))
	case OP_ENDS_WITH:
		return strings.HasSuffix(foldString(fv), foldString(node.Value))
	case OP_GREATER:
		return compareNumbers(fv, node.Value, func(a, b float64) bool { return a > b })
	case OP_LESS:
		return compareNumbers(fv, node.Value, func(a, b float64) bool { return a < b })
	case OP_GREATER_OR_EQUAL:
		return compareNumbers(fv, node.Value, func(a, b float64) bool { return a >= b })
	case OP_LESS_OR_EQUAL:
		return compareNumbers(fv, node.Value, func(a, b float64) bool { return a <= b })
	case OP_IS_TRUE:
		return fv == true || fv == "true" || isNumber(fv, 1)
	case OP_IS_FALSE:
		return fv == false || fv == "false" || isNumber(fv, 0)
	case OP_IS_EMPTY:
		return isEmpty(fv)
	case OP_IS_NOT_EMPTY:
		return !isEmpty(fv)
	}

	// one malformed rule must not block evaluation of others
	slog.Warn("unknown condition operator", "operator", node.Operator, "field", node.Field)
	return false
}

// valuesEqual is type-sensitive: comparing a string field against a
// numeric condition value is a mismatch, not a loose equality.
// Numeric kinds are normalized to float64 first since json decodes
// every number that way.
func valuesEqual(a, b interface{}) bool {
	an, aok := numeric(a)
	bn, bok := numeric(b)
	if aok && bok {
		return an == bn
	}
	if aok != bok {
		return false
	}

	as, aok := a.(string)
	bs, bok := b.(string)
	if aok && bok {
		return as == bs
	}
	if aok != bok {
		return false
	}

	ab, aok := a.(bool)
	bb, bok := b.(bool)
	if aok && bok {
		return ab == bb
	}
	return false
}

func numeric(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case int:
		return float64(t), true
	}
	return 0, false
}

func isNumber(v interface{}, n float64) bool {
	f, ok := numeric(v)
	return ok && f == n
}

func foldString(v interface{}) string {
	return strings.ToLower(parse.ParseString(v))
}

func compareNumbers(a, b interface{}, cmp func(a, b float64) bool) bool {
	af, aok := parse.ParseNumber(a)
	bf, bok := parse.ParseNumber(b)
	if !aok || !bok {
		return false
	}
	return cmp(af, bf)
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case string:
		return t == ""
	case []interface{}:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}
