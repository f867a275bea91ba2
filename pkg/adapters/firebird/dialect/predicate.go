package dialect

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/leapstack-labs/fbdialect/pkg/core"
	"github.com/leapstack-labs/fbdialect/pkg/sqlerr"
)

// Operator is a comparison in a WHERE predicate.
type Operator string

// Supported operators. Regexp and JSON extraction are capability-gated.
const (
	OpEq        Operator = "="
	OpNe        Operator = "<>"
	OpLt        Operator = "<"
	OpLte       Operator = "<="
	OpGt        Operator = ">"
	OpGte       Operator = ">="
	OpIn        Operator = "IN"
	OpNotIn     Operator = "NOT IN"
	OpLike      Operator = "LIKE"
	OpNotLike   Operator = "NOT LIKE"
	OpIsNull    Operator = "IS NULL"
	OpIsNotNull Operator = "IS NOT NULL"
	OpRegexp    Operator = "REGEXP"
	OpNotRegexp Operator = "NOT REGEXP"
	OpJSONPath  Operator = "JSON PATH"
)

// Predicate is one condition; a list of predicates is ANDed.
// Path is the JSON path for OpJSONPath.
type Predicate struct {
	Column string
	Op     Operator
	Value  any
	Path   string
}

// Eq is shorthand for an equality predicate.
func Eq(column string, v any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: v}
}

// In is shorthand for a membership predicate. values must be a slice.
func In(column string, values any) Predicate {
	return Predicate{Column: column, Op: OpIn, Value: values}
}

// where renders predicates starting at placeholder index start.
func (g *QueryGenerator) where(preds []Predicate, start int) (string, []any, error) {
	if len(preds) == 0 {
		return "", nil, nil
	}

	var (
		terms = make([]string, 0, len(preds))
		args  []any
		next  = start
	)
	for _, p := range preds {
		col := g.quote(p.Column)
		switch p.Op {
		case OpEq, OpNe, OpLt, OpLte, OpGt, OpGte, OpLike, OpNotLike:
			if p.Value == nil && (p.Op == OpEq || p.Op == OpNe) {
				op := OpIsNull
				if p.Op == OpNe {
					op = OpIsNotNull
				}
				terms = append(terms, col+" "+string(op))
				continue
			}
			terms = append(terms, fmt.Sprintf("%s %s %s", col, p.Op, g.dialect.FormatPlaceholder(next)))
			args = append(args, p.Value)
			next++
		case OpIn, OpNotIn:
			values, err := expand(p.Value)
			if err != nil {
				return "", nil, err
			}
			if len(values) == 0 {
				// an empty IN list matches nothing, an empty NOT IN everything
				if p.Op == OpIn {
					terms = append(terms, "1 = 0")
				} else {
					terms = append(terms, "1 = 1")
				}
				continue
			}
			marks := make([]string, len(values))
			for i := range values {
				marks[i] = g.dialect.FormatPlaceholder(next)
				next++
			}
			terms = append(terms, fmt.Sprintf("%s %s (%s)", col, p.Op, strings.Join(marks, ", ")))
			args = append(args, values...)
		case OpIsNull, OpIsNotNull:
			terms = append(terms, col+" "+string(p.Op))
		case OpRegexp, OpNotRegexp:
			if err := g.dialect.Require(core.FeatureRegexp); err != nil {
				return "", nil, err
			}
			return "", nil, sqlerr.Unsupported("no regular expression operator for %s", g.dialect.Name)
		case OpJSONPath:
			if err := g.dialect.Require(core.FeatureJSONExtraction); err != nil {
				return "", nil, err
			}
			return "", nil, sqlerr.Unsupported("no JSON path operator for %s", g.dialect.Name)
		default:
			return "", nil, sqlerr.Unsupported("unknown operator %q", p.Op)
		}
	}
	return " WHERE " + strings.Join(terms, " AND "), args, nil
}

func expand(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if list, ok := v.([]any); ok {
		return list, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, sqlerr.Construction(fmt.Sprintf("IN needs a slice, got %T", v), nil)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
