package contract

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type Op string

const (
	OpEq     Op = "eq"
	OpNeq    Op = "neq"
	OpIsNull Op = "is"
	OpIn     Op = "in"
)

// Condition restricts one column. Value is ignored for OpIsNull and is a []any for OpIn.
type Condition struct {
	Column string
	Op     Op
	Value  any
}

// Filter is a conjunction of conditions.
type Filter []Condition

func Eq(column string, value any) Condition {
	return Condition{Column: column, Op: OpEq, Value: value}
}

func Neq(column string, value any) Condition {
	return Condition{Column: column, Op: OpNeq, Value: value}
}

func IsNull(column string) Condition {
	return Condition{Column: column, Op: OpIsNull}
}

func In(column string, values ...any) Condition {
	return Condition{Column: column, Op: OpIn, Value: values}
}

func Where(conditions ...Condition) Filter {
	return conditions
}

// Matches evaluates the filter against a record.
// Values are compared through their string form, as the backend does for query strings.
func (f Filter) Matches(r Record) bool {
	return lo.EveryBy(f, func(c Condition) bool {
		return c.matches(r)
	})
}

func (c Condition) matches(r Record) bool {
	v, present := r[c.Column]
	isNull := !present || v == nil
	switch c.Op {
	case OpIsNull:
		return isNull
	case OpEq:
		return !isNull && r.String(c.Column) == fmt.Sprint(c.Value)
	case OpNeq:
		// SQL semantics: NULL <> x is not true
		return !isNull && r.String(c.Column) != fmt.Sprint(c.Value)
	case OpIn:
		values, _ := c.Value.([]any)
		return !isNull && lo.ContainsBy(values, func(item any) bool {
			return fmt.Sprint(item) == r.String(c.Column)
		})
	default:
		return false
	}
}

// Query renders the condition in the PostgREST query-string dialect, e.g. "eq.42".
func (c Condition) Query() string {
	switch c.Op {
	case OpIsNull:
		return "is.null"
	case OpIn:
		values, _ := c.Value.([]any)
		parts := lo.Map(values, func(item any, _ int) string { return fmt.Sprint(item) })
		return "in.(" + strings.Join(parts, ",") + ")"
	default:
		return fmt.Sprintf("%s.%v", c.Op, c.Value)
	}
}

type Order struct {
	Column    string
	Ascending bool
}

func Asc(column string) *Order {
	return &Order{Column: column, Ascending: true}
}

func Desc(column string) *Order {
	return &Order{Column: column, Ascending: false}
}
