package filterexpr

import (
	"cmp"
	"slices"
	"strings"
)

// Row resolves a field name to its value on one row. Values are strings or
// numbers; a missing field resolves to nil.
type Row func(field string) any

// Predicate is one parsed comparison.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Match evaluates the predicate against a row.
func (p Predicate) Match(row Row) bool {
	got := row(p.Field)
	if got == nil {
		return false
	}
	switch p.Op {
	case OpIN:
		s, ok := got.(string)
		return ok && slices.Contains(p.Value.([]string), s)
	case OpSW:
		s, ok := got.(string)
		return ok && strings.HasPrefix(s, p.Value.(string))
	}

	c, ok := Compare(got, p.Value)
	if !ok {
		return false
	}
	switch p.Op {
	case OpEQ:
		return c == 0
	case OpNE:
		return c != 0
	case OpGT:
		return c > 0
	case OpGTE:
		return c >= 0
	case OpLT:
		return c < 0
	case OpLTE:
		return c <= 0
	default:
		return false
	}
}

// Match reports whether every predicate of the query holds for row.
func (q Query) Match(row Row) bool {
	for _, p := range q.Predicates {
		if !p.Match(row) {
			return false
		}
	}
	return true
}

// Compare orders two values of the same kind. Numbers of any Go numeric type
// compare by value. ok is false when the kinds differ.
func Compare(a, b any) (int, bool) {
	if as, isStr := a.(string); isStr {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	af, ok := toFloat(a)
	if !ok {
		return 0, false
	}
	bf, ok := toFloat(b)
	if !ok {
		return 0, false
	}
	return cmp.Compare(af, bf), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}
