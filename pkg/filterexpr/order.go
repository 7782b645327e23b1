package filterexpr

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// OrderKey is one ordering column.
type OrderKey struct {
	Field string
	Desc  bool
}

// OrderSchema describes ordering defaults and whitelisted keys.
type OrderSchema struct {
	Default  OrderKey
	Fallback OrderKey
	Fields   []string
}

// ParseOrder parses "field [asc|desc], field [asc|desc]". At most two keys
// are accepted; the fallback key is appended as tie-breaker unless already
// present.
func ParseOrder(raw string, schema OrderSchema) ([]OrderKey, error) { //nolint:gocognit // order DSL validation
	if schema.Default.Field == "" {
		return nil, errors.New("order schema default key required")
	}
	if schema.Fallback.Field == "" {
		return nil, errors.New("order schema fallback key required")
	}
	for _, key := range []string{schema.Default.Field, schema.Fallback.Field} {
		if !slices.Contains(schema.Fields, key) {
			return nil, fmt.Errorf("order key %q missing from schema fields", key)
		}
	}

	var keys []OrderKey
	for _, seg := range strings.Split(raw, ",") {
		parts := strings.Fields(seg)
		if len(parts) == 0 {
			continue
		}
		key := OrderKey{Field: parts[0]}
		if !slices.Contains(schema.Fields, key.Field) {
			return nil, fmt.Errorf("field %q cannot be used for ordering", key.Field)
		}
		switch len(parts) {
		case 1:
		case 2:
			switch strings.ToLower(parts[1]) {
			case "asc":
			case "desc":
				key.Desc = true
			default:
				return nil, fmt.Errorf("invalid direction %q for field %q", parts[1], key.Field)
			}
		default:
			return nil, fmt.Errorf("invalid order segment %q", strings.TrimSpace(seg))
		}
		if slices.ContainsFunc(keys, func(k OrderKey) bool { return k.Field == key.Field }) {
			return nil, fmt.Errorf("duplicate order key %q", key.Field)
		}
		if len(keys) == 2 {
			return nil, errors.New("order_by supports at most two keys")
		}
		keys = append(keys, key)
	}

	if len(keys) == 0 {
		keys = append(keys, schema.Default)
	}
	if !slices.ContainsFunc(keys, func(k OrderKey) bool { return k.Field == schema.Fallback.Field }) {
		keys = append(keys, schema.Fallback)
	}
	return keys, nil
}

// Less orders two rows by the query's keys.
func (q Query) Less(a, b Row) bool {
	for _, key := range q.Order {
		c, ok := Compare(a(key.Field), b(key.Field))
		if !ok || c == 0 {
			continue
		}
		if key.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}
