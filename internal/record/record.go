// Package record defines the normalized records stored by armory and the
// nested views materialized from them.
//
// A Record is one row as the store sees it: column name to driver value
// (int64, float64, string, []byte, bool or nil). Views are typed structs
// built from Records by the From* constructors; they carry the nested
// relationships the data service attaches.
package record

import (
	"fmt"
	"sort"
	"strconv"
)

// Record is one stored row keyed by column name.
type Record map[string]any

// Criteria is a field-equality filter. Nil or empty matches every record.
type Criteria map[string]any

// Fields returns the keys of a Record in sorted order.
func (r Record) Fields() []string {
	return sortedKeys(r)
}

// Fields returns the keys of the Criteria in sorted order.
func (c Criteria) Fields() []string {
	return sortedKeys(c)
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ID returns the store-assigned identifier.
func (r Record) ID() int64 {
	return r.Int("id")
}

// Int returns field as an int64. Missing, NULL and unparseable values are 0.
func (r Record) Int(field string) int64 {
	switch v := r[field].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(string(v), 10, 64)
		return n
	default:
		return 0
	}
}

// NullInt returns field as *int64, nil when the field is NULL or missing.
func (r Record) NullInt(field string) *int64 {
	if r[field] == nil {
		return nil
	}
	n := r.Int(field)
	return &n
}

// Bool returns field as a bool; any non-zero integer is true.
func (r Record) Bool(field string) bool {
	return r.Int(field) != 0
}

// String returns field as a string. NULL and missing values are "".
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// NullString returns field as *string, nil when the field is NULL or missing.
func (r Record) NullString(field string) *string {
	if r[field] == nil {
		return nil
	}
	s := r.String(field)
	return &s
}
