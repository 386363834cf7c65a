package queryir

import "sort"

// Statement is one store operation against a single table.
//
// This is a sealed interface - only types in this package implement it.
type Statement interface {
	statementNode() // Marker method - seals interface to this package
}

// Predicate is a row filter.
//
// This is a sealed interface - only types in this package implement it.
type Predicate interface {
	predicateNode() // Marker method - seals interface to this package
}

// Select reads every column of the rows in From matching Filter.
//
// Rows come back in ascending id order so repeated reads are deterministic.
type Select struct {
	From   string    // Table name
	Filter Predicate // WHERE conditions (nil = all rows)
}

func (Select) statementNode() {}

// Insert adds one row. Columns absent from Values take the table default.
type Insert struct {
	Into   string
	Values map[string]any
}

func (Insert) statementNode() {}

// Update sets columns on every row matching Filter.
type Update struct {
	Table  string
	Set    map[string]any
	Filter Predicate
}

func (Update) statementNode() {}

// Delete removes every row matching Filter. A nil Filter removes all rows.
type Delete struct {
	From   string
	Filter Predicate
}

func (Delete) statementNode() {}

// Equals matches rows whose Field equals Value. A nil Value matches NULL.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// In matches rows whose Field equals any of Values.
type In struct {
	Field  string
	Values []any
}

func (In) predicateNode() {}

// And matches rows satisfying every predicate.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Match builds a conjunction of Equals predicates from a field-equality map.
// Fields are ordered by name so the compiled text is stable. An empty map
// yields nil (no filter).
func Match(criteria map[string]any) Predicate {
	if len(criteria) == 0 {
		return nil
	}
	fields := make([]string, 0, len(criteria))
	for f := range criteria {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	if len(fields) == 1 {
		return Equals{Field: fields[0], Value: criteria[fields[0]]}
	}
	preds := make([]Predicate, 0, len(fields))
	for _, f := range fields {
		preds = append(preds, Equals{Field: f, Value: criteria[f]})
	}
	return And{Predicates: preds}
}
