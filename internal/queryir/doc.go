// Package queryir is the statement representation the record store compiles
// to SQL.
//
// Statements cover the store's fixed CRUD surface: Select, Insert, Update
// and Delete against one table. Filters are built from three predicates:
//
//	Equals{Field, Value}   field = value (IS NULL when Value is nil)
//	In{Field, Values}      field IN (values...), matches nothing when empty
//	And{Predicates}        conjunction, vacuously true when empty
//
// Statement and Predicate are sealed interfaces using the marker method
// pattern, so backends can switch over them exhaustively:
//
//	switch s := stmt.(type) {
//	case Select:
//	case Insert:
//	case Update:
//	case Delete:
//	}
//
// Validate rejects statements whose table or field names are not plain
// identifiers. Values are never part of the statement text; backends must
// bind them as parameters.
package queryir
