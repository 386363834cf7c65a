package querysql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/armory/internal/queryir"
)

// SQLCompiler compiles queryir statements to parameterized SQL for SQLite.
//
// Every SELECT carries ORDER BY id so reads are deterministic.
// Values are always bound as parameters, never interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a statement to SQL text and its parameters.
// The statement is validated first; identifiers that fail validation are
// never emitted.
func (c *SQLCompiler) Compile(stmt queryir.Statement) (string, []any, error) {
	if err := queryir.Validate(stmt); err != nil {
		return "", nil, err
	}

	switch s := stmt.(type) {
	case queryir.Select:
		return c.compileSelect(s)
	case queryir.Insert:
		return c.compileInsert(s)
	case queryir.Update:
		return c.compileUpdate(s)
	case queryir.Delete:
		return c.compileDelete(s)
	default:
		return "", nil, fmt.Errorf("unsupported statement type: %T", stmt)
	}
}

func (c *SQLCompiler) compileSelect(s queryir.Select) (string, []any, error) {
	where, params, err := c.compileWhere(s.Filter)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("SELECT * FROM %s%s ORDER BY id ASC", s.From, where), params, nil
}

func (c *SQLCompiler) compileInsert(s queryir.Insert) (string, []any, error) {
	cols := sortedColumns(s.Values)
	params := make([]any, 0, len(cols))
	for _, col := range cols {
		params = append(params, s.Values[col])
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.Into,
		strings.Join(cols, ", "),
		placeholders)
	return sql, params, nil
}

func (c *SQLCompiler) compileUpdate(s queryir.Update) (string, []any, error) {
	cols := sortedColumns(s.Set)
	sets := make([]string, 0, len(cols))
	params := make([]any, 0, len(cols))
	for _, col := range cols {
		sets = append(sets, col+" = ?")
		params = append(params, s.Set[col])
	}

	where, whereParams, err := c.compileWhere(s.Filter)
	if err != nil {
		return "", nil, err
	}
	params = append(params, whereParams...)

	return fmt.Sprintf("UPDATE %s SET %s%s", s.Table, strings.Join(sets, ", "), where), params, nil
}

func (c *SQLCompiler) compileDelete(s queryir.Delete) (string, []any, error) {
	where, params, err := c.compileWhere(s.Filter)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("DELETE FROM %s%s", s.From, where), params, nil
}

// compileWhere returns " WHERE <predicate>" or "" for a nil filter.
func (c *SQLCompiler) compileWhere(p queryir.Predicate) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	sql, params, err := c.compilePredicate(p)
	if err != nil {
		return "", nil, fmt.Errorf("compile filter: %w", err)
	}
	return " WHERE " + sql, params, nil
}

// compilePredicate compiles a predicate to a WHERE fragment.
// CRITICAL: Values NEVER interpolated - always use ? placeholders.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.Equals:
		if pred.Value == nil {
			return pred.Field + " IS NULL", nil, nil
		}
		return pred.Field + " = ?", []any{pred.Value}, nil
	case queryir.In:
		if len(pred.Values) == 0 {
			// IN () is not valid SQLite; an empty set matches nothing.
			return "0 = 1", nil, nil
		}
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(pred.Values)), ", ")
		params := append([]any(nil), pred.Values...)
		return fmt.Sprintf("%s IN (%s)", pred.Field, placeholders), params, nil
	case queryir.And:
		return c.compileAnd(pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileAnd compiles an And predicate to conjunction with AND.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var sqlParts []string
	var allParams []any

	for _, pred := range and.Predicates {
		sql, params, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	return strings.Join(sqlParts, " AND "), allParams, nil
}

// sortedColumns returns map keys sorted for deterministic SQL text.
func sortedColumns(m map[string]any) []string {
	cols := make([]string, 0, len(m))
	for k := range m {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
