package queryir

import (
	"fmt"
	"regexp"
	"strings"
)

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidationError lists every problem found in a statement.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid statement: " + strings.Join(e.Problems, "; ")
}

// Validate checks that a statement names its table and fields with plain
// identifiers and carries what it needs to execute. It returns nil or a
// *ValidationError.
//
// Validate is a pure function with no side effects.
func Validate(stmt Statement) error {
	v := &validator{}
	v.validateStatement(stmt)
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateStatement(stmt Statement) {
	switch s := stmt.(type) {
	case nil:
		v.addProblem("nil statement")
	case Select:
		v.validateIdent("table", s.From)
		v.validatePredicate(s.Filter)
	case Insert:
		v.validateIdent("table", s.Into)
		if len(s.Values) == 0 {
			v.addProblem("insert into %q has no values", s.Into)
		}
		for f := range s.Values {
			v.validateIdent("column", f)
		}
	case Update:
		v.validateIdent("table", s.Table)
		if len(s.Set) == 0 {
			v.addProblem("update of %q sets no columns", s.Table)
		}
		for f := range s.Set {
			v.validateIdent("column", f)
		}
		v.validatePredicate(s.Filter)
	case Delete:
		v.validateIdent("table", s.From)
		v.validatePredicate(s.Filter)
	default:
		v.addProblem("unknown statement type %T", stmt)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		// No filter.
	case Equals:
		v.validateIdent("field", pred.Field)
	case In:
		v.validateIdent("field", pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}

func (v *validator) validateIdent(what, name string) {
	if !identifier.MatchString(name) {
		v.addProblem("invalid %s name %q", what, name)
	}
}
