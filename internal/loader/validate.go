package loader

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/armory/internal/errors"
)

//go:embed schema.cue
var schemaSource string

// Definition names a document shape in the embedded CUE schema.
type Definition string

const (
	DefAbility    Definition = "#Ability"
	DefAdversary  Definition = "#Adversary"
	DefFactSource Definition = "#FactSource"
	DefPlanner    Definition = "#Planner"
)

// Validator checks documents against the embedded CUE schema.
// It is safe for concurrent use.
type Validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// NewValidator compiles the embedded schema.
func NewValidator() (*Validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, errors.Wrap(err, "compile document schema")
	}
	return &Validator{ctx: ctx, schema: schema}, nil
}

var defaultValidator = sync.OnceValues(NewValidator)

// Validate checks doc against def using the embedded schema.
func (d Document) Validate(def Definition) error {
	v, err := defaultValidator()
	if err != nil {
		return err
	}
	return v.Validate(d, def)
}

// Validate reports, as errors.ErrMalformed, the first way doc fails to
// satisfy def: a missing required field, a wrong type, or a phase key
// that is not a number.
func (v *Validator) Validate(doc Document, def Definition) error {
	var raw any
	if err := doc.node.Decode(&raw); err != nil {
		return errors.WrapMalformed(err, doc.where())
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	shape := v.schema.LookupPath(cue.ParsePath(string(def)))
	if !shape.Exists() {
		return errors.Malformedf("unknown document definition %s", def)
	}

	value := v.ctx.Encode(normalize(raw))
	if err := value.Err(); err != nil {
		return errors.WrapMalformed(err, doc.where())
	}

	if err := shape.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return errors.WrapMalformed(err, fmt.Sprintf("%s: not a valid %s", doc.where(), def))
	}
	return nil
}

// normalize turns the map[any]any produced for non-string YAML keys (phase
// numbers) into map[string]any so CUE can encode it.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
