package record

import (
	"strings"

	"github.com/roach88/armory/internal/errors"
)

// Kind identifies one entity collection in the record store.
//
// Kind is a closed set: generic operations (update, delete) route through
// it instead of trusting caller-supplied table names.
type Kind int

const (
	KindTechnique Kind = iota + 1
	KindAbility
	KindPayload
	KindParser
	KindAdversary
	KindAdversaryMap
	KindAgent
	KindGroup
	KindGroupMap
	KindSource
	KindFact
	KindOperation
	KindSourceMap
	KindLink
	KindResult
	KindPlanner
)

// Schema describes the table backing a Kind.
type Schema struct {
	Name    string   // short name used on the command line
	Table   string   // table name in the store
	Columns []string // writable columns, excluding id
}

var schemas = map[Kind]Schema{
	KindTechnique:    {"technique", "core_attack", []string{"attack_id", "name", "tactic"}},
	KindAbility:      {"ability", "core_ability", []string{"ability_id", "technique", "name", "description", "test", "cleanup", "platform"}},
	KindPayload:      {"payload", "core_payload", []string{"ability", "payload"}},
	KindParser:       {"parser", "core_parser", []string{"ability", "name", "property", "script"}},
	KindAdversary:    {"adversary", "core_adversary", []string{"adversary_id", "name", "description"}},
	KindAdversaryMap: {"adversary_map", "core_adversary_map", []string{"adversary_id", "phase", "ability_id"}},
	KindAgent:        {"agent", "core_agent", []string{"paw", "host", "platform", "last_seen"}},
	KindGroup:        {"group", "core_group", []string{"name", "deactivated"}},
	KindGroupMap:     {"group_map", "core_group_map", []string{"group_id", "agent_id"}},
	KindSource:       {"source", "core_source", []string{"name"}},
	KindFact:         {"fact", "core_fact", []string{"property", "value", "source_id", "score", "blacklist", "set_id", "link_id"}},
	KindOperation:    {"operation", "core_operation", []string{"name", "host_group", "adversary_id", "start", "finish", "phase", "jitter", "cleanup", "stealth", "planner"}},
	KindSourceMap:    {"source_map", "core_source_map", []string{"op_id", "source_id"}},
	KindLink:         {"link", "core_chain", []string{"op_id", "paw", "ability", "command", "cleanup", "score", "status", "decide", "collect", "finish", "jitter"}},
	KindResult:       {"result", "core_result", []string{"link_id", "output"}},
	KindPlanner:      {"planner", "core_planner", []string{"name", "module"}},
}

// Kinds returns every known Kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(schemas))
	for k := KindTechnique; k <= KindPlanner; k++ {
		out = append(out, k)
	}
	return out
}

// Schema returns the table description for k.
func (k Kind) Schema() (Schema, bool) {
	s, ok := schemas[k]
	return s, ok
}

// Table returns the store table name, or "" for an unknown Kind.
func (k Kind) Table() string {
	return schemas[k].Table
}

func (k Kind) String() string {
	if s, ok := schemas[k]; ok {
		return s.Name
	}
	return "unknown"
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := schemas[k]
	return ok
}

// HasColumn reports whether field is addressable on k. The id column is
// always addressable.
func (k Kind) HasColumn(field string) bool {
	if field == "id" {
		return true
	}
	for _, c := range schemas[k].Columns {
		if c == field {
			return true
		}
	}
	return false
}

// CheckFields returns an ErrMalformed error naming the first field that k
// does not have.
func (k Kind) CheckFields(fields ...string) error {
	if !k.Valid() {
		return errors.Malformedf("unknown entity kind %d", int(k))
	}
	for _, f := range fields {
		if !k.HasColumn(f) {
			return errors.Malformedf("%s has no column %q", k.Table(), f)
		}
	}
	return nil
}

// ParseKind resolves a short name ("group") or table name ("core_group").
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, schema := range schemas {
		if schema.Name == s || schema.Table == s {
			return k, nil
		}
	}
	if s == "chain" {
		return KindLink, nil
	}
	return 0, errors.Malformedf("unknown entity kind %q", s)
}
