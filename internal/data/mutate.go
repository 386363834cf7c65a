package data

import (
	"context"
	"fmt"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/armory/internal/errors"
	"github.com/roach88/armory/internal/record"
	"github.com/roach88/armory/internal/store"
)

// TechniqueInput names the ATT&CK technique an ability implements.
type TechniqueInput struct {
	AttackID string `yaml:"attack_id"`
	Name     string `yaml:"name"`
}

// ParserInput configures output parsing for an ability.
type ParserInput struct {
	Name     string `yaml:"name"`
	Property string `yaml:"property"`
	Script   string `yaml:"script"`
}

// AbilityInput is one platform variant of an ability. Test and Cleanup are
// already encoded; a nil Cleanup is stored as NULL.
type AbilityInput struct {
	AbilityID   string
	Tactic      string
	Technique   TechniqueInput
	Name        string
	Description string
	Platform    string
	Test        string
	Cleanup     *string
	Payload     string
	Parser      *ParserInput
}

// PhaseEntry places an ability, by natural id, in an adversary phase.
type PhaseEntry struct {
	Phase     int
	AbilityID string
}

// OperationInput describes a new operation.
type OperationInput struct {
	Name        string
	Group       int64
	AdversaryID int64
	Jitter      string // defaults to "2/8"
	Cleanup     *bool  // defaults to true
	Stealth     bool
	Sources     []int64 // zero ids are skipped
	Planner     *int64
}

// FactInput describes one fact. Score defaults to 1.
type FactInput struct {
	Property  string
	Value     string
	SourceID  int64
	Score     *int64
	Blacklist int64
	SetID     int64
	LinkID    *int64
}

const defaultJitter = "2/8"

// CreateAbility upserts the ability's technique by attack id, then creates
// the ability and its optional payload and parser. It returns the new
// ability's id.
func (s *Service) CreateAbility(ctx context.Context, in AbilityInput) (int64, error) {
	_, err := s.store.Create(ctx, record.KindTechnique, record.Record{
		"attack_id": in.Technique.AttackID,
		"name":      in.Technique.Name,
		"tactic":    in.Tactic,
	})
	if err != nil {
		return 0, err
	}

	// The insert may have replaced an existing row; read back to find it.
	technique, err := resolveOne(ctx, s.store, record.KindTechnique, record.Criteria{"attack_id": in.Technique.AttackID})
	if err != nil {
		return 0, err
	}

	var cleanup any
	if in.Cleanup != nil {
		cleanup = *in.Cleanup
	}
	id, err := s.store.Create(ctx, record.KindAbility, record.Record{
		"ability_id":  in.AbilityID,
		"name":        in.Name,
		"description": in.Description,
		"test":        in.Test,
		"cleanup":     cleanup,
		"technique":   technique.String("attack_id"),
		"platform":    in.Platform,
	})
	if err != nil {
		return 0, err
	}

	if in.Payload != "" {
		if _, err := s.store.Create(ctx, record.KindPayload, record.Record{"ability": id, "payload": in.Payload}); err != nil {
			return 0, err
		}
	}
	if in.Parser != nil {
		_, err := s.store.Create(ctx, record.KindParser, record.Record{
			"ability":  id,
			"name":     in.Parser.Name,
			"property": in.Parser.Property,
			"script":   in.Parser.Script,
		})
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}

// CreateAdversary creates or refreshes an adversary and replaces its phase
// mapping with phases. The name is stored lowercased.
func (s *Service) CreateAdversary(ctx context.Context, adversaryID, name, description string, phases []PhaseEntry) (int64, error) {
	name = cases.Lower(language.Und).String(name)

	var id int64
	err := s.store.Atomic(ctx, func(a store.Adapter) error {
		fields := record.Record{"name": name, "description": description}

		// A re-create is ignored by the schema; refresh the surviving row instead.
		if _, err := a.Create(ctx, record.KindAdversary, record.Record{
			"adversary_id": adversaryID,
			"name":         name,
			"description":  description,
		}); err != nil {
			return err
		}
		if err := a.Update(ctx, record.KindAdversary, "adversary_id", adversaryID, fields); err != nil {
			return err
		}

		adv, err := resolveOne(ctx, a, record.KindAdversary, record.Criteria{"adversary_id": adversaryID})
		if err != nil {
			return err
		}
		id = adv.ID()

		if err := a.Delete(ctx, record.KindAdversaryMap, record.Criteria{"adversary_id": id}); err != nil {
			return err
		}
		for _, p := range phases {
			if _, err := a.Create(ctx, record.KindAdversaryMap, record.Record{
				"adversary_id": id,
				"phase":        p.Phase,
				"ability_id":   p.AbilityID,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Debugw("adversary stored", "adversary_id", adversaryID, "id", id, "mappings", len(phases))
	return id, nil
}

// CreateGroup creates a host group with the agents identified by paws.
// Every paw must resolve to exactly one agent or nothing is written.
func (s *Service) CreateGroup(ctx context.Context, name string, paws []string) (int64, error) {
	var id int64
	err := s.store.Atomic(ctx, func(a store.Adapter) error {
		var err error
		id, err = a.Create(ctx, record.KindGroup, record.Record{"name": name})
		if err != nil {
			return err
		}
		for _, paw := range paws {
			agent, err := resolveOne(ctx, a, record.KindAgent, record.Criteria{"paw": paw})
			if err != nil {
				return errors.Wrapf(err, "group %s", name)
			}
			if _, err := a.Create(ctx, record.KindGroupMap, record.Record{"group_id": id, "agent_id": agent.ID()}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// CreateOperation creates an operation started now, its own source named
// after it, and the mappings to that source and to every supplied one.
func (s *Service) CreateOperation(ctx context.Context, in OperationInput) (int64, error) {
	jitter := in.Jitter
	if jitter == "" {
		jitter = defaultJitter
	}
	cleanup := true
	if in.Cleanup != nil {
		cleanup = *in.Cleanup
	}
	var planner any
	if in.Planner != nil {
		planner = *in.Planner
	}

	var opID int64
	err := s.store.Atomic(ctx, func(a store.Adapter) error {
		var err error
		opID, err = a.Create(ctx, record.KindOperation, record.Record{
			"name":         in.Name,
			"host_group":   in.Group,
			"adversary_id": in.AdversaryID,
			"start":        s.now(),
			"finish":       nil,
			"phase":        0,
			"jitter":       jitter,
			"cleanup":      cleanup,
			"stealth":      in.Stealth,
			"planner":      planner,
		})
		if err != nil {
			return err
		}

		sourceID, err := a.Create(ctx, record.KindSource, record.Record{"name": in.Name})
		if err != nil {
			return err
		}

		for _, src := range append([]int64{sourceID}, in.Sources...) {
			if src == 0 {
				continue
			}
			if _, err := a.Create(ctx, record.KindSourceMap, record.Record{"op_id": opID, "source_id": src}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.log.Infow("operation created", "name", in.Name, "id", opID)
	return opID, nil
}

// CreateSource creates a named fact source.
func (s *Service) CreateSource(ctx context.Context, name string) (int64, error) {
	return s.store.Create(ctx, record.KindSource, record.Record{"name": name})
}

// CreateFact creates one fact.
func (s *Service) CreateFact(ctx context.Context, in FactInput) (int64, error) {
	score := int64(1)
	if in.Score != nil {
		score = *in.Score
	}
	var linkID any
	if in.LinkID != nil {
		linkID = *in.LinkID
	}
	return s.store.Create(ctx, record.KindFact, record.Record{
		"property":  in.Property,
		"value":     in.Value,
		"source_id": in.SourceID,
		"score":     score,
		"blacklist": in.Blacklist,
		"set_id":    in.SetID,
		"link_id":   linkID,
	})
}

// CreateLink stores a chain link as given.
func (s *Service) CreateLink(ctx context.Context, link record.Record) (int64, error) {
	return s.store.Create(ctx, record.KindLink, link)
}

// CreateResult stores a link result as given.
func (s *Service) CreateResult(ctx context.Context, result record.Record) (int64, error) {
	return s.store.Create(ctx, record.KindResult, result)
}

// CreateAgent stores an agent. An agent without a paw is given a fresh one.
func (s *Service) CreateAgent(ctx context.Context, agent record.Record) (int64, error) {
	if agent.String("paw") == "" {
		agent = cloneRecord(agent)
		agent["paw"] = s.paws.Generate()
	}
	return s.store.Create(ctx, record.KindAgent, agent)
}

// CreatePlanner registers a planner module.
func (s *Service) CreatePlanner(ctx context.Context, name, module string) (int64, error) {
	return s.store.Create(ctx, record.KindPlanner, record.Record{"name": name, "module": module})
}

// Delete removes the record of kind with the given id and returns a
// confirmation message.
//
// Groups are never removed: deleting one deactivates it. Deleting an agent
// removes its group memberships first.
func (s *Service) Delete(ctx context.Context, kind record.Kind, id int64) (string, error) {
	if !kind.Valid() {
		return "", errors.Malformedf("unknown entity kind %d", int(kind))
	}

	switch kind {
	case record.KindGroup:
		return s.DeactivateGroup(ctx, id)
	case record.KindAgent:
		err := s.store.Atomic(ctx, func(a store.Adapter) error {
			if err := a.Delete(ctx, record.KindGroupMap, record.Criteria{"agent_id": id}); err != nil {
				return err
			}
			return a.Delete(ctx, record.KindAgent, record.Criteria{"id": id})
		})
		if err != nil {
			return "", err
		}
	default:
		if err := s.store.Delete(ctx, kind, record.Criteria{"id": id}); err != nil {
			return "", err
		}
	}

	s.log.Infow("record deleted", "kind", kind.String(), "id", id)
	return fmt.Sprintf("Removed %d from %s", id, kind.Table()), nil
}

// DeactivateGroup stamps a group as deactivated and returns a confirmation
// naming it. The group and its memberships stay in the store.
func (s *Service) DeactivateGroup(ctx context.Context, id int64) (string, error) {
	group, err := resolveOne(ctx, s.store, record.KindGroup, record.Criteria{"id": id})
	if err != nil {
		return "", err
	}

	if err := s.store.Update(ctx, record.KindGroup, "id", id, record.Record{"deactivated": s.now()}); err != nil {
		return "", err
	}

	name := group.String("name")
	s.log.Infow("group deactivated", "id", id, "name", name)
	return fmt.Sprintf("Removed %s host group", name), nil
}

// Update sets fields on every record of kind whose keyField equals
// keyValue. Fields and key are checked against the kind's columns.
func (s *Service) Update(ctx context.Context, kind record.Kind, keyField string, keyValue any, fields record.Record) error {
	return s.store.Update(ctx, kind, keyField, keyValue, fields)
}

func cloneRecord(r record.Record) record.Record {
	out := make(record.Record, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}
