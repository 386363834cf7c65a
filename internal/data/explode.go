package data

import (
	"context"
	"sort"

	"github.com/roach88/armory/internal/record"
)

// Explode operations materialize nested views. Each takes criteria that
// filter the root records (nil matches all) and returns views in root id
// order. Child lookups run one at a time; nothing is cached between calls.

// ExplodeAbilities returns abilities with their technique, parsers and
// payloads attached. A NULL cleanup becomes "".
func (s *Service) ExplodeAbilities(ctx context.Context, criteria record.Criteria) ([]record.Ability, error) {
	rows, err := s.store.Get(ctx, record.KindAbility, criteria)
	if err != nil {
		return nil, err
	}

	out := make([]record.Ability, 0, len(rows))
	for _, row := range rows {
		ab := record.AbilityFrom(row)

		parsers, err := s.store.Get(ctx, record.KindParser, record.Criteria{"ability": ab.ID})
		if err != nil {
			return nil, err
		}
		ab.Parsers = views(parsers, record.ParserFrom)

		payloads, err := s.store.Get(ctx, record.KindPayload, record.Criteria{"ability": ab.ID})
		if err != nil {
			return nil, err
		}
		ab.Payloads = views(payloads, record.PayloadFrom)

		technique, err := resolveOne(ctx, s.store, record.KindTechnique, record.Criteria{"attack_id": ab.Technique.AttackID})
		if err != nil {
			return nil, err
		}
		ab.Technique = record.TechniqueFrom(technique)

		out = append(out, ab)
	}
	return out, nil
}

// ExplodeAdversaries returns adversaries with their abilities grouped by
// phase. Within a phase, abilities follow mapping order, and every platform
// variant of a mapped ability is included.
func (s *Service) ExplodeAdversaries(ctx context.Context, criteria record.Criteria) ([]record.Adversary, error) {
	rows, err := s.store.Get(ctx, record.KindAdversary, criteria)
	if err != nil {
		return nil, err
	}

	out := make([]record.Adversary, 0, len(rows))
	for _, row := range rows {
		adv := record.AdversaryFrom(row)
		adv.Phases = map[int][]record.Ability{}

		mappings, err := s.store.Get(ctx, record.KindAdversaryMap, record.Criteria{"adversary_id": adv.ID})
		if err != nil {
			return nil, err
		}
		for _, m := range views(mappings, record.PhaseMappingFrom) {
			abilities, err := s.ExplodeAbilities(ctx, record.Criteria{"ability_id": m.AbilityID})
			if err != nil {
				return nil, err
			}
			if len(abilities) == 0 {
				continue
			}
			adv.Phases[m.Phase] = append(adv.Phases[m.Phase], abilities...)
		}

		out = append(out, adv)
	}
	return out, nil
}

// ExplodeOperations returns operations with their chain (ascending link
// id), host group, adversary, and the facts of every source mapped to them.
func (s *Service) ExplodeOperations(ctx context.Context, criteria record.Criteria) ([]record.Operation, error) {
	rows, err := s.store.Get(ctx, record.KindOperation, criteria)
	if err != nil {
		return nil, err
	}

	out := make([]record.Operation, 0, len(rows))
	for _, row := range rows {
		op := record.OperationFrom(row)

		chain, err := s.ExplodeChain(ctx, record.Criteria{"op_id": op.ID})
		if err != nil {
			return nil, err
		}
		sort.SliceStable(chain, func(i, j int) bool { return chain[i].ID < chain[j].ID })
		op.Chain = chain

		groupCriteria := record.Criteria{"id": op.HostGroup.ID}
		groups, err := s.ExplodeGroups(ctx, groupCriteria)
		if err != nil {
			return nil, err
		}
		if op.HostGroup, err = only(groups, record.KindGroup, groupCriteria); err != nil {
			return nil, err
		}

		advCriteria := record.Criteria{"id": op.AdversaryID}
		adversaries, err := s.ExplodeAdversaries(ctx, advCriteria)
		if err != nil {
			return nil, err
		}
		if op.Adversary, err = only(adversaries, record.KindAdversary, advCriteria); err != nil {
			return nil, err
		}

		if op.Facts, err = s.operationFacts(ctx, op.ID); err != nil {
			return nil, err
		}

		out = append(out, op)
	}
	return out, nil
}

// operationFacts reads the facts of every source mapped to an operation in
// a single set lookup.
func (s *Service) operationFacts(ctx context.Context, opID int64) ([]record.Fact, error) {
	mappings, err := s.store.Get(ctx, record.KindSourceMap, record.Criteria{"op_id": opID})
	if err != nil {
		return nil, err
	}

	sourceIDs := make([]any, 0, len(mappings))
	for _, m := range mappings {
		sourceIDs = append(sourceIDs, m.Int("source_id"))
	}

	facts, err := s.store.GetIn(ctx, record.KindFact, "source_id", sourceIDs)
	if err != nil {
		return nil, err
	}
	return views(facts, record.FactFrom), nil
}

// ExplodeGroups returns groups, active or not, with their raw membership rows.
func (s *Service) ExplodeGroups(ctx context.Context, criteria record.Criteria) ([]record.Group, error) {
	rows, err := s.store.Get(ctx, record.KindGroup, criteria)
	if err != nil {
		return nil, err
	}

	out := make([]record.Group, 0, len(rows))
	for _, row := range rows {
		g := record.GroupFrom(row)
		members, err := s.store.Get(ctx, record.KindGroupMap, record.Criteria{"group_id": g.ID})
		if err != nil {
			return nil, err
		}
		g.Agents = views(members, record.MembershipFrom)
		out = append(out, g)
	}
	return out, nil
}

// ExplodeAgents returns agents with every active group each belongs to, in
// group id order, each with the id of the membership row.
func (s *Service) ExplodeAgents(ctx context.Context, criteria record.Criteria) ([]record.Agent, error) {
	rows, err := s.store.Get(ctx, record.KindAgent, criteria)
	if err != nil {
		return nil, err
	}

	active, err := s.store.Get(ctx, record.KindGroup, record.Criteria{"deactivated": nil})
	if err != nil {
		return nil, err
	}

	memberOf := map[int64][]record.AgentGroup{}
	for _, g := range views(active, record.GroupFrom) {
		members, err := s.store.Get(ctx, record.KindGroupMap, record.Criteria{"group_id": g.ID})
		if err != nil {
			return nil, err
		}
		for _, m := range views(members, record.MembershipFrom) {
			memberOf[m.AgentID] = append(memberOf[m.AgentID], record.AgentGroup{ID: g.ID, Name: g.Name, MapID: m.ID})
		}
	}

	out := make([]record.Agent, 0, len(rows))
	for _, row := range rows {
		agent := record.AgentFrom(row)
		agent.Groups = memberOf[agent.ID]
		if agent.Groups == nil {
			agent.Groups = []record.AgentGroup{}
		}
		out = append(out, agent)
	}
	return out, nil
}

// ExplodeResults returns results with their link, and the facts that link
// produced, nested under each.
func (s *Service) ExplodeResults(ctx context.Context, criteria record.Criteria) ([]record.Result, error) {
	rows, err := s.store.Get(ctx, record.KindResult, criteria)
	if err != nil {
		return nil, err
	}

	out := make([]record.Result, 0, len(rows))
	for _, row := range rows {
		result := record.ResultFrom(row)

		link, err := resolveOne(ctx, s.store, record.KindLink, record.Criteria{"id": result.LinkID})
		if err != nil {
			return nil, err
		}
		result.Link = record.LinkFrom(link)

		facts, err := s.store.Get(ctx, record.KindFact, record.Criteria{"link_id": result.Link.ID})
		if err != nil {
			return nil, err
		}
		result.Link.Facts = views(facts, record.FactFrom)

		out = append(out, result)
	}
	return out, nil
}

// ExplodeChain returns links flattened with their ability's name and
// description.
func (s *Service) ExplodeChain(ctx context.Context, criteria record.Criteria) ([]record.Link, error) {
	rows, err := s.store.Get(ctx, record.KindLink, criteria)
	if err != nil {
		return nil, err
	}

	out := make([]record.Link, 0, len(rows))
	for _, row := range rows {
		link := record.LinkFrom(row)

		ability, err := resolveOne(ctx, s.store, record.KindAbility, record.Criteria{"id": link.Ability})
		if err != nil {
			return nil, err
		}
		link.AbilityName = ability.String("name")
		link.AbilityDescription = ability.String("description")

		out = append(out, link)
	}
	return out, nil
}

// ExplodeSources returns sources with their facts.
func (s *Service) ExplodeSources(ctx context.Context, criteria record.Criteria) ([]record.Source, error) {
	rows, err := s.store.Get(ctx, record.KindSource, criteria)
	if err != nil {
		return nil, err
	}

	out := make([]record.Source, 0, len(rows))
	for _, row := range rows {
		src := record.SourceFrom(row)
		facts, err := s.store.Get(ctx, record.KindFact, record.Criteria{"source_id": src.ID})
		if err != nil {
			return nil, err
		}
		src.Facts = views(facts, record.FactFrom)
		out = append(out, src)
	}
	return out, nil
}

// ExplodePlanners returns planners.
func (s *Service) ExplodePlanners(ctx context.Context, criteria record.Criteria) ([]record.Planner, error) {
	rows, err := s.store.Get(ctx, record.KindPlanner, criteria)
	if err != nil {
		return nil, err
	}
	return views(rows, record.PlannerFrom), nil
}

// ExplodePayloads returns payloads.
func (s *Service) ExplodePayloads(ctx context.Context, criteria record.Criteria) ([]record.Payload, error) {
	rows, err := s.store.Get(ctx, record.KindPayload, criteria)
	if err != nil {
		return nil, err
	}
	return views(rows, record.PayloadFrom), nil
}

// ExplodeParsers returns parsers.
func (s *Service) ExplodeParsers(ctx context.Context, criteria record.Criteria) ([]record.Parser, error) {
	rows, err := s.store.Get(ctx, record.KindParser, criteria)
	if err != nil {
		return nil, err
	}
	return views(rows, record.ParserFrom), nil
}
