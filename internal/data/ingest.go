package data

import (
	"context"
	"os"
	"sort"

	"github.com/roach88/armory/internal/errors"
	"github.com/roach88/armory/internal/loader"
	"github.com/roach88/armory/internal/store"
)

// ReloadOptions names the inputs of a full reload. Empty paths skip their
// stage; an empty SchemaPath uses the embedded default schema.
type ReloadOptions struct {
	SchemaPath  string
	Abilities   string
	Adversaries string
	Facts       string
	Planner     *PlannerSpec
}

// PlannerSpec registers one planner during reload.
type PlannerSpec struct {
	Name   string `yaml:"name"`
	Module string `yaml:"module"`
}

type abilitySpec struct {
	ID          string                  `yaml:"id"`
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Tactic      string                  `yaml:"tactic"`
	Technique   TechniqueInput          `yaml:"technique"`
	Executors   map[string]executorSpec `yaml:"executors"`
}

type executorSpec struct {
	Command string       `yaml:"command"`
	Cleanup *string      `yaml:"cleanup"`
	Payload string       `yaml:"payload"`
	Parser  *ParserInput `yaml:"parser"`
}

type adversarySpec struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Phases      map[int][]string `yaml:"phases"`
}

type factSourceSpec struct {
	Name  string     `yaml:"name"`
	Facts []factSpec `yaml:"facts"`
}

type factSpec struct {
	Property  string `yaml:"property"`
	Value     string `yaml:"value"`
	Score     *int64 `yaml:"score"`
	Blacklist int64  `yaml:"blacklist"`
	SetID     int64  `yaml:"set_id"`
	LinkID    *int64 `yaml:"link_id"`
}

// Reload rebuilds the store from scratch: schema, then abilities, then
// adversaries, then facts, then the planner. Adversaries name abilities by
// natural id, so abilities load first. The first failure stops the reload;
// records already written stay.
func (s *Service) Reload(ctx context.Context, opts ReloadOptions) error {
	schema := store.DefaultSchema()
	if opts.SchemaPath != "" {
		b, err := os.ReadFile(opts.SchemaPath)
		if err != nil {
			return errors.Wrapf(err, "read schema %s", opts.SchemaPath)
		}
		schema = string(b)
	}

	s.log.Infow("reloading store", "schema", opts.SchemaPath)
	if err := s.store.Build(ctx, schema); err != nil {
		return err
	}

	if err := s.LoadAbilities(ctx, opts.Abilities); err != nil {
		return err
	}
	if err := s.LoadAdversaries(ctx, opts.Adversaries); err != nil {
		return err
	}
	if err := s.LoadFacts(ctx, opts.Facts); err != nil {
		return err
	}
	return s.LoadPlanner(ctx, opts.Planner)
}

// LoadAbilities creates one ability per (ability, executor) pair found in
// the YAML files under dir. Executors are taken in platform name order.
func (s *Service) LoadAbilities(ctx context.Context, dir string) error {
	if dir == "" {
		s.log.Debug("no abilities directory, skipping")
		return nil
	}

	count := 0
	for batch, err := range loader.Documents(dir) {
		if err != nil {
			return errors.Wrap(err, "load abilities")
		}
		for _, doc := range batch {
			var spec abilitySpec
			if err := decode(doc, loader.DefAbility, &spec); err != nil {
				return errors.Wrap(err, "load abilities")
			}

			for _, platform := range sortedKeys(spec.Executors) {
				ex := spec.Executors[platform]
				in := AbilityInput{
					AbilityID:   spec.ID,
					Tactic:      spec.Tactic,
					Technique:   spec.Technique,
					Name:        spec.Name,
					Description: spec.Description,
					Platform:    platform,
					Test:        EncodeCommand(ex.Command),
					Cleanup:     encodeCleanup(ex.Cleanup),
					Payload:     ex.Payload,
					Parser:      ex.Parser,
				}
				if _, err := s.CreateAbility(ctx, in); err != nil {
					return errors.Wrapf(err, "ability %s (%s)", spec.ID, platform)
				}
				count++
			}
		}
	}

	s.log.Infow("abilities loaded", "dir", dir, "count", count)
	return nil
}

// LoadAdversaries creates the adversaries found in the YAML files under
// dir. Phases are flattened in ascending phase order, list order within a
// phase.
func (s *Service) LoadAdversaries(ctx context.Context, dir string) error {
	if dir == "" {
		s.log.Debug("no adversaries directory, skipping")
		return nil
	}

	count := 0
	for batch, err := range loader.Documents(dir) {
		if err != nil {
			return errors.Wrap(err, "load adversaries")
		}
		for _, doc := range batch {
			var spec adversarySpec
			if err := decode(doc, loader.DefAdversary, &spec); err != nil {
				return errors.Wrap(err, "load adversaries")
			}

			if _, err := s.CreateAdversary(ctx, spec.ID, spec.Name, spec.Description, flattenPhases(spec.Phases)); err != nil {
				return errors.Wrapf(err, "adversary %s", spec.ID)
			}
			count++
		}
	}

	s.log.Infow("adversaries loaded", "dir", dir, "count", count)
	return nil
}

// LoadFacts creates one source per fact collection in the file at path and
// one fact per entry, attached to that source.
func (s *Service) LoadFacts(ctx context.Context, path string) error {
	if path == "" {
		s.log.Debug("no facts file, skipping")
		return nil
	}

	sources, facts := 0, 0
	for batch, err := range loader.Documents(path) {
		if err != nil {
			return errors.Wrap(err, "load facts")
		}
		for _, doc := range batch {
			var spec factSourceSpec
			if err := decode(doc, loader.DefFactSource, &spec); err != nil {
				return errors.Wrap(err, "load facts")
			}

			sourceID, err := s.CreateSource(ctx, spec.Name)
			if err != nil {
				return errors.Wrapf(err, "source %s", spec.Name)
			}
			sources++

			for _, f := range spec.Facts {
				_, err := s.CreateFact(ctx, FactInput{
					Property:  f.Property,
					Value:     f.Value,
					SourceID:  sourceID,
					Score:     f.Score,
					Blacklist: f.Blacklist,
					SetID:     f.SetID,
					LinkID:    f.LinkID,
				})
				if err != nil {
					return errors.Wrapf(err, "fact %s in source %s", f.Property, spec.Name)
				}
				facts++
			}
		}
	}

	s.log.Infow("facts loaded", "path", path, "sources", sources, "facts", facts)
	return nil
}

// LoadPlanner registers spec. A nil spec is a no-op.
func (s *Service) LoadPlanner(ctx context.Context, spec *PlannerSpec) error {
	if spec == nil {
		s.log.Debug("no planner, skipping")
		return nil
	}
	if _, err := s.CreatePlanner(ctx, spec.Name, spec.Module); err != nil {
		return errors.Wrapf(err, "planner %s", spec.Name)
	}
	s.log.Infow("planner loaded", "name", spec.Name, "module", spec.Module)
	return nil
}

// decode validates doc against def before decoding it into v.
func decode(doc loader.Document, def loader.Definition, v any) error {
	if err := doc.Validate(def); err != nil {
		return err
	}
	return doc.Decode(v)
}

// flattenPhases turns a phase mapping into (phase, ability) pairs, phases
// ascending.
func flattenPhases(phases map[int][]string) []PhaseEntry {
	keys := make([]int, 0, len(phases))
	for k := range phases {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var out []PhaseEntry
	for _, phase := range keys {
		for _, id := range phases[phase] {
			out = append(out, PhaseEntry{Phase: phase, AbilityID: id})
		}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
