package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/armory/internal/data"
	"github.com/roach88/armory/internal/record"
)

// ReloadSummary reports how many records a reload produced.
type ReloadSummary struct {
	Database    string `json:"database"`
	Abilities   int    `json:"abilities"`
	Adversaries int    `json:"adversaries"`
	Sources     int    `json:"sources"`
	Facts       int    `json:"facts"`
	Planners    int    `json:"planners"`
}

func (s ReloadSummary) String() string {
	return fmt.Sprintf("✓ Reloaded %s: %d abilities, %d adversaries, %d sources, %d facts, %d planners",
		s.Database, s.Abilities, s.Adversaries, s.Sources, s.Facts, s.Planners)
}

// NewReloadCommand creates the reload command.
func NewReloadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reload",
		Short: "Rebuild the store from configuration documents",
		Long: `Drop and recreate every table, then load abilities, adversaries,
facts and the configured planner.

Sources default to the config file (data.*, planner.*) and can be
overridden per run.

Example:
  armory reload --db ./armory.db
  armory reload --abilities ./data/abilities --facts ./conf/facts.yml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReload(rootOpts, cmd)
		},
	}

	addDataFlags(cmd)
	return cmd
}

func runReload(opts *RootOptions, cmd *cobra.Command) error {
	s, err := opts.newSession(cmd)
	if err != nil {
		return err
	}

	st, svc, err := s.open()
	if err != nil {
		return err
	}
	defer s.close(st)

	reload := data.ReloadOptions{
		SchemaPath:  s.cfg.Data.Schema,
		Abilities:   s.cfg.Data.Abilities,
		Adversaries: s.cfg.Data.Adversaries,
		Facts:       s.cfg.Data.Facts,
	}
	if s.cfg.Planner.Name != "" {
		reload.Planner = &data.PlannerSpec{Name: s.cfg.Planner.Name, Module: s.cfg.Planner.Module}
	}

	s.out.VerboseLog("Reloading %s", s.cfg.DB.Path)
	if err := svc.Reload(s.ctx, reload); err != nil {
		return s.out.Fail(ExitFailure, "reload failed", err)
	}

	summary := ReloadSummary{Database: s.cfg.DB.Path}
	counts := []struct {
		kind record.Kind
		dst  *int
	}{
		{record.KindAbility, &summary.Abilities},
		{record.KindAdversary, &summary.Adversaries},
		{record.KindSource, &summary.Sources},
		{record.KindFact, &summary.Facts},
		{record.KindPlanner, &summary.Planners},
	}
	for _, c := range counts {
		recs, err := st.Get(s.ctx, c.kind, nil)
		if err != nil {
			return s.out.Fail(ExitFailure, "count records", err)
		}
		*c.dst = len(recs)
	}

	return s.out.Success(summary)
}
