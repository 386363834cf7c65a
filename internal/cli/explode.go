package cli

import (
	"context"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/armory/internal/data"
	"github.com/roach88/armory/internal/errors"
	"github.com/roach88/armory/internal/record"
	"github.com/roach88/armory/internal/store"
)

// ExplodeOptions holds flags for the explode command.
type ExplodeOptions struct {
	*RootOptions
	Where []string
}

// NewExplodeCommand creates the explode command.
func NewExplodeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExplodeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explode <kind>",
		Short: "Print materialized records of one kind",
		Long: `Print every record of a kind as a nested view, in id order.

Abilities carry their technique, parsers and payloads; adversaries their
abilities by phase; operations their chain, host group, adversary and
facts. Kinds without a nested view print their stored rows.

Filters are exact matches. Integer values match integer columns and
"null" matches NULL.

Example:
  armory explode adversary
  armory explode ability --where ability_id=ab-1 --where platform=linux
  armory explode group --where deactivated=null --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplode(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Where, "where", "w", nil, "filter as field=value (repeatable)")

	return cmd
}

func runExplode(opts *ExplodeOptions, kindArg string, cmd *cobra.Command) error {
	s, err := opts.newSession(cmd)
	if err != nil {
		return err
	}

	kind, err := record.ParseKind(kindArg)
	if err != nil {
		return s.out.Fail(ExitCommandError, "invalid kind", err)
	}
	criteria, err := ParseCriteria(opts.Where)
	if err != nil {
		return s.out.Fail(ExitCommandError, "invalid filter", err)
	}

	st, svc, err := s.open()
	if err != nil {
		return err
	}
	defer s.close(st)

	views, err := explode(s.ctx, svc, st, kind, criteria)
	if err != nil {
		return s.out.Fail(ExitFailure, "explode "+kind.String(), err)
	}
	return s.out.View(views)
}

// explode dispatches to the nested view for kind, or the stored rows for
// kinds that have none.
func explode(ctx context.Context, svc *data.Service, st *store.Store, kind record.Kind, criteria record.Criteria) (any, error) {
	switch kind {
	case record.KindAbility:
		return svc.ExplodeAbilities(ctx, criteria)
	case record.KindAdversary:
		return svc.ExplodeAdversaries(ctx, criteria)
	case record.KindOperation:
		return svc.ExplodeOperations(ctx, criteria)
	case record.KindGroup:
		return svc.ExplodeGroups(ctx, criteria)
	case record.KindAgent:
		return svc.ExplodeAgents(ctx, criteria)
	case record.KindResult:
		return svc.ExplodeResults(ctx, criteria)
	case record.KindLink:
		return svc.ExplodeChain(ctx, criteria)
	case record.KindSource:
		return svc.ExplodeSources(ctx, criteria)
	case record.KindPlanner:
		return svc.ExplodePlanners(ctx, criteria)
	case record.KindPayload:
		return svc.ExplodePayloads(ctx, criteria)
	case record.KindParser:
		return svc.ExplodeParsers(ctx, criteria)
	default:
		return st.Get(ctx, kind, criteria)
	}
}

// ParseCriteria turns field=value filters into criteria. Values that parse
// as integers become int64; "null" becomes nil.
func ParseCriteria(filters []string) (record.Criteria, error) {
	if len(filters) == 0 {
		return nil, nil
	}

	criteria := record.Criteria{}
	for _, f := range filters {
		field, value, ok := strings.Cut(f, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, errors.Malformedf("filter %q is not field=value", f)
		}
		if _, dup := criteria[field]; dup {
			return nil, errors.Malformedf("field %q filtered twice", field)
		}
		criteria[field] = parseValue(value)
	}
	return criteria, nil
}

func parseValue(s string) any {
	if s == "null" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return s
}
