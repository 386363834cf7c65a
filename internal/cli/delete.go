package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/armory/internal/record"
)

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a record by id",
		Long: `Delete one record by internal id.

Deleting an agent also removes its group memberships. Deleting a group
deactivates it instead; the row and its memberships stay.

Example:
  armory delete agent 3
  armory delete group 1`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runDelete(opts *RootOptions, kindArg, idArg string, cmd *cobra.Command) error {
	s, err := opts.newSession(cmd)
	if err != nil {
		return err
	}

	kind, err := record.ParseKind(kindArg)
	if err != nil {
		return s.out.Fail(ExitCommandError, "invalid kind", err)
	}
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		_ = s.out.Error(ErrCodeArgs, "invalid id "+strconv.Quote(idArg), nil)
		return WrapExitError(ExitCommandError, "invalid id", err)
	}

	st, svc, err := s.open()
	if err != nil {
		return err
	}
	defer s.close(st)

	msg, err := svc.Delete(s.ctx, kind, id)
	if err != nil {
		return s.out.Fail(ExitFailure, "delete failed", err)
	}
	return s.out.Success(msg)
}
