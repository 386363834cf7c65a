package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/roach88/armory/internal/config"
	"github.com/roach88/armory/internal/data"
	"github.com/roach88/armory/internal/logger"
	"github.com/roach88/armory/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Database   string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the armory CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "armory",
		Short: "armory - adversary emulation data store",
		Long: `Load abilities, adversaries and facts into the armory record store,
and read them back as fully materialized views.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (YAML)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides db.path)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewReloadCommand(opts))
	cmd.AddCommand(NewExplodeCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// session is the per-invocation state every command starts from.
type session struct {
	ctx context.Context
	cfg *config.Config
	log *zap.SugaredLogger
	out *OutputFormatter
}

// dataFlags maps command flags onto the config keys they override.
var dataFlags = map[string]string{
	"schema":      "data.schema",
	"abilities":   "data.abilities",
	"adversaries": "data.adversaries",
	"facts":       "data.facts",
}

// newSession loads configuration (defaults, file, environment, then flags)
// and builds the logger and output formatter for cmd.
func (o *RootOptions) newSession(cmd *cobra.Command) (*session, error) {
	out := &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}

	cfg, err := o.loadConfig(cmd)
	if err != nil {
		_ = out.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	log := logger.New(logger.Options{
		JSON:    cfg.Log.JSON,
		Verbose: o.Verbose,
		Output:  cmd.ErrOrStderr(),
	})
	return &session{ctx: ctx, cfg: cfg, log: log, out: out}, nil
}

func (o *RootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New(o.ConfigPath)
	if o.ConfigPath != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}
	if o.Database != "" {
		v.Set("db.path", o.Database)
	}
	if err := bindDataFlags(v, cmd); err != nil {
		return nil, err
	}
	return config.LoadWithViper(v)
}

func bindDataFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range dataFlags {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return err
		}
	}
	return nil
}

// addDataFlags registers the data source override flags on cmd.
func addDataFlags(cmd *cobra.Command) {
	cmd.Flags().String("schema", "", "schema SQL file (default: embedded schema)")
	cmd.Flags().String("abilities", "", "abilities directory")
	cmd.Flags().String("adversaries", "", "adversaries directory")
	cmd.Flags().String("facts", "", "facts file")
}

// open opens the configured store and a data service over it. The caller
// closes the store.
func (s *session) open() (*store.Store, *data.Service, error) {
	s.log.Debugw("opening database", "path", s.cfg.DB.Path)
	st, err := store.Open(s.cfg.DB.Path)
	if err != nil {
		return nil, nil, s.out.Fail(ExitCommandError, "failed to open database", err)
	}
	return st, data.New(st, data.WithLogger(s.log)), nil
}

func (s *session) close(st *store.Store) {
	if err := st.Close(); err != nil {
		s.log.Errorw("error closing database", "error", err)
	}
}
