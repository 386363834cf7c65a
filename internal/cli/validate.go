package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/armory/internal/loader"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool     `json:"valid"`
	Documents int      `json:"documents"`
	Errors    []string `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ All documents valid (%d checked)", r.Documents)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration documents without loading them",
		Long: `Check ability, adversary and fact documents against their schemas
without touching the store.

Every file is checked; a broken file does not hide errors in the others.
Faster than reload for development feedback.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, cmd)
		},
	}

	cmd.Flags().String("abilities", "", "abilities directory")
	cmd.Flags().String("adversaries", "", "adversaries directory")
	cmd.Flags().String("facts", "", "facts file")

	return cmd
}

func runValidate(opts *RootOptions, cmd *cobra.Command) error {
	s, err := opts.newSession(cmd)
	if err != nil {
		return err
	}

	stages := []struct {
		path string
		def  loader.Definition
	}{
		{s.cfg.Data.Abilities, loader.DefAbility},
		{s.cfg.Data.Adversaries, loader.DefAdversary},
		{s.cfg.Data.Facts, loader.DefFactSource},
	}

	var result ValidationResult
	for _, stage := range stages {
		if stage.path == "" {
			continue
		}
		files, err := loader.Files(stage.path)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		s.out.VerboseLog("Found %d document file(s) in %s", len(files), stage.path)

		for _, file := range files {
			checked, errs := validateFile(file, stage.def)
			result.Documents += checked
			result.Errors = append(result.Errors, errs...)
		}
	}

	if len(result.Errors) > 0 {
		if err := s.out.Error(ErrCodeMalformed, fmt.Sprintf("%d invalid document(s)", len(result.Errors)), result.Errors); err != nil {
			return err
		}
		return NewExitError(ExitFailure, "validation failed")
	}

	result.Valid = true
	return s.out.Success(result)
}

// validateFile checks every document in file against def. A file that
// fails to parse contributes one error and no further documents.
func validateFile(file string, def loader.Definition) (int, []string) {
	var (
		checked int
		errs    []string
	)
	for batch, err := range loader.Documents(file) {
		if err != nil {
			errs = append(errs, err.Error())
			break
		}
		for _, doc := range batch {
			checked++
			if err := doc.Validate(def); err != nil {
				errs = append(errs, err.Error())
			}
		}
	}
	return checked, errs
}
