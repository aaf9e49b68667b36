package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/IHTSDO/health-data-analytics/internal/config"
	"github.com/IHTSDO/health-data-analytics/internal/domain/cohort"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg, os.Stderr)
	rootCmd := newRootCmd(cfg, logger, os.Stdin, os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	logger := zerolog.New(w).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: w}).With().Timestamp().Logger()
	}
	lvl, err := cfg.Level()
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return logger.Level(lvl)
}

func newRootCmd(cfg *config.Config, logger zerolog.Logger, in io.Reader, out io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cohort-cli",
		Short:         "Build query-service payloads from saved cohort criteria",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	rootCmd.AddCommand(payloadCmd(cfg, logger))
	rootCmd.AddCommand(validateCmd(cfg, logger))
	rootCmd.AddCommand(subsetCmd(logger))
	return rootCmd
}

func payloadCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payload [state.json]",
		Short: "Restore a saved patient selection and print its API payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variantFlag, _ := cmd.Flags().GetString("variant")
			strict, _ := cmd.Flags().GetBool("strict")
			pretty, _ := cmd.Flags().GetBool("pretty")

			criteria, err := loadCriteria(cmd, cfg, variantFlag, args)
			if err != nil {
				return err
			}

			if err := criteria.Validate(); err != nil {
				if strict || cfg.StrictValidation {
					return err
				}
				logger.Warn().Err(err).Msg("criteria failed validation, sending anyway")
			}

			payload := criteria.ToAPIPayload()
			logger.Debug().
				Str("variant", string(criteria.Variant())).
				Int("criteria", criteria.Len()).
				Int("filled", len(payload.Criteria)).
				Msg("built payload")

			return writeJSON(cmd.OutOrStdout(), payload, pretty)
		},
	}
	cmd.Flags().String("variant", "", "Criteria key: event or encounter (defaults to CRITERIA_VARIANT)")
	cmd.Flags().Bool("strict", false, "Fail instead of warning when the criteria are invalid")
	cmd.Flags().Bool("pretty", false, "Indent the output")
	return cmd
}

func validateCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [state.json]",
		Short: "Check a saved patient selection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			variantFlag, _ := cmd.Flags().GetString("variant")

			criteria, err := loadCriteria(cmd, cfg, variantFlag, args)
			if err != nil {
				return err
			}
			if err := criteria.Validate(); err != nil {
				return err
			}

			filled := 0
			for _, c := range criteria.Criteria() {
				if c.IsFilled() {
					filled++
				}
			}
			logger.Info().Int("criteria", criteria.Len()).Int("filled", filled).Msg("criteria valid")
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d criteria, %d filled\n", criteria.Len(), filled)
			return nil
		},
	}
	cmd.Flags().String("variant", "", "Criteria key: event or encounter (defaults to CRITERIA_VARIANT)")
	return cmd
}

func subsetCmd(logger zerolog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subset",
		Short: "Work with ECL subsets",
	}

	newCmd := &cobra.Command{
		Use:   "new",
		Short: "Print a new subset definition",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			name, _ := cmd.Flags().GetString("name")
			description, _ := cmd.Flags().GetString("description")
			ecl, _ := cmd.Flags().GetString("ecl")

			if name == "" {
				return fmt.Errorf("--name is required")
			}
			if ecl == "" {
				return fmt.Errorf("--ecl is required")
			}

			s := cohort.NewSubset(id, name)
			s.Description = description
			s.ECL = ecl
			logger.Debug().Str("id", s.ID).Str("name", s.Name).Msg("created subset")
			return writeJSON(cmd.OutOrStdout(), s, true)
		},
	}
	newCmd.Flags().String("id", "", "Subset identifier (generated when empty)")
	newCmd.Flags().String("name", "", "Subset name")
	newCmd.Flags().String("description", "", "Subset description")
	newCmd.Flags().String("ecl", "", "ECL expression")
	cmd.AddCommand(newCmd)

	return cmd
}

// loadCriteria reads a saved state from the named file, or stdin when the
// argument is missing or "-", and restores it.
func loadCriteria(cmd *cobra.Command, cfg *config.Config, variantFlag string, args []string) (cohort.PatientCriteria, error) {
	raw := cfg.CriteriaVariant
	if variantFlag != "" {
		raw = variantFlag
	}
	variant, err := cohort.ParseVariant(raw)
	if err != nil {
		return cohort.PatientCriteria{}, err
	}

	var r io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return cohort.PatientCriteria{}, fmt.Errorf("open state: %w", err)
		}
		defer f.Close()
		r = f
	}

	var state cohort.PatientCriteriaState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return cohort.PatientCriteria{}, fmt.Errorf("decode state: %w", err)
	}
	return cohort.NewPatientCriteria(variant).Restore(state), nil
}

func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
