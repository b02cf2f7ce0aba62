package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"insurisk/adapters/excel"
	"insurisk/adapters/postgres"
	"insurisk/app"
	"insurisk/domain/core"
	"insurisk/internal"
	"insurisk/internal/cleaning"
	"insurisk/internal/config"
	"insurisk/internal/report"
	"insurisk/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// globalFlags override the environment configuration
type globalFlags struct {
	file      string
	delimiter string
	format    string
	output    string
	logLevel  string
}

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	flags := &globalFlags{}
	rootCmd := &cobra.Command{
		Use:           "insurisk",
		Short:         "Clean insurance transaction data and test segment risk hypotheses",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&flags.file, "file", "", "Data file (.txt/.csv delimited or .xlsx); overrides DATA_FILE")
	rootCmd.PersistentFlags().StringVar(&flags.delimiter, "delimiter", "", "Field delimiter for text files; overrides DATA_DELIMITER")
	rootCmd.PersistentFlags().StringVar(&flags.format, "format", "", "Report format: text, markdown or html; overrides REPORT_FORMAT")
	rootCmd.PersistentFlags().StringVar(&flags.output, "output", "", "Report file; overrides REPORT_OUTPUT (default stdout)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "ERROR, WARN, INFO, DEBUG or TRACE; overrides LOG_LEVEL")

	rootCmd.AddCommand(
		newCleanCmd(flags),
		newMissingCmd(flags),
		newTestCmd(flags),
		newHypothesesCmd(flags),
		newSegmentsCmd(flags),
		newResultsCmd(flags),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// env is everything a command needs, built from config and flags
type env struct {
	config  *config.Config
	logger  *internal.Logger
	service *app.RiskAnalysisService
	results ports.ResultRepository
	db      *sqlx.DB
}

func (r *env) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func setup(ctx context.Context, flags *globalFlags, needData bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flags.file != "" {
		cfg.Data.File = flags.file
	}
	if flags.delimiter != "" {
		if cfg.Data.Delimiter, err = config.ParseDelimiter(flags.delimiter); err != nil {
			return nil, err
		}
	}
	if flags.format != "" {
		if !config.ValidFormat(flags.format) {
			return nil, fmt.Errorf("unknown --format %q (text, markdown, html)", flags.format)
		}
		cfg.Report.Format = flags.format
	}
	if flags.output != "" {
		cfg.Report.Output = flags.output
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if needData && cfg.Data.File == "" {
		return nil, fmt.Errorf("no data file: pass --file or set DATA_FILE")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	rt := &env{config: cfg, logger: logger}

	if cfg.Database.Enabled() {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		repo := postgres.NewResultRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		rt.db = db
		rt.results = repo
	}

	presenter, err := report.New(cfg.Report.Format)
	if err != nil {
		rt.Close()
		return nil, err
	}

	options := excel.DefaultReaderOptions()
	options.Delimiter = cfg.Data.Delimiter
	options.Sheet = cfg.Data.Sheet
	reader := excel.NewDataReader(cfg.Data.File, options, logger)

	rt.service = app.NewRiskAnalysisService(reader, cleaning.NewDefaultPipeline(logger), presenter, rt.results, logger)
	return rt, nil
}

// output opens the configured report destination
func (r *env) output(cmd *cobra.Command) (io.Writer, func() error, error) {
	if r.config.Report.Output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(r.config.Report.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create report file: %w", err)
	}
	return f, f.Close, nil
}

func newCleanCmd(flags *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Run the cleaning pipeline and print what each stage did",
		Long: `Run type coercion, anomaly filtering, feature derivation and missing-value
handling once over the data file.

Example: insurisk clean --file MachineLearningRating_v3.txt --out cleaned.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			cleaned, summary, err := rt.service.Clean(cmd.Context())
			if err != nil {
				return err
			}
			if err := report.WriteCleaningSummary(cmd.OutOrStdout(), summary); err != nil {
				return err
			}

			if out == "" {
				return nil
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer f.Close()
			if err := excel.WriteDataset(f, cleaned, rt.config.Data.Delimiter); err != nil {
				return fmt.Errorf("failed to write cleaned data: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned data written to %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the cleaned dataset to this file")
	return cmd
}

func newMissingCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "missing",
		Short: "Report the share of missing values per column of the raw data",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			rows, err := rt.service.MissingReport(cmd.Context())
			if err != nil {
				return err
			}
			return report.WriteMissingReport(cmd.OutOrStdout(), rows)
		},
	}
}

func newTestCmd(flags *globalFlags) *cobra.Command {
	var group, metric string
	var clean bool

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Compare claim frequency and a metric across the values of a column",
		Long: `Run a chi-squared test of group x Claimed, then Welch's t-test (2 groups)
or one-way ANOVA (more groups) on the metric. Groups with 30 or fewer
observations are left out of the metric comparison.

Example: insurisk test --group Province --metric TotalClaims --clean`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.service.TestGroup(cmd.Context(), group, metric, clean)
			if result == nil {
				return err
			}
			if err != nil {
				rt.logger.Warn("%v", err)
			}

			w, closeOutput, err := rt.output(cmd)
			if err != nil {
				return err
			}
			defer closeOutput()

			return rt.service.Present(w, &app.AnalysisRun{Results: report.FromGroupRisk(result)})
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "Column to segment by")
	cmd.Flags().StringVar(&metric, "metric", "TotalClaims", "Numeric column to compare")
	cmd.Flags().BoolVar(&clean, "clean", false, "Clean the data before testing")
	_ = cmd.MarkFlagRequired("group")
	return cmd
}

func newHypothesesCmd(flags *globalFlags) *cobra.Command {
	var clean bool

	cmd := &cobra.Command{
		Use:   "hypotheses",
		Short: "Run the four fixed risk hypotheses (province, postal code, margin, gender)",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			run, runErr := rt.service.RunHypotheses(cmd.Context(), clean)
			if run == nil {
				return runErr
			}

			w, closeOutput, err := rt.output(cmd)
			if err != nil {
				return err
			}
			defer closeOutput()

			if err := rt.service.Present(w, run); err != nil {
				return err
			}
			if run.Archived {
				fmt.Fprintf(cmd.ErrOrStderr(), "results archived as run %s\n", run.RunID)
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&clean, "clean", false, "Clean the data before testing")
	return cmd
}

func newSegmentsCmd(flags *globalFlags) *cobra.Command {
	var by string
	var clean bool

	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Summarize frequency, severity, loss ratio and margin per segment",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd.Context(), flags, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			segments, err := rt.service.Segments(cmd.Context(), by, clean)
			if err != nil {
				return err
			}
			return report.WriteSegments(cmd.OutOrStdout(), by, segments)
		},
	}

	cmd.Flags().StringVar(&by, "by", "Province", "Column to segment by")
	cmd.Flags().BoolVar(&clean, "clean", false, "Clean the data before summarizing")
	return cmd
}

func newResultsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "results [run-id]",
		Short: "Show an archived run (requires DATABASE_URL)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := core.ParseRunID(args[0])
			if err != nil {
				return err
			}

			rt, err := setup(cmd.Context(), flags, false)
			if err != nil {
				return err
			}
			defer rt.Close()
			if rt.results == nil {
				return fmt.Errorf("result archive disabled: set DATABASE_URL")
			}

			results, err := rt.results.ListByRun(cmd.Context(), runID)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				return fmt.Errorf("no results for run %s", runID)
			}

			w, closeOutput, err := rt.output(cmd)
			if err != nil {
				return err
			}
			defer closeOutput()
			return rt.service.Present(w, &app.AnalysisRun{RunID: runID, Results: results})
		},
	}
}
