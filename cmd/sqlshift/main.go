// Package main contains the sqlshift CLI. It wires the translator, splitter,
// and batch runner into three cobra commands: convert (SQL Server → MySQL
// text), exec (run a script against MySQL), and run (both in sequence).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"sqlshift/internal/check"
	"sqlshift/internal/config"
	"sqlshift/internal/exec"
	"sqlshift/internal/logging"
	"sqlshift/internal/output"
	"sqlshift/internal/split"
	"sqlshift/internal/translate"
)

func main() {
	var logLevel string
	var logFile string

	rootCmd := &cobra.Command{
		Use:   "sqlshift",
		Short: "SQL Server to MySQL script translator and batch executor",
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Append JSON log lines to this file")

	newLogger := func() (zerolog.Logger, func(), error) {
		logger, closer, err := logging.New(logging.Options{Level: logLevel, File: logFile})
		if err != nil {
			return logger, func() {}, err
		}
		return logger, func() { _ = closer.Close() }, nil
	}

	var convertOutFile string
	var convertFormat string
	var convertCheck bool

	convertCmd := &cobra.Command{
		Use:   "convert <script.sql>",
		Short: "Translate a SQL Server script to MySQL syntax",
		Long: `Convert rewrites SQL Server dialect DDL/DML into MySQL-compatible SQL:
bracket identifiers are unquoted, COLLATE clauses dropped, IDENTITY columns
become AUTO_INCREMENT, numeric/money types are mapped, and separately stated
PRIMARY KEY constraints are folded into their CREATE TABLE statements.

The translated script is written next to the input as <name>_mysql.sql unless
--output overrides it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := newLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			script, err := readScript(args[0], logger)
			if err != nil {
				return err
			}

			translated, report := translate.New().Translate(script)

			outFile := convertOutFile
			if outFile == "" {
				outFile = defaultOutputPath(args[0])
			}
			if err := os.WriteFile(outFile, []byte(translated), 0o644); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			logger.Info().
				Str("sql_file", args[0]).
				Str("output_file", outFile).
				Int("rewrites", report.Rewrites()).
				Msg("translation complete")

			formatter, err := output.NewFormatter(convertFormat)
			if err != nil {
				return err
			}
			formatted, err := formatter.FormatReport(report)
			if err != nil {
				return fmt.Errorf("failed to format report: %w", err)
			}
			fmt.Print(formatted)

			if convertCheck {
				return checkStatements(translated, logger)
			}
			return nil
		},
	}

	convertCmd.Flags().StringVarP(&convertOutFile, "output", "o", "", "Output file for the translated SQL")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Report format: human or json")
	convertCmd.Flags().BoolVar(&convertCheck, "check", false, "Verify that every translated statement parses as MySQL")

	execFlags := newConnectionFlags()
	var execDryRun bool
	var execFormat string
	var execTimeout int

	execCmd := &cobra.Command{
		Use:   "exec <script.sql>",
		Short: "Execute a MySQL script statement by statement",
		Long: `Exec splits the script on statement terminators (ignoring semicolons inside
strings, quoted identifiers, and comments) and executes each statement in
order. A failing statement is recorded and the batch continues; the run never
aborts early.

Connection parameters come from flags, the DB_* environment variables, or a
TOML config file, in that order of precedence.

Examples:
  sqlshift exec schema_mysql.sql --database mydb --user root --password secret
  sqlshift exec schema_mysql.sql --dsn "root:secret@tcp(localhost:3306)/mydb"
  sqlshift exec schema_mysql.sql --database mydb --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, closeLog, err := newLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			return executeScript(cmd.Context(), args[0], execFlags, execDryRun, execFormat, execTimeout, logger)
		},
	}

	execFlags.register(execCmd)
	execCmd.Flags().BoolVarP(&execDryRun, "dry-run", "d", false, "Split and report statements without executing")
	execCmd.Flags().StringVarP(&execFormat, "format", "f", "", "Outcome format: human or json")
	execCmd.Flags().IntVar(&execTimeout, "timeout", 0, "Per-statement timeout in seconds (0 = none)")

	runFlags := newConnectionFlags()
	var runOutFile string
	var runFormat string
	var runDryRun bool
	var runTimeout int
	var runConvertOnly bool
	var runExecuteOnly bool

	runCmd := &cobra.Command{
		Use:   "run <script.sql>",
		Short: "Translate a SQL Server script and execute the result",
		Long: `Run performs the full migration pipeline: translate the SQL Server script to
MySQL syntax, write the translated file, then execute it against the target
database. Use --convert-only or --execute-only to run half the pipeline.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if runConvertOnly && runExecuteOnly {
				return fmt.Errorf("--convert-only and --execute-only are mutually exclusive")
			}

			logger, closeLog, err := newLogger()
			if err != nil {
				return err
			}
			defer closeLog()

			outFile := runOutFile
			if outFile == "" {
				outFile = defaultOutputPath(args[0])
			}

			if !runExecuteOnly {
				script, err := readScript(args[0], logger)
				if err != nil {
					return err
				}
				translated, report := translate.New().Translate(script)
				if err := os.WriteFile(outFile, []byte(translated), 0o644); err != nil {
					return fmt.Errorf("failed to write output: %w", err)
				}
				logger.Info().
					Str("sql_file", args[0]).
					Str("output_file", outFile).
					Int("rewrites", report.Rewrites()).
					Msg("translation complete")
				for _, note := range report.Notes {
					logger.Warn().Str("note", note).Msg("translation note")
				}
			}

			if runConvertOnly {
				return nil
			}
			return executeScript(cmd.Context(), outFile, runFlags, runDryRun, runFormat, runTimeout, logger)
		},
	}

	runFlags.register(runCmd)
	runCmd.Flags().StringVarP(&runOutFile, "output", "o", "", "Output file for the translated SQL")
	runCmd.Flags().StringVarP(&runFormat, "format", "f", "", "Outcome format: human or json")
	runCmd.Flags().BoolVarP(&runDryRun, "dry-run", "d", false, "Split and report statements without executing")
	runCmd.Flags().IntVar(&runTimeout, "timeout", 0, "Per-statement timeout in seconds (0 = none)")
	runCmd.Flags().BoolVar(&runConvertOnly, "convert-only", false, "Translate without executing")
	runCmd.Flags().BoolVar(&runExecuteOnly, "execute-only", false, "Execute a previously translated file")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connectionFlags carries the per-command database connection flag set.
type connectionFlags struct {
	dsn        string
	configFile string
	host       string
	port       int
	user       string
	password   string
	database   string
	charset    string
}

func newConnectionFlags() *connectionFlags {
	return &connectionFlags{}
}

func (c *connectionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.dsn, "dsn", "", "Full connection string; overrides the individual connection flags")
	cmd.Flags().StringVar(&c.configFile, "config", "", "TOML config file with [database] settings")
	cmd.Flags().StringVar(&c.host, "host", "", "MySQL host (default localhost, or DB_HOST)")
	cmd.Flags().IntVar(&c.port, "port", 0, "MySQL port (default 3306, or DB_PORT)")
	cmd.Flags().StringVar(&c.user, "user", "", "MySQL user (default root, or DB_USER)")
	cmd.Flags().StringVar(&c.password, "password", "", "MySQL password (or DB_PASSWORD)")
	cmd.Flags().StringVar(&c.database, "database", "", "Database name (or DB_DATABASE; required)")
	cmd.Flags().StringVar(&c.charset, "charset", "", "Connection charset (default utf8mb4, or DB_CHARSET)")
}

// resolveDSN layers config file, environment, and flags into a DSN.
func (c *connectionFlags) resolveDSN() (string, error) {
	if c.dsn != "" {
		return c.dsn, nil
	}

	cfg := config.Default()
	if c.configFile != "" {
		loaded, err := config.Load(c.configFile)
		if err != nil {
			return "", err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return "", err
	}

	if c.host != "" {
		cfg.Database.Host = c.host
	}
	if c.port != 0 {
		cfg.Database.Port = c.port
	}
	if c.user != "" {
		cfg.Database.User = c.user
	}
	if c.password != "" {
		cfg.Database.Password = c.password
	}
	if c.database != "" {
		cfg.Database.Name = c.database
	}
	if c.charset != "" {
		cfg.Database.Charset = c.charset
	}

	return cfg.Database.DSN()
}

// readScript loads a SQL file, rejecting missing or empty files and warning
// on unexpected extensions.
func readScript(path string, logger zerolog.Logger) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("script %q is empty", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".sql") {
		logger.Warn().Str("sql_file", path).Msg("file extension is not .sql, continuing anyway")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read script: %w", err)
	}
	return string(data), nil
}

// defaultOutputPath places the translated artifact next to the input with a
// _mysql suffix: schema.sql → schema_mysql.sql.
func defaultOutputPath(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if ext == "" {
		ext = ".sql"
	}
	return base + "_mysql" + ext
}

// checkStatements parses every statement of the translated script under
// MySQL grammar and reports the ones the server would reject.
func checkStatements(translated string, logger zerolog.Logger) error {
	statements := split.Statements(translated)
	results := check.New().Validate(statements)
	failures := check.Failures(results)
	for _, f := range failures {
		logger.Warn().
			Int("statement_index", f.Index+1).
			Str("error_message", f.Err.Error()).
			Msg("translated statement does not parse as MySQL")
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d translated statement(s) failed the MySQL parse check", len(failures), len(statements))
	}
	logger.Info().Int("statement_count", len(statements)).Msg("all translated statements parse as MySQL")
	return nil
}

// executeScript is the shared body of the exec and run commands: split the
// script, connect unless dry-running, execute the batch, and print outcomes.
func executeScript(ctx context.Context, path string, conn *connectionFlags, dryRun bool, format string, timeoutSec int, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	script, err := readScript(path, logger)
	if err != nil {
		return err
	}

	statements := split.Statements(script)
	if len(statements) == 0 {
		fmt.Println("No SQL statements found in script")
		return nil
	}
	logger.Info().
		Str("sql_file", path).
		Int("statement_count", len(statements)).
		Msg("script split into statements")

	if dryRun {
		for _, f := range check.Failures(check.New().Validate(statements)) {
			logger.Warn().
				Int("statement_index", f.Index+1).
				Str("error_message", f.Err.Error()).
				Msg("statement does not parse as MySQL")
		}
	}

	options := exec.Options{
		DryRun:           dryRun,
		StatementTimeout: time.Duration(timeoutSec) * time.Second,
		Logger:           logger,
	}

	if !dryRun {
		dsn, err := conn.resolveDSN()
		if err != nil {
			return err
		}
		options.DSN = dsn
	}

	runner := exec.NewRunner(options)
	if !dryRun {
		if err := runner.Connect(ctx); err != nil {
			return err
		}
		defer func() {
			if err := runner.Close(); err != nil {
				logger.Error().Err(err).Msg("failed to close database connection")
			}
		}()
	}

	outcomes := runner.Run(ctx, statements)

	formatter, err := output.NewFormatter(format)
	if err != nil {
		return err
	}
	formatted, err := formatter.FormatOutcomes(outcomes)
	if err != nil {
		return fmt.Errorf("failed to format outcomes: %w", err)
	}
	fmt.Print(formatted)

	if _, failed := exec.Summary(outcomes); failed > 0 && !dryRun {
		return fmt.Errorf("%d statement(s) failed", failed)
	}
	return nil
}
