package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	mcpMode bool
	cfg     *Config
	logFile io.Closer
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pgtables",
		Short: "Create PostgreSQL tables from declarative definitions",
		Long: `pgtables validates table definitions written in YAML and creates the tables
they describe with CREATE TABLE IF NOT EXISTS. Existing tables are never altered;
differences from their definition are reported as drift.

Commands:
  create    create the tables in the configured database
  render    validate definitions and print the statements without a database
  exists    report whether tables exist
  describe  print what the catalog holds for tables
  check     create the tables in a throwaway PostgreSQL container

Run with --mcp to serve the same operations over the Model Context Protocol.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}

			var err error
			cfg, err = LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			logFile, err = setupLogger(cfg)
			return err
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !mcpMode {
				return cmd.Help()
			}
			slog.Info("starting mcp server")
			if err := StartMCPServer(cfg); err != nil {
				return fmt.Errorf("failed to start mcp server: %w", err)
			}
			return nil
		},
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./pgtables.yaml)")
	pf.String("dbname", "", "Database name")
	pf.String("host", "", "Database host (default: localhost)")
	pf.String("port", "", "Database port (default: 5432)")
	pf.String("user", "", "Database user")
	pf.String("password-env", "", "Environment variable holding the database password")
	pf.String("password-service", "", "OS keyring service holding the database password")
	pf.String("driver", "", "database/sql driver: postgres or pgx")
	pf.String("sslmode", "", "SSL mode (default: disable)")
	pf.Duration("connect-timeout", 0, "Connection timeout (default: 10s)")
	pf.String("log-file", "", "Append logs to this file instead of stderr")
	pf.String("log-level", "", "Log level: debug, info, warn or error")
	pf.Bool("strict-drift", false, "Fail when an existing table differs from its definition")
	pf.String("postgres-image", "", "PostgreSQL image used by check (default: "+defaultPostgresImage+")")
	rootCmd.Flags().BoolVar(&mcpMode, "mcp", false, "Run as Model Context Protocol server")

	rootCmd.AddCommand(newCreateCmd(), newRenderCmd(), newExistsCmd(), newDescribeCmd(), newCheckCmd())
	return rootCmd
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <spec-path>",
		Short: "Create the defined tables in the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			created, err := createTablesCore(cmd.Context(), args[0], cfg.StrictDrift,
				NewFileSpecReader(), NewTargetManager(cfg.Database))
			if len(created) > 0 {
				fmt.Fprint(cmd.OutOrStdout(), formatCreateResults(created))
			}
			return err
		},
	}
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <spec-path>",
		Short: "Validate definitions and print their CREATE TABLE statements",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := renderCore(args[0], NewFileSpecReader())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newExistsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exists <table>...",
		Short: "Report whether tables exist in the configured database",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			out, err := existsCore(cmd.Context(), args, NewTargetManager(cfg.Database))
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>...",
		Short: "Print catalog information for tables",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
			out, err := describeCore(cmd.Context(), args, NewTargetManager(cfg.Database), NewCatalogInspector())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <spec-path>",
		Short: "Create the defined tables in a throwaway PostgreSQL container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := checkCore(cmd.Context(), args[0], NewFileSpecReader(),
				NewEphemeralManager(cfg.PostgresImage, cfg.Database.Driver), NewCatalogInspector())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}

func main() {
	err := run(os.Args[1:])
	if err != nil {
		slog.Error("command execution failed", "error", err)
		fmt.Println(exitMessage(err))
	}
	closeLogFile()
	if err != nil {
		os.Exit(1)
	}
}

func run(args []string) error {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
