package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"digital-library/config"
	"digital-library/library"
	"digital-library/web"

	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once the root command has run.
type app struct {
	cfg    config.Config
	logger *log.Logger
	mgr    *library.LibraryManager
}

func main() {
	a := &app{logger: log.New(os.Stderr, "[LIBRARY] ", log.LstdFlags)}
	if err := a.rootCmd().Execute(); err != nil {
		config.Exitf("%v", err)
	}
}

func (a *app) rootCmd() *cobra.Command {
	var (
		backend string
		dbPath  string
		seed    int64
	)

	root := &cobra.Command{
		Use:           "library",
		Short:         "Digital library: catalog, accounts and loans",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("backend") {
				cfg.Backend = backend
			}
			if flags.Changed("db") {
				cfg.SQLitePath = dbPath
			}
			if flags.Changed("catalog-seed") {
				cfg.CatalogSeed = seed
			}
			a.cfg = cfg
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.mgr == nil {
				return nil
			}
			return a.mgr.Close()
		},
		RunE: func(*cobra.Command, []string) error {
			return a.runShell()
		},
	}
	root.PersistentFlags().StringVar(&backend, "backend", "sqlite", "storage backend: sqlite, postgres, s3 or memory")
	root.PersistentFlags().StringVar(&dbPath, "db", "library.db", "SQLite database file")
	root.PersistentFlags().Int64Var(&seed, "catalog-seed", 0, "seed for the generated catalog (0 picks one at random)")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE:  func(*cobra.Command, []string) error { return a.runShell() },
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the library over HTTP",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return web.NewServer(a.mgr, a.logger).ListenAndServe(ctx, a.cfg.HTTPAddr)
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Print the dashboard counters",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				printStats(cmd.OutOrStdout(), a.mgr.Stats())
				return nil
			},
		},
		&cobra.Command{
			Use:   "search <term>",
			Short: "Search the catalog by title, author or genre",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				term := strings.Join(args, " ")
				printBooks(cmd.OutOrStdout(), a.mgr.SearchCatalog(term))
				return nil
			},
		},
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	gw, err := library.OpenGateway(ctx, a.cfg.GatewayConfig())
	if err != nil {
		return fmt.Errorf("open %s store: %w", a.cfg.Backend, err)
	}
	opts := a.cfg.ManagerOptions()
	opts.Logger = a.logger
	mgr, err := library.NewLibraryManager(ctx, gw, opts)
	if err != nil {
		gw.Close()
		return fmt.Errorf("load library: %w", err)
	}
	a.mgr = mgr
	return nil
}

func (a *app) runShell() error {
	sh := newShell(a.mgr, os.Stdin, os.Stdout)
	sh.readPassword = terminalPassword(os.Stdin, os.Stdout, sh.in)
	return sh.run(context.Background())
}
