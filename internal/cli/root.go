// Package cli wires the session engine into the fasttrack command tree.
package cli

import (
	"log/slog"

	"github.com/fasttrack/fasttrack/internal/config"
	"github.com/fasttrack/fasttrack/internal/flatstore"
	"github.com/fasttrack/fasttrack/internal/logging"
	"github.com/fasttrack/fasttrack/internal/repository"
	"github.com/fasttrack/fasttrack/internal/session"
	"github.com/fasttrack/fasttrack/internal/sqlite"
	"github.com/spf13/cobra"
)

var (
	debug bool

	rootCmd = &cobra.Command{
		Use:   "fasttrack",
		Short: "Timeline project session store",
		Long: `fasttrack manages saved editing sessions: timeline projects with
their assets, persisted as atomic snapshots in a local database.

Examples:
  fasttrack sessions                 # List saved sessions
  fasttrack export <session-id>      # Export a session to a portable document
  fasttrack delete <session-id>      # Delete a session and its assets
  fasttrack cleanup --retain 20      # Keep only the newest sessions`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false,
		"Enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles everything a command needs and owns the database handle.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	db      *sqlite.DB
	manager *session.Manager
}

// openApp loads config and opens the stores. The manager is constructed
// without auto-save; commands are one-shot.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	logger := logging.NewLogger(level)

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		db.Close()
		return nil, err
	}

	flat, err := flatstore.New(cfg.Fallback.Dir)
	if err != nil {
		db.Close()
		return nil, err
	}

	stores := repository.Stores{
		Sessions:  sqlite.NewSessionRepository(db),
		Projects:  sqlite.NewProjectRepository(db),
		Assets:    sqlite.NewAssetRepository(db),
		Snapshots: sqlite.NewSnapshotStore(db),
	}

	manager := session.NewManager(stores, flat, nil, logger, session.Options{
		AutoSaveInterval: -1,
		Retain:           cfg.Session.Retain,
	})

	return &app{cfg: cfg, logger: logger, db: db, manager: manager}, nil
}

func (a *app) close() {
	a.db.Close()
}
