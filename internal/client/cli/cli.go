// Package cli implements the snapsync command-line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	clientapi "github.com/iudanet/snapsync/internal/client/api"
	"github.com/iudanet/snapsync/internal/client/identity"
	"github.com/iudanet/snapsync/internal/client/iocli"
	"github.com/iudanet/snapsync/internal/client/storage"
	"github.com/iudanet/snapsync/internal/client/storage/boltdb"
	"github.com/iudanet/snapsync/internal/client/storage/memory"
	"github.com/iudanet/snapsync/internal/client/storage/sqlite"
	"github.com/iudanet/snapsync/internal/config"
)

// VersionInfo is set via ldflags during build
type VersionInfo struct {
	Version   string
	BuildDate string
	GitCommit string
}

// Cli holds the state shared by all commands of one invocation.
type Cli struct {
	io      iocli.IO
	logOut  io.Writer
	logger  *slog.Logger
	cfg     *config.Config
	version VersionInfo
	flags   globalFlags
}

type globalFlags struct {
	configPath  string
	serverURL   string
	dbPath      string
	store       string
	sessionPath string
	logLevel    string
}

// NewRootCommand builds the snapsync command tree. Logs go to logOut.
func NewRootCommand(version VersionInfo, stdio iocli.IO, logOut io.Writer) *cobra.Command {
	c := &Cli{
		io:      stdio,
		logOut:  logOut,
		version: version,
	}

	root := &cobra.Command{
		Use:               "snapsync",
		Short:             "Sync client for the photo sharing service",
		Long:              "Keeps presence, unread counts and reactions of the logged-in viewer in sync with the server.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}
	root.SetOut(stdio)

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", config.DefaultPath(), "Path to config file")
	pf.StringVar(&c.flags.serverURL, "server", "", "Server URL")
	pf.StringVar(&c.flags.dbPath, "db", "", "Path to local database")
	pf.StringVar(&c.flags.store, "store", "", "Local store backend (bolt, sqlite, memory)")
	pf.StringVar(&c.flags.sessionPath, "session", "", "Path to session file")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		c.versionCmd(),
		c.loginCmd(),
		c.logoutCmd(),
		c.statusCmd(),
		c.watchCmd(),
		c.unreadCmd(),
		c.reactionsCmd(),
		c.configCmd(),
	)
	return root
}

// setup загружает конфигурацию: файл, затем переменные окружения, затем флаги
func (c *Cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("server") {
		cfg.Server.URL = c.flags.serverURL
	}
	if flags.Changed("db") {
		cfg.Store.Path = c.flags.dbPath
	}
	if flags.Changed("store") {
		cfg.Store.Backend = c.flags.store
	}
	if flags.Changed("session") {
		cfg.Session.Path = c.flags.sessionPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.SlogLevel()
	c.logger = slog.New(slog.NewTextHandler(c.logOut, &slog.HandlerOptions{Level: level}))
	c.cfg = cfg
	return nil
}

func (c *Cli) identity() *identity.File {
	return identity.NewFile(c.cfg.Session.Path, c.logger)
}

func (c *Cli) apiClient(tokens clientapi.TokenSource) *clientapi.Client {
	return clientapi.NewClient(c.cfg.Server.URL,
		clientapi.WithTimeout(c.cfg.Server.RequestTimeout.Duration),
		clientapi.WithTokenSource(tokens),
		clientapi.WithLogger(c.logger),
	)
}

// requireViewer returns the logged-in session or a hint to log in.
func (c *Cli) requireViewer() (*identity.File, string, error) {
	ident := c.identity()
	viewerID, ok := ident.Current()
	if !ok {
		return nil, "", fmt.Errorf("not logged in. Please run 'snapsync login' first")
	}
	return ident, viewerID, nil
}

// openStore opens the configured local store; close releases it.
func (c *Cli) openStore(ctx context.Context) (storage.LocalStore, func() error, error) {
	if c.cfg.Store.Backend != storage.BackendMemory {
		if err := os.MkdirAll(filepath.Dir(c.cfg.Store.Path), 0o700); err != nil {
			return nil, nil, fmt.Errorf("failed to create database dir: %w", err)
		}
	}

	switch c.cfg.Store.Backend {
	case storage.BackendBolt:
		s, err := boltdb.New(ctx, c.cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return s, s.Close, nil
	case storage.BackendSQLite:
		s, err := sqlite.New(ctx, c.cfg.Store.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		return s, s.Close, nil
	case storage.BackendMemory:
		return memory.New(), func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", c.cfg.Store.Backend)
	}
}

func (c *Cli) closeStore(closeFn func() error) {
	if err := closeFn(); err != nil {
		c.logger.Error("failed to close database", "error", err)
	}
}
