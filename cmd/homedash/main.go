package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dukerupert/homedash/internal/backup"
	"github.com/dukerupert/homedash/internal/config"
	"github.com/dukerupert/homedash/internal/database"
	"github.com/dukerupert/homedash/internal/logging"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/push"
	"github.com/dukerupert/homedash/internal/server"
	"github.com/dukerupert/homedash/internal/store"
	"github.com/dukerupert/homedash/internal/tui"
	"github.com/dukerupert/homedash/internal/view"
)

var (
	configPath string
	envFile    string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles what every command needs. The caller must defer app.Close().
type app struct {
	cfg    *config.Config
	db     *sql.DB
	srv    *server.Server
	logger *slog.Logger
}

// newApp reads the config, opens the database and loads the dashboard
// state. Logs go to w, or stderr when w is nil.
func newApp(w io.Writer) (*app, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var logger *slog.Logger
	if w == nil {
		logger = logging.Setup(cfg.LogLevel, cfg.LogFormat)
	} else {
		logger = logging.New(w, cfg.LogLevel, cfg.LogFormat, true)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	srv, err := server.New(db, cfg, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &app{cfg: cfg, db: db, srv: srv, logger: logger}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

var rootCmd = &cobra.Command{
	Use:          "homedash",
	Short:        "Smart home dashboard",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard and background simulators",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := a.srv.Start(ctx); err != nil {
			return err
		}
		defer a.srv.Stop()

		// No WriteTimeout: websocket connections stay open indefinitely.
		httpServer := &http.Server{
			Addr:        ":" + a.cfg.Port,
			Handler:     a.srv.Router(),
			ReadTimeout: 5 * time.Second,
			IdleTimeout: 120 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.logger.Info("homedash running", "addr", "http://localhost:"+a.cfg.Port)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
		}

		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	},
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Print the rendered dashboard view as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		h := a.srv.Home()
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view.Current(h, h.Rand()))
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Run the dashboard in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		// The terminal belongs to the UI, so logs go to a file or nowhere.
		var logOut io.Writer = io.Discard
		if path, _ := cmd.Flags().GetString("log-file"); path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return fmt.Errorf("opening log file: %w", err)
			}
			defer f.Close()
			logOut = f
		}

		a, err := newApp(logOut)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		if err := a.srv.Start(ctx); err != nil {
			return err
		}
		defer a.srv.Stop()

		h := a.srv.Home()
		if _, err := tea.NewProgram(tui.New(h, h.Rand()), tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("running terminal ui: %w", err)
		}
		return nil
	},
}

// sampleDevices is what seed adds to an empty registry.
var sampleDevices = []struct {
	name string
	typ  model.DeviceType
}{
	{"Living Room Light", model.DeviceLight},
	{"Bedroom AC", model.DeviceAC},
	{"Ceiling Fan", model.DeviceFan},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add sample devices when none exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(nil)
		if err != nil {
			return err
		}
		defer a.Close()

		h := a.srv.Home()
		if n := len(h.Snapshot().State.Devices); n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d devices already registered, nothing to do\n", n)
			return nil
		}
		for _, d := range sampleDevices {
			dev, err := h.AddDevice(d.name, d.typ)
			if err != nil {
				return fmt.Errorf("adding %s: %w", d.name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s, %dW)\n", dev.Name, dev.Type, dev.Energy)
		}
		return nil
	},
}

var vapidCmd = &cobra.Command{
	Use:   "vapid",
	Short: "Generate a VAPID key pair for browser push notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "HOMEDASH_PUSH_VAPID_PUBLIC_KEY=%s\nHOMEDASH_PUSH_VAPID_PRIVATE_KEY=%s\n", pub, priv)
		return nil
	},
}

// openBackups builds a backup manager without loading the dashboard state,
// so a database with corrupt state can still be restored.
func openBackups() (*backup.Manager, *config.Config, func() error, error) {
	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("reading config: %w", err)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening database: %w", err)
	}

	m := backup.NewManager(cfg.BackupManager(), db, store.NewBackupStore(db), logger.With("component", "backup"))
	if !m.Enabled() {
		db.Close()
		return nil, nil, nil, fmt.Errorf("%w: set HOMEDASH_BACKUP_BUCKET, _ACCESS_KEY, _SECRET_KEY and _PASSPHRASE", backup.ErrDisabled)
	}
	return m, cfg, db.Close, nil
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage encrypted database backups",
}

var backupRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Upload a backup now and prune expired ones",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, closeDB, err := openBackups()
		if err != nil {
			return err
		}
		defer closeDB()

		b, err := m.RunNow(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Backup %d uploaded to %s (%d bytes)\n", b.ID, b.S3Key, b.SizeBytes)

		n, err := m.Cleanup(cmd.Context())
		if err != nil {
			return err
		}
		if n > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired backups\n", n)
		}
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, closeDB, err := openBackups()
		if err != nil {
			return err
		}
		defer closeDB()

		limit, _ := cmd.Flags().GetInt("limit")
		backups, err := m.List(limit)
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tSIZE\tTOOK\tKEY")
		for _, b := range backups {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
				b.ID, humanize.Time(b.CreatedAt), b.Status,
				humanize.Bytes(uint64(b.SizeBytes)), b.Duration().Round(time.Millisecond), b.S3Key)
		}
		return tw.Flush()
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Replace the database with a backup; stop the server first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid backup id %q", args[0])
		}

		m, cfg, closeDB, err := openBackups()
		if err != nil {
			return err
		}
		defer closeDB()

		dst, _ := cmd.Flags().GetString("to")
		if dst == "" {
			dst = cfg.DBPath
		}
		if err := m.Restore(cmd.Context(), id, dst); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Restored backup %d to %s\n", id, dst)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file, ignored if missing")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().String("log-file", "", "Write logs to this file")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(vapidCmd)

	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupRunCmd)
	backupCmd.AddCommand(backupListCmd)
	backupListCmd.Flags().Int("limit", 20, "Number of backups to show")
	backupCmd.AddCommand(backupRestoreCmd)
	backupRestoreCmd.Flags().String("to", "", "Write the restored database here instead of the configured path")
}
