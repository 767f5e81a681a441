package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pagerterm/pagerterm/internal/config"
	"github.com/pagerterm/pagerterm/internal/connect"
	"github.com/pagerterm/pagerterm/internal/history"
	"github.com/pagerterm/pagerterm/internal/keymap"
	"github.com/pagerterm/pagerterm/internal/ring"
	"github.com/pagerterm/pagerterm/internal/session"
	"github.com/pagerterm/pagerterm/internal/tui"
	"github.com/pagerterm/pagerterm/internal/watcher"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Open the interactive terminal client",
	Long: `Open the interactive client. The connectivity policy walks the
configured wifi credentials and endpoints, retrying with exponential
backoff until a shell comes up.

Examples:
  pagerterm connect                  # use the configured endpoints
  pagerterm connect --local          # force the local shell
  pagerterm connect --remote         # prefer the remote endpoint
  pagerterm connect --host devbox --port 22 --user dev
  pagerterm connect --no-reconnect   # single attempt, no retry loop`,
	Args: cobra.NoArgs,
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().Bool("local", false, "spawn a local shell instead of dialing out")
	connectCmd.Flags().Bool("remote", false, "prefer the remote endpoint for this run")
	connectCmd.Flags().String("host", "", "override endpoint host")
	connectCmd.Flags().Int("port", 0, "override endpoint port")
	connectCmd.Flags().String("user", "", "override endpoint username")
	connectCmd.Flags().Bool("no-reconnect", false, "disable automatic reconnection")
	connectCmd.Flags().String("theme", "", "display theme (green-on-black, amber-on-black, ...)")
}

func runConnect(cmd *cobra.Command, args []string) error {
	log := newLogger(cmd)
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyEndpointOverrides(cmd, cfg)

	table, err := loadKeymap(cfg, log)
	if err != nil {
		return err
	}

	recorder, closeHistory := openRecorder(cfg, log)
	defer closeHistory()

	manager := session.NewManager(session.Options{
		Ring:         ring.New(ring.DefaultCapacity),
		Logger:       log,
		Recorder:     recorder,
		Term:         cfg.Terminal.Term,
		Cols:         cfg.Terminal.Cols,
		Rows:         cfg.Terminal.Rows,
		PollInterval: cfg.Timeouts.ReadPollInterval(),
	})

	policy := connect.New(manager, newAssociator(log), cfg, log)
	if noReconnect, _ := cmd.Flags().GetBool("no-reconnect"); noReconnect {
		policy.SetEnabled(false)
	}

	w, err := watcher.New(cfgPath, cfg.KeymapPath())
	if err != nil {
		log.Warn("live reload unavailable", "err", err)
		w = nil
	}

	theme, _ := cmd.Flags().GetString("theme")
	return tui.Run(tui.Options{
		Config:  cfg,
		Manager: manager,
		Policy:  policy,
		Table:   table,
		Watcher: w,
		Log:     log,
		Theme:   theme,
	})
}

// applyEndpointOverrides folds the connect flags into the loaded config so
// the policy and the TUI see one consistent view.
func applyEndpointOverrides(cmd *cobra.Command, cfg *config.Config) {
	if local, _ := cmd.Flags().GetBool("local"); local {
		cfg.Servers.PreferRemote = false
		cfg.Servers.Local = config.Endpoint{Name: "local", Host: "localhost", Enabled: true, Local: true}
		cfg.Servers.Remote.Enabled = false
		return
	}
	if remote, _ := cmd.Flags().GetBool("remote"); remote {
		cfg.Servers.PreferRemote = true
	}
	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.Servers.Remote.Host = host
		cfg.Servers.Remote.Enabled = true
		cfg.Servers.PreferRemote = true
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.Servers.Remote.Port = port
	}
	if user, _ := cmd.Flags().GetString("user"); user != "" {
		cfg.Servers.Remote.Username = user
	}
}

func loadKeymap(cfg *config.Config, log *slog.Logger) (*keymap.Table, error) {
	path := cfg.KeymapPath()
	if path == "" {
		return keymap.Default(), nil
	}
	table, err := keymap.Load(path)
	if err != nil {
		log.Warn("keymap load failed, using built-in table", "path", path, "err", err)
		return keymap.Default(), nil
	}
	return table, nil
}

// openRecorder opens the history database, degrading to a no-op recorder
// when the database cannot be opened.
func openRecorder(cfg *config.Config, log *slog.Logger) (session.Recorder, func()) {
	db, err := history.Open(cfg.HistoryPath())
	if err != nil {
		log.Warn("history disabled", "err", err)
		return session.NopRecorder{}, func() {}
	}
	return history.Recorder{DB: db, Log: log}, func() { db.Close() }
}

// newAssociator prefers NetworkManager when it is present; without it the
// network phase assumes connectivity is someone else's problem.
func newAssociator(log *slog.Logger) connect.Associator {
	assoc, err := connect.NewNmcliAssociator()
	if err != nil {
		log.Debug("nmcli not available, skipping wifi management", "err", err)
		return connect.NullAssociator{}
	}
	return assoc
}
