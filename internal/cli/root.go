package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskdash/internal/api"
	"taskdash/internal/config"
	"taskdash/internal/format"
	"taskdash/internal/logging"
	"taskdash/internal/session"
	"taskdash/internal/store"
	"taskdash/internal/tui"
)

type App struct {
	APIURL     string
	ConfigDir  string
	PrettyJSON bool
	Format     string

	cfg    config.Config
	logger *slog.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "taskdash",
		Short:        "Task dashboard client (TUI + scriptable CLI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  taskdash

  # Scriptable commands
  taskdash login --email me@example.com --password secret
  taskdash tasks list
  taskdash tasks delete <task-id> --yes

  # Local reference service for development
  taskdash dev-server --addr :5000 --seed
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", envOr("TASKDASH_API_URL", ""), "Task service base URL (default http://localhost:5000)")
	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("TASKDASH_CONFIG_DIR", ""), "Local state directory (default ~/.taskdash)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("TASKDASH_FORMAT", "json"), "Output format (json)")

	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newDevServerCmd(app))

	return cmd
}

// load merges environment config with flags. Flags win.
func (app *App) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return writeErr(cmd, err)
	}
	if app.APIURL != "" {
		cfg.APIURL = app.APIURL
	}
	if app.ConfigDir != "" {
		cfg.ConfigDir = app.ConfigDir
	}
	cfg.Sanitize()
	app.cfg = cfg
	app.logger = logging.New(cmd.ErrOrStderr(), cfg.SlogLevel())
	return nil
}

func (app *App) store() (store.Store, error) {
	return store.Open(app.cfg.ConfigDir)
}

func (app *App) credentials() (*store.Credentials, error) {
	s, err := app.store()
	if err != nil {
		return nil, err
	}
	return s.Credentials(app.cfg.APIURL)
}

func (app *App) client(creds store.CredentialStore) *api.Client {
	c := api.New(app.cfg.APIURL, creds)
	if app.cfg.HTTPTimeout > 0 {
		c.HTTP = &http.Client{Timeout: app.cfg.HTTPTimeout}
	}
	c.Logger = app.logger
	return c
}

// session returns the guard and client bound to the stored credential.
func (app *App) session() (session.Guard, *api.Client, error) {
	creds, err := app.credentials()
	if err != nil {
		return session.Guard{}, nil, err
	}
	return session.Guard{Store: creds}, app.client(creds), nil
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := app.store()
	if err != nil {
		return writeErr(cmd, err)
	}
	creds, err := s.Credentials(app.cfg.APIURL)
	if err != nil {
		return writeErr(cmd, err)
	}
	lg, closeLog, err := logging.ForTUI(app.cfg.LogFile, app.cfg.SlogLevel())
	if err != nil {
		return writeErr(cmd, err)
	}
	defer closeLog()

	c := app.client(creds)
	c.Logger = lg
	return tui.Run(cmd.Context(), tui.Options{
		Tasks: c,
		Auth:  c,
		Creds: creds,
		State: &s,
		Timing: tui.Timing{
			Flash:            app.cfg.FlashDuration,
			FormClose:        app.cfg.FormCloseDelay,
			LoginRedirect:    app.cfg.LoginRedirectDelay,
			RegisterRedirect: app.cfg.RegisterRedirectDelay,
		},
		StrictAuth: app.cfg.StrictAuth,
		Logger:     lg,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
