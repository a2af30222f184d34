package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"crewdeck/internal/api"
	"crewdeck/internal/format"
	"crewdeck/internal/model"
	"crewdeck/internal/store"
	"crewdeck/internal/tui"
)

type App struct {
	APIURL     string
	ConfigDir  string
	Email      string
	Password   string
	PrettyJSON bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "crewdeck",
		Short:        "Crewdeck task & team client (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  crewdeck

  # Scriptable commands (authenticate per invocation)
  CREWDECK_EMAIL=a@b.com CREWDECK_PASSWORD=... crewdeck tasks list --mine

  # What is due soon?
  crewdeck tasks due-soon --days 3
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.APIURL, "api-url", envOr("CREWDECK_API_URL", api.DefaultBaseURL), "Base URL of the crewdeck API")
	cmd.PersistentFlags().StringVar(&app.ConfigDir, "config-dir", envOr("CREWDECK_CONFIG_DIR", ""), "Config dir for durable state (default: ~/.crewdeck)")
	cmd.PersistentFlags().StringVar(&app.Email, "email", envOr("CREWDECK_EMAIL", ""), "Account email for scripted invocations")
	cmd.PersistentFlags().StringVar(&app.Password, "password", envOr("CREWDECK_PASSWORD", ""), "Account password for scripted invocations")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")

	cmd.AddCommand(newLoginCmd(app))
	cmd.AddCommand(newRegisterCmd(app))
	cmd.AddCommand(newLogoutCmd(app))
	cmd.AddCommand(newWhoamiCmd(app))
	cmd.AddCommand(newTasksCmd(app))
	cmd.AddCommand(newTeamsCmd(app))
	cmd.AddCommand(newDashboardCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	stores, _, err := newStores(app, tui.ApplyTheme)
	if err != nil {
		return err
	}
	defer stores.Shutdown()
	return tui.Run(stores)
}

// newStores wires a store bundle (and the shared API client) for one
// invocation.
func newStores(app *App, applyTheme func(store.Theme)) (*store.Stores, *api.Client, error) {
	dir := app.ConfigDir
	if dir == "" {
		d, err := store.ConfigDir()
		if err != nil {
			return nil, nil, err
		}
		dir = d
	}
	client := api.NewClient(app.APIURL)
	return store.New(client, dir, applyTheme), client, nil
}

// ensureSession authenticates the invocation. Sessions are cookie-based and
// the cookie jar lives only for this process, so scripted commands must carry
// credentials (flags or CREWDECK_EMAIL/CREWDECK_PASSWORD) every time; the
// interactive TUI logs in once instead.
func ensureSession(ctx context.Context, app *App, stores *store.Stores) error {
	if app.Email == "" || app.Password == "" {
		return errors.New("not authenticated: pass --email/--password or set CREWDECK_EMAIL/CREWDECK_PASSWORD")
	}
	return stores.Session.Login(ctx, model.Credentials{Email: app.Email, Password: app.Password})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.WriteJSON(cmd.OutOrStdout(), v, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
