package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"crewdeck/internal/model"
	"crewdeck/internal/store"
)

func newLoginCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify credentials and remember the identity locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stores.Session.CurrentUser()})
		},
	}
}

func newRegisterCmd(app *App) *cobra.Command {
	var first, last string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Email == "" || app.Password == "" {
				return writeErr(cmd, errors.New("register requires --email and --password"))
			}
			if err := store.ValidatePassword(app.Password); err != nil {
				return writeErr(cmd, err)
			}
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			reg := model.Registration{
				Email:     app.Email,
				Password:  app.Password,
				FirstName: first,
				LastName:  last,
			}
			if err := stores.Session.Register(cmd.Context(), reg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stores.Session.CurrentUser()})
		},
	}

	cmd.Flags().StringVar(&first, "first-name", "", "First name")
	cmd.Flags().StringVar(&last, "last-name", "", "Last name")
	return cmd
}

func newLogoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the locally remembered identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			stores.Logout(cmd.Context())
			return writeOut(cmd, app, map[string]any{"data": map[string]bool{"loggedOut": true}})
		},
	}
}

func newWhoamiCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the locally remembered identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			// With credentials present, verify against the server instead of
			// trusting the statefile.
			if app.Email != "" && app.Password != "" {
				if err := ensureSession(cmd.Context(), app, stores); err != nil {
					return writeErr(cmd, err)
				}
			}
			user := stores.Session.CurrentUser()
			if user == nil {
				return writeErr(cmd, errors.New("not logged in"))
			}
			return writeOut(cmd, app, map[string]any{"data": user})
		},
	}
}
