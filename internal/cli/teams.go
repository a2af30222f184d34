package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"crewdeck/internal/api"
	"crewdeck/internal/model"
	"crewdeck/internal/store"
)

func newTeamsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teams",
		Short: "Team commands",
	}
	cmd.AddCommand(newTeamsListCmd(app))
	cmd.AddCommand(newTeamsShowCmd(app))
	cmd.AddCommand(newTeamsCreateCmd(app))
	cmd.AddCommand(newTeamsDeleteCmd(app))
	cmd.AddCommand(newTeamsLeaveCmd(app))
	cmd.AddCommand(newTeamsMembersCmd(app))
	cmd.AddCommand(newTeamsInviteCmd(app))
	cmd.AddCommand(newTeamsSetRoleCmd(app))
	cmd.AddCommand(newTeamsRemoveMemberCmd(app))
	return cmd
}

// selectTeam resolves the team and makes it the store's member scope, so the
// membership rules are enforced the same way the TUI enforces them.
func selectTeam(ctx context.Context, client *api.Client, stores *store.Stores, teamID string) error {
	team, err := client.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	stores.Teams.Select(&team)
	stores.Teams.LoadMembers(ctx, team.ID)
	if msg := stores.Teams.State().Error; msg != "" {
		return errors.New(msg)
	}
	return nil
}

func newTeamsListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List my teams",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			stores.Teams.Load(cmd.Context())
			st := stores.Teams.State()
			if st.Error != "" {
				return writeErr(cmd, errors.New(st.Error))
			}
			return writeOut(cmd, app, map[string]any{"data": st.Teams})
		},
	}
}

func newTeamsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <team-id>",
		Short: "Show one team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, client, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			team, err := client.GetTeam(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": team})
		},
	}
}

func newTeamsCreateCmd(app *App) *cobra.Command {
	var draft model.TeamDraft

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a team",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := stores.Teams.Create(cmd.Context(), draft); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stores.Teams.State().Teams})
		},
	}

	cmd.Flags().StringVar(&draft.Name, "name", "", "Team name")
	cmd.Flags().StringVar(&draft.Description, "description", "", "Team description")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTeamsDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <team-id>",
		Short: "Delete a team (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := stores.Teams.Delete(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]bool{"deleted": true}})
		},
	}
}

func newTeamsLeaveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "leave <team-id>",
		Short: "Leave a team",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := stores.Teams.Leave(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]bool{"left": true}})
		},
	}
}

func newTeamsMembersCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "members <team-id>",
		Short: "List a team's members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, client, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := selectTeam(cmd.Context(), client, stores, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stores.Teams.State().Members})
		},
	}
}

func newTeamsInviteCmd(app *App) *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "invite <team-id>",
		Short: "Invite a member",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r := model.RoleMember
			if role != "" {
				parsed, err := model.ParseRole(role)
				if err != nil {
					return writeErr(cmd, err)
				}
				r = parsed
			}
			stores, client, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := selectTeam(cmd.Context(), client, stores, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := stores.Teams.AddMember(cmd.Context(), model.MemberInvite{Email: email, Role: r}); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stores.Teams.State().Members})
		},
	}

	cmd.Flags().StringVar(&email, "member-email", "", "Email of the user to invite")
	cmd.Flags().StringVar(&role, "role", "member", "Role to grant (member|admin)")
	_ = cmd.MarkFlagRequired("member-email")
	return cmd
}

func newTeamsSetRoleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <team-id> <member-id> <role>",
		Short: "Change a member's role (owner only)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, err := model.ParseRole(args[2])
			if err != nil {
				return writeErr(cmd, err)
			}
			stores, client, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := selectTeam(cmd.Context(), client, stores, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := stores.Teams.UpdateRole(cmd.Context(), args[1], role); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stores.Teams.State().Members})
		},
	}
}

func newTeamsRemoveMemberCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-member <team-id> <member-id>",
		Short: "Remove a member (removing yourself leaves the team)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, client, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := selectTeam(cmd.Context(), client, stores, args[0]); err != nil {
				return writeErr(cmd, err)
			}
			if err := stores.Teams.Remove(cmd.Context(), args[1]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stores.Teams.State().Members})
		},
	}
}
