package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"crewdeck/internal/model"
	"crewdeck/internal/store"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task commands",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksShowCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))
	cmd.AddCommand(newTasksDueSoonCmd(app))
	cmd.AddCommand(newTasksOverdueCmd(app))
	return cmd
}

func newTasksListCmd(app *App) *cobra.Command {
	var (
		search   string
		teamID   string
		status   string
		priority string
		assignee string
		mine     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks (server-side filtering)",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}

			patch := store.FilterPatch{}
			if search != "" {
				patch.Search = &search
			}
			if teamID != "" {
				patch.TeamID = &teamID
			}
			if status != "" {
				st, err := model.ParseTaskStatus(status)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Status = &st
			}
			if priority != "" {
				p, err := model.ParseTaskPriority(priority)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch.Priority = &p
			}
			if assignee != "" {
				patch.AssignedTo = &assignee
			}
			if mine {
				patch.AssignedToMe = &mine
			}

			stores.Tasks.SetFilter(cmd.Context(), patch)
			st := stores.Tasks.State()
			if st.Filter.IsZero() {
				// A zero filter skips the SetFilter reload; fetch explicitly.
				stores.Tasks.Load(cmd.Context())
				st = stores.Tasks.State()
			}
			if st.Error != "" {
				return writeErr(cmd, errors.New(st.Error))
			}
			return writeOut(cmd, app, map[string]any{"data": st.Tasks, "filter": st.Filter})
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Free-text search")
	cmd.Flags().StringVar(&teamID, "team", "", "Filter by team id")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (todo|in_progress|review|completed)")
	cmd.Flags().StringVar(&priority, "priority", "", "Filter by priority (low|medium|high|urgent)")
	cmd.Flags().StringVar(&assignee, "assignee", "", "Filter by assignee user id (requires --team)")
	cmd.Flags().BoolVar(&mine, "mine", false, "Only tasks assigned to me")
	return cmd
}

func newTasksShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, client, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			task, err := client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": task})
		},
	}
}

func taskDraftFlags(cmd *cobra.Command, d *model.TaskDraft) {
	cmd.Flags().StringVar(&d.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&d.Description, "description", "", "Task description (markdown)")
	cmd.Flags().StringVar(&d.TeamID, "team", "", "Team id the task belongs to")
	cmd.Flags().StringVar(&d.AssignedTo, "assignee", "", "Assignee user id")
	cmd.Flags().StringVar((*string)(&d.Status), "status", "", "Status (todo|in_progress|review|completed)")
	cmd.Flags().StringVar((*string)(&d.Priority), "priority", "", "Priority (low|medium|high|urgent)")
	cmd.Flags().StringVar(&d.DueDate, "due", "", "Due date (YYYY-MM-DD)")
}

func validateDraftEnums(d model.TaskDraft) error {
	if d.Status != "" {
		if _, err := model.ParseTaskStatus(string(d.Status)); err != nil {
			return err
		}
	}
	if d.Priority != "" {
		if _, err := model.ParseTaskPriority(string(d.Priority)); err != nil {
			return err
		}
	}
	return nil
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var draft model.TaskDraft

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateDraftEnums(draft); err != nil {
				return writeErr(cmd, err)
			}
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := stores.Tasks.Create(cmd.Context(), draft); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stores.Tasks.State().Tasks})
		},
	}

	taskDraftFlags(cmd, &draft)
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var draft model.TaskDraft

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Update a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateDraftEnums(draft); err != nil {
				return writeErr(cmd, err)
			}
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := stores.Tasks.Update(cmd.Context(), args[0], draft); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": stores.Tasks.State().Tasks})
		},
	}

	taskDraftFlags(cmd, &draft)
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			if err := stores.Tasks.Delete(cmd.Context(), args[0]); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]bool{"deleted": true}})
		},
	}
}

func newTasksDueSoonCmd(app *App) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "due-soon",
		Short: "Tasks due within the next N days",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, client, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := client.DueSoon(cmd.Context(), days)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tasks})
		},
	}

	cmd.Flags().IntVar(&days, "days", 7, "Look-ahead window in days")
	return cmd
}

func newTasksOverdueCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "Tasks past their due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, client, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := client.Overdue(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": tasks})
		},
	}
}

func newDashboardCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Aggregate task stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			stores, _, err := newStores(app, nil)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := ensureSession(cmd.Context(), app, stores); err != nil {
				return writeErr(cmd, err)
			}
			stores.Tasks.LoadStats(cmd.Context())
			st := stores.Tasks.State()
			if st.Stats == nil {
				return writeErr(cmd, errors.New(st.Error))
			}
			return writeOut(cmd, app, map[string]any{"data": st.Stats})
		},
	}
}
