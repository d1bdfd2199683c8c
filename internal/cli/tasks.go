package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"taskdash/internal/api"
	"taskdash/internal/model"
	"taskdash/internal/perm"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and change tasks",
	}

	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksCreateCmd(app))
	cmd.AddCommand(newTasksUpdateCmd(app))
	cmd.AddCommand(newTasksDeleteCmd(app))

	return cmd
}

// requireSession resolves the caller's identity; every tasks subcommand goes
// through it before any call is issued.
func requireSession(ctx context.Context, app *App) (model.Identity, *api.Client, error) {
	guard, c, err := app.session()
	if err != nil {
		return model.Identity{}, nil, err
	}
	id, err := guard.Require(ctx)
	if err != nil {
		return model.Identity{}, nil, err
	}
	return id, c, nil
}

// manageableTask looks id up in the current list and checks CanManage.
func manageableTask(ctx context.Context, c *api.Client, id model.Identity, taskID string) (model.Task, error) {
	tasks, err := c.List(ctx)
	if err != nil {
		return model.Task{}, err
	}
	for _, t := range tasks {
		if t.ID != taskID {
			continue
		}
		if !perm.CanManage(id, t) {
			return model.Task{}, errOwnerOnly(id.UserID, t.OwnerID, t.ID)
		}
		return t, nil
	}
	return model.Task{}, errNotFound("task", taskID)
}

func newTasksListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the tasks you can see",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, c, err := requireSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks, err := c.List(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			visible := perm.Visible(id, tasks)
			out := make([]map[string]any, 0, len(visible))
			for _, t := range visible {
				out = append(out, map[string]any{
					"_id":          t.ID,
					"title":        t.Title,
					"description":  t.Description,
					"userId":       t.OwnerID,
					"ownedByOther": perm.OwnedByOther(id, t),
				})
			}
			return writeOut(cmd, app, map[string]any{
				"data": out,
				"meta": map[string]any{"count": len(out), "userId": id.UserID, "role": id.Role},
			})
		},
	}
}

func newTasksCreateCmd(app *App) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a task owned by you",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := model.TaskInput{Title: strings.TrimSpace(title), Description: description}
			if err := in.Validate(); err != nil {
				return writeErr(cmd, err)
			}
			_, c, err := requireSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := c.Create(cmd.Context(), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": t})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&description, "description", "", "Task description (markdown)")
	return cmd
}

func newTasksUpdateCmd(app *App) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Change a task's title or description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			titleSet := cmd.Flags().Changed("title")
			descSet := cmd.Flags().Changed("description")
			if !titleSet && !descSet {
				return writeErr(cmd, errors.New("nothing to update: pass --title and/or --description"))
			}
			id, c, err := requireSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := manageableTask(cmd.Context(), c, id, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			in := model.TaskInput{Title: t.Title, Description: t.Description}
			if titleSet {
				in.Title = strings.TrimSpace(title)
			}
			if descSet {
				in.Description = description
			}
			if err := in.Validate(); err != nil {
				return writeErr(cmd, err)
			}
			updated, err := c.Update(cmd.Context(), t.ID, in)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": updated})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newTasksDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task (asks for confirmation unless --yes)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, c, err := requireSession(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			t, err := manageableTask(cmd.Context(), c, id, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if !yes && !confirm(cmd, fmt.Sprintf("Delete task %q (%s)? [y/N] ", t.Title, t.ID)) {
				return writeErr(cmd, abortedError{what: "task not deleted"})
			}
			if err := c.Delete(cmd.Context(), t.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"_id": t.ID, "deleted": true}})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// confirm prompts on stderr and reads one line from stdin. Only y/yes confirms.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
