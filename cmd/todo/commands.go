package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/MihkelHunter/mkToDo/internal/todo"
	"github.com/spf13/cobra"
)

var (
	errEmptyTitle = errors.New("task title cannot be empty")
	errEmptyDue   = errors.New("--due needs a date: use --clear-due to remove it")
)

// failure explains why a coordinator mutation reported false: a save error
// when there is one, otherwise fallback.
func failure(a *app, fallback error) error {
	if err := a.coord.Err(); err != nil {
		return fmt.Errorf("tasks not saved: %w", err)
	}
	return fallback
}

func newAddCmd(a *app) *cobra.Command {
	var category, due, kind string
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Example: `  todo add "Buy milk" --category Shopping --due tomorrow
  todo add "Prepare meeting" --type work --due 2026-11-02`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dueDate, err := parseDue(due, todo.Today())
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")

			var t *todo.Task
			if kind != "" {
				t = a.coord.AddTypedTask(kind, title, category, dueDate)
			} else {
				t = a.coord.AddTask(title, category, dueDate)
			}
			if t == nil {
				return failure(a, errEmptyTitle)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s: %s\n", t.ID, t.Title)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "category label")
	cmd.Flags().StringVar(&due, "due", "", "due date: YYYY-MM-DD, today, tomorrow or +N")
	cmd.Flags().StringVar(&kind, "type", "", "task kind: "+strings.Join(todo.TaskKinds(), ", "))
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			today := todo.Today()
			tasks, err := selectTasks(a.coord, opts, today)
			if err != nil {
				return err
			}
			printTasks(cmd.OutOrStdout(), tasks, today)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.status, "status", "all", "all, open or done")
	cmd.Flags().StringVar(&opts.category, "category", "", "only tasks in this category")
	cmd.Flags().BoolVar(&opts.overdue, "overdue", false, "only overdue tasks")
	cmd.Flags().BoolVar(&opts.dueToday, "today", false, "only tasks due today")
	cmd.Flags().BoolVar(&opts.smart, "smart", false, "urgent tasks first")
	return cmd
}

func newDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "done <id>",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task between open and done",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.coord.ToggleTask(args[0]) {
				return failure(a, fmt.Errorf("task %s not found", args[0]))
			}
			t := a.coord.TaskByID(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), formatTask(t, todo.Today()))
			return nil
		},
	}
}

func newEditCmd(a *app) *cobra.Command {
	var title, category, due string
	var clearDue bool
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change title, category or due date of a task",
		Example: `  todo edit 1a2b3c4d --title "Buy oat milk"
  todo edit 1a2b3c4d --category ""       # clear the category
  todo edit 1a2b3c4d --clear-due`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			var p todo.Patch
			if cmd.Flags().Changed("title") {
				p.Title = &title
			}
			if cmd.Flags().Changed("category") {
				p.Category = &category
			}
			if cmd.Flags().Changed("due") {
				if strings.TrimSpace(due) == "" {
					return errEmptyDue
				}
				d, err := parseDue(due, todo.Today())
				if err != nil {
					return err
				}
				p.DueDate = d
			}
			p.ClearDueDate = clearDue

			if !a.coord.UpdateTask(id, p) {
				if a.coord.TaskByID(id) == nil {
					return failure(a, fmt.Errorf("task %s not found", id))
				}
				return failure(a, errEmptyTitle)
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatTask(a.coord.TaskByID(id), todo.Today()))
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&category, "category", "", "new category, empty to clear")
	cmd.Flags().StringVar(&due, "due", "", "new due date")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.coord.DeleteTask(args[0]) {
				return failure(a, fmt.Errorf("task %s not found", args[0]))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show progress statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.coord.Statistics()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(st)
			}
			printStats(cmd.OutOrStdout(), st)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newCategoriesCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories in use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cats := a.coord.Categories()
			if all {
				cats = mergeCategories(a.cfg.Categories, cats)
			}
			for _, c := range cats {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include the configured categories")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import tasks exported by another tool",
		Long: `Import reads a JSON array of {"name", "completed", "tag"} objects.
Entries without a name are skipped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}
			var items []todo.ExternalTask
			if err := json.Unmarshal(data, &items); err != nil {
				return fmt.Errorf("parse import file: %w", err)
			}
			n := a.coord.ImportExternal(items)
			if err := a.coord.Err(); err != nil {
				return fmt.Errorf("tasks not saved: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d tasks\n", n, len(items))
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.json]",
		Short: "Export tasks in the format import reads",
		Long: `Export writes every task as a JSON array of {"name", "completed", "tag"}
objects, to the given file or to stdout.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := a.coord.AllTasks()
			items := make([]todo.ExternalTask, 0, len(tasks))
			for _, t := range tasks {
				items = append(items, todo.ToExternal(t))
			}
			data, err := json.MarshalIndent(items, "", "  ")
			if err != nil {
				return fmt.Errorf("encode export: %w", err)
			}
			data = append(data, '\n')

			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0o644); err != nil {
				return fmt.Errorf("write export file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", len(items), args[0])
			return nil
		},
	}
}
