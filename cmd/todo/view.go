package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/MihkelHunter/mkToDo/internal/coordinator"
	"github.com/MihkelHunter/mkToDo/internal/todo"
)

// listOptions mirrors the list command flags.
type listOptions struct {
	status   string // "all" | "open" | "done"
	category string
	overdue  bool
	dueToday bool
	smart    bool
}

// selectTasks picks the base query, then narrows by category. Ordering is the
// store's insertion order unless smart sort is on.
func selectTasks(c *coordinator.Coordinator, opts listOptions, today todo.Date) ([]*todo.Task, error) {
	var tasks []*todo.Task
	switch {
	case opts.overdue:
		tasks = c.OverdueTasks()
	case opts.dueToday:
		tasks = c.DueTodayTasks()
	case opts.status == "open":
		tasks = c.OpenTasks()
	case opts.status == "done":
		tasks = c.DoneTasks()
	case opts.status == "all" || opts.status == "":
		tasks = c.AllTasks()
	default:
		return nil, fmt.Errorf("unknown status %q: use all, open or done", opts.status)
	}

	if opts.category != "" {
		filtered := tasks[:0:0]
		for _, t := range tasks {
			if t.Category == opts.category {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	if opts.smart {
		smartSort(tasks, today)
	}
	return tasks, nil
}

// urgency ranks overdue, due today, future-dated, undated, then done.
func urgency(t *todo.Task, today todo.Date) int {
	switch {
	case t.Done:
		return 4
	case t.IsOverdueOn(today):
		return 0
	case t.IsDueTodayOn(today):
		return 1
	case t.DueDate != nil:
		return 2
	default:
		return 3
	}
}

// smartSort orders tasks by urgency and, within a rank, by due date. It is
// stable, so equal tasks keep their insertion order.
func smartSort(tasks []*todo.Task, today todo.Date) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := urgency(tasks[i], today), urgency(tasks[j], today)
		if ri != rj {
			return ri < rj
		}
		if ri > 2 {
			return false
		}
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})
}

func formatTask(t *todo.Task, today todo.Date) string {
	check := "[ ]"
	if t.Done {
		check = "[x]"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s  %s", check, t.ID, t.Title)
	if t.Category != "" {
		fmt.Fprintf(&b, "  #%s", t.Category)
	}
	switch {
	case t.IsOverdueOn(today):
		fmt.Fprintf(&b, "  ! overdue %s", t.DueDate)
	case t.IsDueTodayOn(today):
		b.WriteString("  due today")
	case t.DueDate != nil:
		fmt.Fprintf(&b, "  due %s", t.DueDate)
	}
	return b.String()
}

func printTasks(w io.Writer, tasks []*todo.Task, today todo.Date) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, formatTask(t, today))
	}
}

func printStats(w io.Writer, st todo.Stats) {
	fmt.Fprintf(w, "%d / %d completed (%.0f%%)\n", st.Done, st.Total, st.Progress*100)
	fmt.Fprintf(w, "open: %d  overdue: %d  due today: %d\n", st.Open, st.Overdue, st.DueToday)
}

// mergeCategories lists the configured catalog followed by any category in
// use that the catalog lacks. The two sources stay separate: the catalog is
// what to offer, the store reports what exists.
func mergeCategories(catalog, inUse []string) []string {
	seen := make(map[string]struct{}, len(catalog))
	out := make([]string, 0, len(catalog)+len(inUse))
	for _, c := range catalog {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for _, c := range inUse {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}
