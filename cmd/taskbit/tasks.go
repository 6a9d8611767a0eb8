package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"taskbit/internal/service"
)

func taskCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Work with tasks on behalf of a user",
	}
	cmd.AddCommand(taskListCmd(opts))
	cmd.AddCommand(taskAddCmd(opts))
	return cmd
}

func taskListCmd(opts *rootOptions) *cobra.Command {
	var (
		as     string
		query  service.TaskQuery
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the tasks of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.identity.ResolveByEmail(cmd.Context(), as)
			if err != nil {
				return describeError(err)
			}
			tasks, err := a.tasks.ListTasks(cmd.Context(), user.ID, query)
			if err != nil {
				return describeError(err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			return writeTasks(cmd.OutOrStdout(), tasks)
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "email of the acting user")
	cmd.Flags().StringVar(&query.Status, "status", "", "filter by status")
	cmd.Flags().StringVar(&query.Priority, "priority", "", "filter by priority")
	cmd.Flags().StringVar(&query.Course, "course", "", "filter by course")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func taskAddCmd(opts *rootOptions) *cobra.Command {
	var (
		as          string
		description string
		due         string
		priority    string
		course      string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := service.TaskInput{Title: args[0]}
			if cmd.Flags().Changed("description") {
				input.Description = &description
			}
			if cmd.Flags().Changed("priority") {
				input.Priority = &priority
			}
			if cmd.Flags().Changed("course") {
				input.Course = &course
			}
			if due != "" {
				parsed, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("--due: expected YYYY-MM-DD, got %q", due)
				}
				input.DueDate = &parsed
			}

			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.identity.ResolveByEmail(cmd.Context(), as)
			if err != nil {
				return describeError(err)
			}
			task, err := a.tasks.CreateTask(cmd.Context(), user.ID, input)
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "task %d created\n", task.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "email of the acting user")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().StringVar(&priority, "priority", "", "high, medium or low")
	cmd.Flags().StringVar(&course, "course", "", "course label")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func alertCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Work with alerts on behalf of a user",
	}
	cmd.AddCommand(alertListCmd(opts))
	cmd.AddCommand(alertAddCmd(opts))
	return cmd
}

func alertListCmd(opts *rootOptions) *cobra.Command {
	var (
		as     string
		active bool
		taskID uint
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the alerts of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.identity.ResolveByEmail(cmd.Context(), as)
			if err != nil {
				return describeError(err)
			}
			var alerts []service.AlertView
			switch {
			case taskID != 0:
				alerts, err = a.alerts.ListTaskAlerts(cmd.Context(), taskID, user.ID)
			case active:
				alerts, err = a.alerts.ListActiveAlerts(cmd.Context(), user.ID)
			default:
				alerts, err = a.alerts.ListAlerts(cmd.Context(), user.ID)
			}
			if err != nil {
				return describeError(err)
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), alerts)
			}
			return writeAlerts(cmd.OutOrStdout(), alerts)
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "email of the acting user")
	cmd.Flags().BoolVar(&active, "active", false, "only active alerts")
	cmd.Flags().UintVar(&taskID, "task", 0, "only alerts of this task")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "output as JSON")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

func alertAddCmd(opts *rootOptions) *cobra.Command {
	var as string
	cmd := &cobra.Command{
		Use:   "add <task-id> <lead time>",
		Short: "Schedule an alert, e.g. alert add 3 2 days",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil || taskID == 0 {
				return fmt.Errorf("invalid task id %q", args[0])
			}

			a, err := openApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.identity.ResolveByEmail(cmd.Context(), as)
			if err != nil {
				return describeError(err)
			}
			alert, err := a.alerts.CreateAlert(cmd.Context(), uint(taskID), user.ID, strings.Join(args[1:], " "))
			if err != nil {
				return describeError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alert %d scheduled for %s\n", alert.ID, alert.ScheduledFor.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&as, "as", "", "email of the acting user")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}

// describeError maps service errors to CLI errors. Foreign tasks read as missing ones.
func describeError(err error) error {
	var e *service.Error
	if !errors.As(err, &e) {
		log.Printf("[error] %v", err)
		return errors.New("internal error")
	}
	if errors.Is(err, service.ErrNotOwner) {
		return &service.Error{Kind: service.ErrNotFound, Msg: e.Msg}
	}
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTasks(w io.Writer, tasks []service.TaskView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tDUE\tPRIORITY\tCOURSE\tTITLE")
	for _, task := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			task.ID, task.Status, orDash(task.DueDate), orDash(string(task.Priority)), orDash(task.Course), task.Title)
	}
	return tw.Flush()
}

func writeAlerts(w io.Writer, alerts []service.AlertView) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTASK\tLEAD\tSCHEDULED\tSTATUS\tTITLE")
	for _, alert := range alerts {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
			alert.ID, alert.TaskID, alert.LeadTime, alert.ScheduledFor.Format(time.RFC3339), alert.Status, alert.TaskTitle)
	}
	return tw.Flush()
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
