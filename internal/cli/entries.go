package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ezzabuzaid/iworked/internal/service"
	"github.com/spf13/cobra"
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Manage time entries",
	Long:  `Add, list, edit, and delete time entries.`,
}

// timeLayouts are accepted input formats for entry timestamps, tried in order
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseTimeArg parses a timestamp in any accepted layout, in local time for
// the layouts without an offset
func parseTimeArg(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q (expected e.g. 2006-01-02 15:04)", s)
}

// parseDateArg parses a date at local midnight
func parseDateArg(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

var entriesAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a time entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		projectID, _ := cmd.Flags().GetInt64("project")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")
		note, _ := cmd.Flags().GetString("note")

		from, err := parseTimeArg(fromStr)
		if err != nil {
			return err
		}
		to, err := parseTimeArg(toStr)
		if err != nil {
			return err
		}

		entry, err := appInstance.EntryService.CreateEntry(ctx, appInstance.UserID(), service.EntryInput{
			ProjectID: projectID,
			StartedAt: from,
			EndedAt:   to,
			Note:      note,
		})
		if err != nil {
			return fmt.Errorf("failed to create entry: %w", err)
		}

		fmt.Printf("✓ Entry created (ID: %d, %s)\n", entry.ID, formatDuration(entry.Duration()))
		return nil
	},
}

var entriesBatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Add several time entries at once",
	Long: `Add up to 50 entries in one all-or-nothing submission.
Each --span is "from..to", e.g. --span "2026-03-02 09:00..2026-03-02 11:30".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		projectID, _ := cmd.Flags().GetInt64("project")
		note, _ := cmd.Flags().GetString("note")
		spans, _ := cmd.Flags().GetStringArray("span")

		if len(spans) == 0 {
			return fmt.Errorf("at least one --span is required")
		}

		inputs := make([]service.EntryInput, 0, len(spans))
		for _, span := range spans {
			parts := strings.SplitN(span, "..", 2)
			if len(parts) != 2 {
				return fmt.Errorf("invalid span %q (expected \"from..to\")", span)
			}
			from, err := parseTimeArg(strings.TrimSpace(parts[0]))
			if err != nil {
				return err
			}
			to, err := parseTimeArg(strings.TrimSpace(parts[1]))
			if err != nil {
				return err
			}
			inputs = append(inputs, service.EntryInput{
				ProjectID: projectID,
				StartedAt: from,
				EndedAt:   to,
				Note:      note,
			})
		}

		entries, err := appInstance.EntryService.CreateEntries(ctx, appInstance.UserID(), inputs)
		if err != nil {
			return fmt.Errorf("failed to create entries: %w", err)
		}

		fmt.Printf("✓ %d entries created\n", len(entries))
		return nil
	},
}

var entriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var projectID *int64
		if cmd.Flags().Changed("project") {
			id, _ := cmd.Flags().GetInt64("project")
			projectID = &id
		}

		var start, end *time.Time
		if cmd.Flags().Changed("from") {
			fromStr, _ := cmd.Flags().GetString("from")
			t, err := parseDateArg(fromStr)
			if err != nil {
				return err
			}
			start = &t
		}
		if cmd.Flags().Changed("to") {
			toStr, _ := cmd.Flags().GetString("to")
			t, err := parseDateArg(toStr)
			if err != nil {
				return err
			}
			endOfDay := t.AddDate(0, 0, 1)
			end = &endOfDay
		}

		entries, err := appInstance.EntryService.ListEntries(ctx, appInstance.UserID(), projectID, start, end)
		if err != nil {
			return fmt.Errorf("failed to list entries: %w", err)
		}

		if len(entries) == 0 {
			fmt.Println("No entries found")
			return nil
		}

		fmt.Printf("%-5s %-8s %-17s %-17s %-9s %-8s %s\n", "ID", "Project", "Start", "End", "Duration", "Status", "Note")
		fmt.Println("--------------------------------------------------------------------------------")

		for _, entry := range entries {
			status := "open"
			if entry.IsLocked() {
				status = fmt.Sprintf("inv #%d", *entry.LockedByInvoiceID)
			}
			fmt.Printf("%-5d %-8d %-17s %-17s %-9s %-8s %s\n",
				entry.ID,
				entry.ProjectID,
				entry.StartedAt.Local().Format("2006-01-02 15:04"),
				entry.EndedAt.Local().Format("2006-01-02 15:04"),
				formatDuration(entry.Duration()),
				status,
				truncate(entry.Note, 30),
			)
		}

		fmt.Printf("\nTotal: %d entr(y/ies)\n", len(entries))
		return nil
	},
}

var entriesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit a time entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		var input service.EntryInput
		if cmd.Flags().Changed("project") {
			input.ProjectID, _ = cmd.Flags().GetInt64("project")
		}
		if cmd.Flags().Changed("from") {
			fromStr, _ := cmd.Flags().GetString("from")
			if input.StartedAt, err = parseTimeArg(fromStr); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("to") {
			toStr, _ := cmd.Flags().GetString("to")
			if input.EndedAt, err = parseTimeArg(toStr); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("note") {
			input.Note, _ = cmd.Flags().GetString("note")
		}

		entry, err := appInstance.EntryService.UpdateEntry(ctx, appInstance.UserID(), id, input)
		if err != nil {
			return fmt.Errorf("failed to update entry: %w", err)
		}

		fmt.Printf("✓ Entry updated (ID: %d, %s)\n", entry.ID, formatDuration(entry.Duration()))
		return nil
	},
}

var entriesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a time entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		if err := appInstance.EntryService.DeleteEntry(ctx, appInstance.UserID(), id); err != nil {
			return fmt.Errorf("failed to delete entry: %w", err)
		}

		fmt.Printf("✓ Entry deleted (ID: %d)\n", id)
		return nil
	},
}

var entriesHistoryCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show the edit history of a time entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry ID: %w", err)
		}

		history, err := appInstance.EntryService.GetHistory(ctx, appInstance.UserID(), id)
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}

		if len(history) == 0 {
			fmt.Println("No changes recorded")
			return nil
		}

		for _, h := range history {
			fmt.Printf("%s  %s: %q → %q\n",
				h.ChangedAt.Local().Format("2006-01-02 15:04"),
				h.FieldName, h.OldValue, h.NewValue)
		}

		return nil
	},
}

// formatDuration renders a duration as h:mm
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	return fmt.Sprintf("%d:%02d", h, m)
}

func init() {
	entriesCmd.AddCommand(entriesAddCmd)
	entriesCmd.AddCommand(entriesBatchCmd)
	entriesCmd.AddCommand(entriesListCmd)
	entriesCmd.AddCommand(entriesEditCmd)
	entriesCmd.AddCommand(entriesDeleteCmd)
	entriesCmd.AddCommand(entriesHistoryCmd)

	entriesAddCmd.Flags().Int64("project", 0, "Project ID (required)")
	entriesAddCmd.MarkFlagRequired("project")
	entriesAddCmd.Flags().String("from", "", "Start time (required)")
	entriesAddCmd.MarkFlagRequired("from")
	entriesAddCmd.Flags().String("to", "", "End time (required)")
	entriesAddCmd.MarkFlagRequired("to")
	entriesAddCmd.Flags().String("note", "", "What the time was spent on")

	entriesBatchCmd.Flags().Int64("project", 0, "Project ID (required)")
	entriesBatchCmd.MarkFlagRequired("project")
	entriesBatchCmd.Flags().StringArray("span", nil, "Entry span \"from..to\" (repeatable)")
	entriesBatchCmd.Flags().String("note", "", "Note applied to every entry")

	entriesListCmd.Flags().Int64("project", 0, "Filter by project ID")
	entriesListCmd.Flags().String("from", "", "Only entries starting on or after this date")
	entriesListCmd.Flags().String("to", "", "Only entries starting on or before this date")

	entriesEditCmd.Flags().Int64("project", 0, "New project ID")
	entriesEditCmd.Flags().String("from", "", "New start time")
	entriesEditCmd.Flags().String("to", "", "New end time")
	entriesEditCmd.Flags().String("note", "", "New note")
}
