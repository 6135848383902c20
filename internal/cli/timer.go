package cli

import (
	"context"
	"fmt"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/spf13/cobra"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Track time with a live timer",
	Long:  `Start, pause, resume, and stop the active timer. Stopping creates a time entry.`,
}

var timerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a timer for a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		projectID, _ := cmd.Flags().GetInt64("project")
		note, _ := cmd.Flags().GetString("note")

		if err := appInstance.TimerService.Start(ctx, appInstance.UserID(), projectID, note); err != nil {
			return fmt.Errorf("failed to start timer: %w", err)
		}

		fmt.Printf("✓ Timer started (project %d)\n", projectID)
		return nil
	},
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		timer, err := appInstance.TimerService.GetActiveTimer(ctx, appInstance.UserID())
		if err != nil {
			return fmt.Errorf("failed to get timer: %w", err)
		}
		if timer == nil {
			fmt.Println("No active timer")
			return nil
		}

		fmt.Printf("Timer %s on project %d\n", timer.State(), timer.ProjectID)
		fmt.Printf("Elapsed: %s\n", formatDuration(timer.Elapsed()))
		if timer.Note != "" {
			fmt.Printf("Note: %s\n", timer.Note)
		}
		return nil
	},
}

var timerPauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the running timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.TimerService.Pause(context.Background(), appInstance.UserID()); err != nil {
			return fmt.Errorf("failed to pause timer: %w", err)
		}
		fmt.Println("✓ Timer paused")
		return nil
	},
}

var timerResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused timer",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.TimerService.Resume(context.Background(), appInstance.UserID()); err != nil {
			return fmt.Errorf("failed to resume timer: %w", err)
		}
		fmt.Println("✓ Timer resumed")
		return nil
	},
}

var timerStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer and record a time entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		entry, err := appInstance.TimerService.Stop(ctx, appInstance.UserID())
		if err != nil {
			if domain.IsCode(err, domain.CodeDurationTooShort) {
				return fmt.Errorf("timer span is under a minute; keep it running or discard it: %w", err)
			}
			return fmt.Errorf("failed to stop timer: %w", err)
		}

		fmt.Printf("✓ Entry created (ID: %d, %s)\n", entry.ID, formatDuration(entry.Duration()))
		return nil
	},
}

var timerDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Drop the active timer without recording an entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := appInstance.TimerService.Discard(context.Background(), appInstance.UserID()); err != nil {
			return fmt.Errorf("failed to discard timer: %w", err)
		}
		fmt.Println("✓ Timer discarded")
		return nil
	},
}

func init() {
	timerCmd.AddCommand(timerStartCmd)
	timerCmd.AddCommand(timerStatusCmd)
	timerCmd.AddCommand(timerPauseCmd)
	timerCmd.AddCommand(timerResumeCmd)
	timerCmd.AddCommand(timerStopCmd)
	timerCmd.AddCommand(timerDiscardCmd)

	timerStartCmd.Flags().Int64("project", 0, "Project ID (required)")
	timerStartCmd.MarkFlagRequired("project")
	timerStartCmd.Flags().String("note", "", "What the time is being spent on")
}
