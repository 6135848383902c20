package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage projects",
	Long:  `List, add, and edit projects under clients.`,
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var clientID *int64
		if cmd.Flags().Changed("client") {
			id, _ := cmd.Flags().GetInt64("client")
			clientID = &id
		}

		projects, err := appInstance.ProjectService.ListProjects(ctx, appInstance.UserID(), clientID)
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}

		if len(projects) == 0 {
			fmt.Println("No projects found")
			return nil
		}

		fmt.Printf("%-5s %-8s %-30s %-12s\n", "ID", "Client", "Name", "Rate")
		fmt.Println("------------------------------------------------------------")

		for _, project := range projects {
			fmt.Printf("%-5d %-8d %-30s $%-11.2f\n",
				project.ID,
				project.ClientID,
				truncate(project.Name, 30),
				project.HourlyRate,
			)
		}

		fmt.Printf("\nTotal: %d project(s)\n", len(projects))
		return nil
	},
}

var projectsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a new project to a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, _ := cmd.Flags().GetInt64("client")
		rate, _ := cmd.Flags().GetFloat64("rate")
		description, _ := cmd.Flags().GetString("description")

		project, err := appInstance.ProjectService.CreateProject(ctx, appInstance.UserID(), clientID, args[0], description, rate)
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		fmt.Printf("✓ Project created: %s (ID: %d)\n", project.Name, project.ID)
		fmt.Printf("  Hourly Rate: $%.2f\n", project.HourlyRate)
		return nil
	},
}

var projectsEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Edit an existing project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid project ID: %w", err)
		}

		name, _ := cmd.Flags().GetString("name")
		description, _ := cmd.Flags().GetString("description")

		var rate *float64
		if cmd.Flags().Changed("rate") {
			r, _ := cmd.Flags().GetFloat64("rate")
			rate = &r
		}

		project, err := appInstance.ProjectService.UpdateProject(ctx, appInstance.UserID(), id, name, description, rate)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}

		fmt.Printf("✓ Project updated: %s ($%.2f/h)\n", project.Name, project.HourlyRate)
		return nil
	},
}

func init() {
	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsEditCmd)

	projectsListCmd.Flags().Int64("client", 0, "Filter by client ID")

	projectsAddCmd.Flags().Int64("client", 0, "Client ID (required)")
	projectsAddCmd.MarkFlagRequired("client")
	projectsAddCmd.Flags().Float64("rate", 0, "Hourly rate (required)")
	projectsAddCmd.MarkFlagRequired("rate")
	projectsAddCmd.Flags().String("description", "", "Project description")

	projectsEditCmd.Flags().String("name", "", "New name")
	projectsEditCmd.Flags().Float64("rate", 0, "New hourly rate")
	projectsEditCmd.Flags().String("description", "", "New description")
}
