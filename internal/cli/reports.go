package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Summaries and financial reports",
}

var reportsSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Summarize tracked time over a period",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		from, err := parseDateArg(fromStr)
		if err != nil {
			return err
		}
		to, err := parseDateArg(toStr)
		if err != nil {
			return err
		}

		summary, err := appInstance.ReportService.GetPeriodSummary(ctx, appInstance.UserID(), from, to.AddDate(0, 0, 1))
		if err != nil {
			return fmt.Errorf("failed to build summary: %w", err)
		}

		fmt.Printf("Period %s to %s\n\n", from.Format("2006-01-02"), to.Format("2006-01-02"))

		if len(summary.ByProject) == 0 {
			fmt.Println("No entries in period")
			return nil
		}

		fmt.Printf("%-8s %-8s %-10s %-12s\n", "Project", "Client", "Hours", "Value")
		fmt.Println("------------------------------------------")
		for _, total := range summary.ByProject {
			fmt.Printf("%-8d %-8d %-10.2f $%-11.2f\n",
				total.ProjectID, total.ClientID, total.RoundedHours(), total.RoundedAmount())
		}

		fmt.Printf("\nTotal hours:  %.2f\n", summary.RoundedHours())
		fmt.Printf("Total value:  $%.2f\n", summary.RoundedValue())
		fmt.Printf("Unbilled:     $%.2f\n", summary.RoundedUnbilled())
		return nil
	},
}

var reportsOutstandingCmd = &cobra.Command{
	Use:   "outstanding",
	Short: "Sum of sent, unpaid invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		total, err := appInstance.ReportService.GetOutstandingTotal(ctx, appInstance.UserID())
		if err != nil {
			return fmt.Errorf("failed to get outstanding total: %w", err)
		}

		fmt.Printf("Outstanding: $%.2f\n", total)
		return nil
	},
}

var reportsUnbilledCmd = &cobra.Command{
	Use:   "unbilled",
	Short: "Value of time not yet invoiced",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		total, err := appInstance.ReportService.GetUnbilledTotal(ctx, appInstance.UserID())
		if err != nil {
			return fmt.Errorf("failed to get unbilled total: %w", err)
		}

		fmt.Printf("Unbilled: $%.2f\n", total)
		return nil
	},
}

var reportsRevenueCmd = &cobra.Command{
	Use:   "revenue",
	Short: "Paid revenue per month of a year",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		year, _ := cmd.Flags().GetInt("year")
		if year == 0 {
			year = time.Now().Year()
		}

		revenue, err := appInstance.ReportService.GetRevenueByMonth(ctx, appInstance.UserID(), year)
		if err != nil {
			return fmt.Errorf("failed to get revenue: %w", err)
		}

		total := 0.0
		for m := time.January; m <= time.December; m++ {
			fmt.Printf("%-10s $%.2f\n", m, revenue[m])
			total += revenue[m]
		}
		fmt.Printf("\nTotal %d: $%.2f\n", year, total)
		return nil
	},
}

func init() {
	reportsCmd.AddCommand(reportsSummaryCmd)
	reportsCmd.AddCommand(reportsOutstandingCmd)
	reportsCmd.AddCommand(reportsUnbilledCmd)
	reportsCmd.AddCommand(reportsRevenueCmd)

	reportsSummaryCmd.Flags().String("from", "", "Period start date YYYY-MM-DD (required)")
	reportsSummaryCmd.MarkFlagRequired("from")
	reportsSummaryCmd.Flags().String("to", "", "Period end date YYYY-MM-DD (required)")
	reportsSummaryCmd.MarkFlagRequired("to")

	reportsRevenueCmd.Flags().Int("year", 0, "Year (defaults to the current year)")
}
