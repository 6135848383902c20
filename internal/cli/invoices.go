package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ezzabuzaid/iworked/internal/domain"
	"github.com/spf13/cobra"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Manage invoices",
	Long:  `Create, inspect, and move invoices through their lifecycle.`,
}

var invoicesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a draft invoice from unbilled entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		clientID, _ := cmd.Flags().GetInt64("client")
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

		invoice, err := appInstance.InvoiceService.CreateInvoice(ctx, appInstance.UserID(), clientID, from, to)
		if err != nil {
			return fmt.Errorf("failed to create invoice: %w", err)
		}

		fmt.Printf("✓ Invoice created: %s (ID: %d)\n", invoice.InvoiceNumber, invoice.ID)
		for _, line := range invoice.Lines {
			fmt.Printf("  %-30s %7.2fh @ $%.2f = $%.2f\n", truncate(line.Description, 30), line.Hours, line.Rate, line.Amount)
		}
		fmt.Printf("  Total: $%.2f\n", invoice.Total())
		return nil
	},
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		var clientID *int64
		if cmd.Flags().Changed("client") {
			id, _ := cmd.Flags().GetInt64("client")
			clientID = &id
		}

		var status *domain.InvoiceStatus
		if cmd.Flags().Changed("status") {
			s, _ := cmd.Flags().GetString("status")
			st := domain.InvoiceStatus(s)
			status = &st
		}

		invoices, err := appInstance.InvoiceService.ListInvoices(ctx, appInstance.UserID(), clientID, status)
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}

		if len(invoices) == 0 {
			fmt.Println("No invoices found")
			return nil
		}

		fmt.Printf("%-5s %-15s %-8s %-8s %-12s %-12s\n", "ID", "Number", "Client", "Status", "From", "To")
		fmt.Println("-----------------------------------------------------------------")

		for _, invoice := range invoices {
			fmt.Printf("%-5d %-15s %-8d %-8s %-12s %-12s\n",
				invoice.ID,
				invoice.InvoiceNumber,
				invoice.ClientID,
				invoice.Status,
				invoice.DateFrom.Format("2006-01-02"),
				invoice.DateTo.Format("2006-01-02"),
			)
		}

		fmt.Printf("\nTotal: %d invoice(s)\n", len(invoices))
		return nil
	},
}

var invoicesShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show an invoice with its lines",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

		invoice, err := appInstance.InvoiceService.GetInvoice(ctx, appInstance.UserID(), id)
		if err != nil {
			return fmt.Errorf("failed to get invoice: %w", err)
		}

		fmt.Printf("%s  [%s]\n", invoice.InvoiceNumber, invoice.Status)
		if invoice.Client != nil {
			fmt.Printf("Client: %s\n", invoice.Client.Name)
		}
		fmt.Printf("Period: %s to %s\n", invoice.DateFrom.Format("2006-01-02"), invoice.DateTo.Format("2006-01-02"))
		if invoice.SentAt != nil {
			fmt.Printf("Sent:   %s\n", invoice.SentAt.Local().Format("2006-01-02 15:04"))
		}
		if invoice.PaidAt != nil {
			fmt.Printf("Paid:   %s", invoice.PaidAt.Local().Format("2006-01-02 15:04"))
			if invoice.PaidAmount != nil {
				fmt.Printf(" ($%.2f)", *invoice.PaidAmount)
			}
			fmt.Println()
		}

		fmt.Println()
		for _, line := range invoice.Lines {
			fmt.Printf("  #%-4d %-30s %7.2fh @ $%.2f = $%.2f\n",
				line.ID, truncate(line.Description, 30), line.Hours, line.Rate, line.Amount)
		}
		fmt.Printf("\nTotal: $%.2f\n", invoice.Total())
		return nil
	},
}

var invoicesSendCmd = &cobra.Command{
	Use:   "send [id]",
	Short: "Mark a draft invoice as sent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

		invoice, err := appInstance.InvoiceService.MarkSent(ctx, appInstance.UserID(), id)
		if err != nil {
			return fmt.Errorf("failed to mark invoice sent: %w", err)
		}

		fmt.Printf("✓ Invoice %s marked as sent\n", invoice.InvoiceNumber)
		return nil
	},
}

var invoicesPayCmd = &cobra.Command{
	Use:   "pay [id]",
	Short: "Mark a sent invoice as paid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

		var amount *float64
		if cmd.Flags().Changed("amount") {
			a, _ := cmd.Flags().GetFloat64("amount")
			amount = &a
		}

		invoice, err := appInstance.InvoiceService.MarkPaid(ctx, appInstance.UserID(), id, amount)
		if err != nil {
			return fmt.Errorf("failed to mark invoice paid: %w", err)
		}

		fmt.Printf("✓ Invoice %s marked as paid\n", invoice.InvoiceNumber)
		return nil
	},
}

var invoicesEditCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Change the billing period of a draft invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

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

		if err := appInstance.InvoiceService.UpdatePeriod(ctx, appInstance.UserID(), id, from, to); err != nil {
			return fmt.Errorf("failed to update invoice: %w", err)
		}

		fmt.Printf("✓ Invoice period updated (ID: %d)\n", id)
		return nil
	},
}

var invoicesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a draft invoice, unlocking its entries",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

		if err := appInstance.InvoiceService.DeleteInvoice(ctx, appInstance.UserID(), id); err != nil {
			return fmt.Errorf("failed to delete invoice: %w", err)
		}

		fmt.Printf("✓ Invoice deleted (ID: %d); its entries are billable again\n", id)
		return nil
	},
}

var invoicesLinesCmd = &cobra.Command{
	Use:   "lines",
	Short: "Edit the lines of a draft invoice",
}

var invoicesLinesAddCmd = &cobra.Command{
	Use:   "add [invoice-id]",
	Short: "Add a manual line to a draft invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoiceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}

		projectID, _ := cmd.Flags().GetInt64("project")
		description, _ := cmd.Flags().GetString("description")
		hours, _ := cmd.Flags().GetFloat64("hours")
		rate, _ := cmd.Flags().GetFloat64("rate")

		line, err := appInstance.InvoiceService.AddLine(ctx, appInstance.UserID(), invoiceID, projectID, description, hours, rate)
		if err != nil {
			return fmt.Errorf("failed to add line: %w", err)
		}

		fmt.Printf("✓ Line added: %.2fh @ $%.2f = $%.2f\n", line.Hours, line.Rate, line.Amount)
		return nil
	},
}

var invoicesLinesEditCmd = &cobra.Command{
	Use:   "edit [invoice-id] [line-id]",
	Short: "Edit a line of a draft invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoiceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}
		lineID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid line ID: %w", err)
		}

		description, _ := cmd.Flags().GetString("description")

		var hours, rate *float64
		if cmd.Flags().Changed("hours") {
			h, _ := cmd.Flags().GetFloat64("hours")
			hours = &h
		}
		if cmd.Flags().Changed("rate") {
			r, _ := cmd.Flags().GetFloat64("rate")
			rate = &r
		}

		line, err := appInstance.InvoiceService.UpdateLine(ctx, appInstance.UserID(), invoiceID, lineID, description, hours, rate)
		if err != nil {
			return fmt.Errorf("failed to update line: %w", err)
		}

		fmt.Printf("✓ Line updated: %.2fh @ $%.2f = $%.2f\n", line.Hours, line.Rate, line.Amount)
		return nil
	},
}

var invoicesLinesDeleteCmd = &cobra.Command{
	Use:   "delete [invoice-id] [line-id]",
	Short: "Remove a line from a draft invoice",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		invoiceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice ID: %w", err)
		}
		lineID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid line ID: %w", err)
		}

		if err := appInstance.InvoiceService.RemoveLine(ctx, appInstance.UserID(), invoiceID, lineID); err != nil {
			return fmt.Errorf("failed to remove line: %w", err)
		}

		fmt.Printf("✓ Line removed (ID: %d)\n", lineID)
		return nil
	},
}

func init() {
	invoicesCmd.AddCommand(invoicesCreateCmd)
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesShowCmd)
	invoicesCmd.AddCommand(invoicesSendCmd)
	invoicesCmd.AddCommand(invoicesPayCmd)
	invoicesCmd.AddCommand(invoicesEditCmd)
	invoicesCmd.AddCommand(invoicesDeleteCmd)
	invoicesCmd.AddCommand(invoicesLinesCmd)
	invoicesLinesCmd.AddCommand(invoicesLinesAddCmd)
	invoicesLinesCmd.AddCommand(invoicesLinesEditCmd)
	invoicesLinesCmd.AddCommand(invoicesLinesDeleteCmd)

	invoicesCreateCmd.Flags().Int64("client", 0, "Client ID (required)")
	invoicesCreateCmd.MarkFlagRequired("client")
	invoicesCreateCmd.Flags().String("from", "", "Period start date YYYY-MM-DD (required)")
	invoicesCreateCmd.MarkFlagRequired("from")
	invoicesCreateCmd.Flags().String("to", "", "Period end date YYYY-MM-DD (required)")
	invoicesCreateCmd.MarkFlagRequired("to")

	invoicesListCmd.Flags().Int64("client", 0, "Filter by client ID")
	invoicesListCmd.Flags().String("status", "", "Filter by status (draft, sent, paid)")

	invoicesPayCmd.Flags().Float64("amount", 0, "Amount actually received")

	invoicesEditCmd.Flags().String("from", "", "New period start date (required)")
	invoicesEditCmd.MarkFlagRequired("from")
	invoicesEditCmd.Flags().String("to", "", "New period end date (required)")
	invoicesEditCmd.MarkFlagRequired("to")

	invoicesLinesAddCmd.Flags().Int64("project", 0, "Project ID (required)")
	invoicesLinesAddCmd.MarkFlagRequired("project")
	invoicesLinesAddCmd.Flags().String("description", "", "Line description")
	invoicesLinesAddCmd.Flags().Float64("hours", 0, "Hours billed (required)")
	invoicesLinesAddCmd.MarkFlagRequired("hours")
	invoicesLinesAddCmd.Flags().Float64("rate", 0, "Hourly rate (required)")
	invoicesLinesAddCmd.MarkFlagRequired("rate")

	invoicesLinesEditCmd.Flags().String("description", "", "New description")
	invoicesLinesEditCmd.Flags().Float64("hours", 0, "New hours")
	invoicesLinesEditCmd.Flags().Float64("rate", 0, "New rate")
}
