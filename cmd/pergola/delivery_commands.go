package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pergola/internal/api"
)

func newDeliveryCommand(ctx *commandContext) *cobra.Command {
	deliveryCmd := &cobra.Command{
		Use:   "delivery",
		Short: "Inspect delivery opportunities and payments",
	}

	deliveryCmd.AddCommand(newDeliveryListCommand(ctx))
	deliveryCmd.AddCommand(newPaymentsCommand(ctx))

	return deliveryCmd
}

func newDeliveryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List delivery opportunities",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				Deliveries []api.DeliveryOpportunity `json:"deliveries"`
			}
			if err := ctx.client().get("/api/deliveries", &payload); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(payload.Deliveries) == 0 {
				fmt.Fprintln(out, "No delivery opportunities")
				return nil
			}
			rows := make([][]string, 0, len(payload.Deliveries))
			for _, delivery := range payload.Deliveries {
				rows = append(rows, []string{
					delivery.ID,
					delivery.Title,
					formatBRL(delivery.AmountFinal),
					delivery.BillingStatus,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Amount", "Billing"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newPaymentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "payments",
		Short: "List derived payment instructions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				Payments []api.PaymentInstruction `json:"payments"`
			}
			if err := ctx.client().get("/api/payments", &payload); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(payload.Payments) == 0 {
				fmt.Fprintln(out, "No payment instructions")
				return nil
			}
			rows := make([][]string, 0, len(payload.Payments))
			for _, payment := range payload.Payments {
				rows = append(rows, []string{
					payment.DeliveryOpportunityID,
					formatBRL(payment.SellerAmount),
					formatBRL(payment.SupplierAmount),
					formatBRL(payment.InstallerAmount),
					formatBRL(payment.TotalAmount),
					payment.Status,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Delivery", "Seller", "Supplier", "Installer", "Total", "Status"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}
