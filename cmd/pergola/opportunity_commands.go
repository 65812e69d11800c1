package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pergola/internal/api"
	"pergola/internal/store"
)

func newOpportunityCommand(ctx *commandContext) *cobra.Command {
	opportunityCmd := &cobra.Command{
		Use:     "opportunity",
		Aliases: []string{"opp"},
		Short:   "Manage commercial opportunities",
	}

	opportunityCmd.AddCommand(newOpportunityListCommand(ctx))
	opportunityCmd.AddCommand(newOpportunityCreateCommand(ctx))
	opportunityCmd.AddCommand(newOpportunityMoveCommand(ctx))
	opportunityCmd.AddCommand(newOpportunityHistoryCommand(ctx))

	return opportunityCmd
}

func newOpportunityListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open commercial opportunities",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				Opportunities []api.Opportunity `json:"opportunities"`
			}
			if err := ctx.client().get("/api/opportunities", &payload); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(payload.Opportunities) == 0 {
				fmt.Fprintln(out, "No opportunities")
				return nil
			}
			rows := make([][]string, 0, len(payload.Opportunities))
			for _, opp := range payload.Opportunities {
				amount := opp.AmountFinal
				if amount <= 0 {
					amount = opp.AmountEstimated
				}
				rows = append(rows, []string{
					opp.ID,
					opp.Title,
					formatBRL(amount),
					opp.Priority,
					opp.Source,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Amount", "Priority", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newOpportunityCreateCommand(ctx *commandContext) *cobra.Command {
	var amount float64
	var priority string
	var source string
	var description string

	cmd := &cobra.Command{
		Use:   "create <title>",
		Short: "Create a new commercial opportunity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.TrimSpace(args[0])
			if title == "" {
				return errors.New("title is required")
			}
			var created api.Opportunity
			err := ctx.client().post("/api/opportunities", api.CreateOpportunityRequest{
				Title:           title,
				Description:     description,
				AmountEstimated: amount,
				Priority:        priority,
				Source:          source,
			}, &created)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created opportunity %s (%s)\n", created.Title, created.ID)
			return nil
		},
	}

	cmd.Flags().Float64Var(&amount, "amount", 0, "Estimated deal amount")
	cmd.Flags().StringVar(&priority, "priority", store.PriorityMedium, "Priority (low, medium, high)")
	cmd.Flags().StringVar(&source, "source", "", "Lead source")
	cmd.Flags().StringVar(&description, "description", "", "Free-form description")
	return cmd
}

func newOpportunityMoveCommand(ctx *commandContext) *cobra.Command {
	var stageSlug string
	var pipelineSlug string

	cmd := &cobra.Command{
		Use:   "move <id>",
		Short: "Move an opportunity to another stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(stageSlug) == "" {
				return errors.New("--stage is required")
			}
			client := ctx.client()
			stageID, err := resolveStageID(client, pipelineSlug, stageSlug)
			if err != nil {
				return err
			}

			path := "/api/opportunities/" + args[0] + "/move"
			if pipelineSlug == store.PipelineDelivery {
				path = "/api/deliveries/" + args[0] + "/move"
			}
			var result api.MoveResult
			if err := client.post(path, api.MoveRequest{StageID: stageID}, &result); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Moved to stage %s\n", result.Stage.Name)
			if result.DeliveryCreated && result.DerivedDelivery != nil {
				fmt.Fprintf(out, "Delivery opportunity created: %s (%s)\n",
					result.DerivedDelivery.Title, formatBRL(result.DerivedDelivery.AmountFinal))
			}
			if result.PaymentCreated && result.DerivedPayment != nil {
				p := result.DerivedPayment
				fmt.Fprintf(out, "Payment instruction created: seller %s, supplier %s, installer %s (total %s)\n",
					formatBRL(p.SellerAmount), formatBRL(p.SupplierAmount),
					formatBRL(p.InstallerAmount), formatBRL(p.TotalAmount))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&stageSlug, "stage", "", "Target stage slug")
	cmd.Flags().StringVar(&pipelineSlug, "pipeline", store.PipelineCommercial, "Pipeline (commercial or delivery)")
	return cmd
}

func newOpportunityHistoryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show an opportunity's stage history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				History []api.StageHistoryEntry `json:"history"`
			}
			if err := ctx.client().get("/api/opportunities/"+args[0]+"/history", &payload); err != nil {
				return err
			}
			rows := make([][]string, 0, len(payload.History))
			for _, entry := range payload.History {
				exited := entry.ExitedAt
				if exited == "" {
					exited = "(current)"
				}
				rows = append(rows, []string{entry.StageID, entry.EnteredAt, exited})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Stage", "Entered", "Exited"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
