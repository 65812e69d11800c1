package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pergola/internal/api"
	"pergola/internal/store"
)

func newUsersCommand(ctx *commandContext) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Administer operator accounts",
	}

	usersCmd.AddCommand(newUsersListCommand(ctx))
	usersCmd.AddCommand(newUsersInviteCommand(ctx))

	return usersCmd
}

func newUsersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			var payload struct {
				Users []api.User `json:"users"`
			}
			if err := ctx.client().get("/api/admin/users", &payload); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(payload.Users) == 0 {
				fmt.Fprintln(out, "No users")
				return nil
			}
			rows := make([][]string, 0, len(payload.Users))
			for _, user := range payload.Users {
				rows = append(rows, []string{user.Email, user.FullName, user.Role})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Email", "Name", "Role"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

func newUsersInviteCommand(ctx *commandContext) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "invite <email>",
		Short: "Invite a new user and print the invite token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var created struct {
				InviteToken string `json:"inviteToken"`
			}
			err := ctx.client().post("/api/admin/users", api.InviteRequest{
				Email: args[0],
				Role:  role,
			}, &created)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Invited %s as %s\n", args[0], role)
			fmt.Fprintf(out, "Invite token: %s\n", created.InviteToken)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", store.RoleUser, "Role for the new user (user or admin)")
	return cmd
}
