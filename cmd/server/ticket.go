package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-community/internal/app"
)

func ticketCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Manage login tickets",
	}

	cmd.AddCommand(ticketIssueCmd(), ticketRevokeCmd())
	return cmd
}

func ticketIssueCmd() *cobra.Command {
	var (
		userID   int
		ttl      time.Duration
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a login ticket for a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if ttl == 0 {
				ttl = cfg.TicketTTL
				if remember {
					ttl = cfg.TicketRememberTTL
				}
			}

			backends, err := app.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer backends.Close()

			ticket, err := backends.UserService(cfg).IssueTicket(cmd.Context(), userID, ttl)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ticket.Ticket)
			fmt.Fprintf(out, "expires %s (cookie %q)\n", ticket.Expired.Format(time.RFC3339), cfg.TicketCookieName)
			return nil
		},
	}

	cmd.Flags().IntVar(&userID, "user", 0, "user id that owns the ticket")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "ticket lifetime (default TICKET_TTL)")
	cmd.Flags().BoolVar(&remember, "remember", false, "use TICKET_REMEMBER_TTL")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func ticketRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <ticket>",
		Short: "Revoke a login ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			backends, err := app.Connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer backends.Close()

			if err := backends.UserService(cfg).RevokeTicket(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ticket revoked")
			return nil
		},
	}
}
