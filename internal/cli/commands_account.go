package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/pulseph/internal/credential"
	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/phone"
)

var errNoKeyring = errors.New("no system keyring available")

func newLogoutCommand(deps Dependencies, flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored phone number and subscriptions.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openHeadless(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer closeRuntime(cmd, rt)

			ctx := cmd.Context()
			a, err := rt.Session.CurrentAuth(ctx)
			if err != nil {
				return err
			}
			if err := rt.Session.Logout(ctx); err != nil {
				return err
			}

			if a == nil {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Already signed out.")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Signed out %s.\n", phone.FormatDisplay(a.PhoneNumber))
			return nil
		},
	}
}

func newNotificationsCommand(deps Dependencies, flags *globalFlags) *cobra.Command {
	var limit int
	var unread bool

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show recent notification history.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openHeadless(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer closeRuntime(cmd, rt)

			ctx := cmd.Context()
			var list []model.Notification
			if unread {
				list, err = rt.Store.GetUnreadNotifications(ctx)
			} else {
				list, err = rt.Store.GetNotifications(ctx, limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				_, _ = fmt.Fprintln(out, "No notifications.")
				return nil
			}
			for _, n := range list {
				marker := " "
				if !n.Read {
					marker = "*"
				}
				_, _ = fmt.Fprintf(out, "%s %s  %s: %s\n",
					marker, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Title, n.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries; 0 shows all.")
	cmd.Flags().BoolVar(&unread, "unread", false, "Only show notifications that were never opened.")
	return cmd
}

func newMailboxCommand(deps Dependencies, flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mailbox",
		Short: "Manage the IMAP announcement source.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-password",
		Short: "Read the mailbox password from stdin and store it in the keyring.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openHeadless(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer closeRuntime(cmd, rt)

			if rt.Vault == nil {
				return errNoKeyring
			}

			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			password := strings.TrimRight(line, "\r\n")
			if password == "" {
				if err != nil {
					return fmt.Errorf("reading password: %w", err)
				}
				return errors.New("password must not be empty")
			}

			if err := rt.Vault.Set(credential.KeyMailboxPassword, password); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Mailbox password saved.")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "forget-password",
		Short: "Remove the stored mailbox password.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openHeadless(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer closeRuntime(cmd, rt)

			if rt.Vault == nil {
				return errNoKeyring
			}
			if err := rt.Vault.Delete(credential.KeyMailboxPassword); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Mailbox password removed.")
			return nil
		},
	})

	return cmd
}
