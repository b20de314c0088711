package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/pulseph/internal/model"
	"github.com/nhle/pulseph/internal/phone"
	appsync "github.com/nhle/pulseph/internal/sync"
)

func newWatchCommand(deps Dependencies, flags *globalFlags) *cobra.Command {
	var number string
	var once bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Poll for announcements and print them as they arrive.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openHeadless(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer closeRuntime(cmd, rt)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			owner, err := resolvePhone(ctx, rt, number)
			if err != nil {
				return err
			}
			return watch(ctx, cmd, rt, owner, once)
		},
	}
	addPhoneFlag(cmd, &number)
	cmd.Flags().BoolVar(&once, "once", false, "Fetch once, print the conversation and exit.")
	return cmd
}

// watch prints every message once, in conversation order, until ctx is
// done.
func watch(ctx context.Context, cmd *cobra.Command, rt *Runtime, number string, once bool) error {
	out := cmd.OutOrStdout()
	printed := make(map[string]bool)
	lastErr := ""

	emit := func(msgs []model.Message, errMsg string) {
		for _, m := range msgs {
			if printed[m.ID] {
				continue
			}
			printed[m.ID] = true
			_, _ = fmt.Fprintln(out, formatMessage(m))
		}
		if errMsg != "" && errMsg != lastErr {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", errMsg)
		}
		lastErr = errMsg
	}

	_, _ = fmt.Fprintf(out, "Watching announcements for %s\n", phone.FormatDisplay(number))

	if once {
		rt.Poller.SetPhoneNumber(number)
		rt.Poller.Stop()
		if err := rt.Poller.Refetch(ctx); err != nil {
			return err
		}
		emit(rt.Poller.Messages(), rt.Poller.Error())
		return nil
	}

	results := make(chan appsync.ResultMsg)
	go forwardResults(ctx, rt.Poller, results)

	rt.Poller.SetPhoneNumber(number)
	rt.Logger.Debug("polling started",
		slog.String("op", "cli.watch"),
		slog.Duration("interval", rt.Config.PollInterval()),
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case r := <-results:
			emit(r.Messages, r.Err)
		}
	}
}

// forwardResults bridges the poller's tea.Cmd subscription to a channel.
func forwardResults(ctx context.Context, p *appsync.Poller, out chan<- appsync.ResultMsg) {
	wait := p.WaitForNextResult()
	for {
		r, ok := wait().(appsync.ResultMsg)
		if !ok {
			return
		}
		select {
		case out <- r:
		case <-ctx.Done():
			return
		}
	}
}

func newReadCommand(deps Dependencies, flags *globalFlags) *cobra.Command {
	var number string

	cmd := &cobra.Command{
		Use:   "read [message-id...]",
		Short: "Mark announcements as read. Without ids, every unread one is marked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openHeadless(cmd, deps, flags)
			if err != nil {
				return err
			}
			defer closeRuntime(cmd, rt)

			ctx := cmd.Context()
			owner, err := resolvePhone(ctx, rt, number)
			if err != nil {
				return err
			}

			rt.Poller.SetPhoneNumber(owner)
			rt.Poller.Stop()
			if err := rt.Poller.Refetch(ctx); err != nil {
				return err
			}

			ids := args
			if len(ids) == 0 {
				ids = appsync.UnreadIDs(rt.Poller.Messages())
			}
			if len(ids) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Nothing to mark as read.")
				return nil
			}

			if err := rt.Poller.MarkAsRead(ctx, ids); err != nil {
				return fmt.Errorf("marking messages as read: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Marked %d message(s) as read.\n", len(ids))
			return nil
		},
	}
	addPhoneFlag(cmd, &number)
	return cmd
}
