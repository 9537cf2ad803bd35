package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/toastkit/internal/config"
	"github.com/vango-dev/toastkit/pkg/clipboard"
	"github.com/vango-dev/toastkit/pkg/server"
)

const requestTimeout = 10 * time.Second

// localClipboard receives the text of the copy command.
var localClipboard = clipboard.System()

// addrFlag registers --addr on cmd, defaulting to the local server.
func addrFlag(cmd *cobra.Command, addr *string) {
	cmd.Flags().StringVarP(addr, "addr", "a", config.DefaultAddress, "Address of the running toastd server")
}

func newClient(addr string) *server.Client {
	return server.NewClient(addr, nil)
}

func sendCmd() *cobra.Command {
	var (
		addr           string
		req            server.ToastRequest
		notDismissible bool
		progress       []float64
		summary        string
		details        string
		copyText       string
		copyLabel      string
	)

	cmd := &cobra.Command{
		Use:   "send [flags] MESSAGE...",
		Short: "Show a toast on a running server",
		Long: `Show a toast on a running server.

Examples:
  toastd send "Order 42 is ready"
  toastd send --type=error --title="Printer" "Kitchen printer is offline"
  toastd send --type=info --progress=3,10 --progress-label="Uploading" "Syncing photos"
  toastd send --copy="GUEST-7781" "Wi-Fi voucher issued"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Message = strings.Join(args, " ")
			if notDismissible {
				f := false
				req.Dismissible = &f
			}
			if len(progress) > 0 {
				if len(progress) != 2 {
					return fmt.Errorf("--progress takes CURRENT,TOTAL")
				}
				req.Progress.Current, req.Progress.Total = progress[0], progress[1]
			} else {
				req.Progress = nil
			}
			if summary != "" || details != "" {
				req.Expandable = &server.ExpandableBody{Summary: summary, Details: details}
			}
			if copyText != "" {
				req.Copyable = &server.CopyableBody{Text: copyText, Label: copyLabel}
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			id, err := newClient(addr).Show(ctx, req)
			if err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Sent toast %s", id)
			return nil
		},
	}

	req.Progress = &server.ProgressBody{}
	addrFlag(cmd, &addr)
	cmd.Flags().StringVarP(&req.Type, "type", "t", "info", "Toast type: success, error, warning, info")
	cmd.Flags().StringVar(&req.Title, "title", "", "Toast title")
	cmd.Flags().StringVar(&req.ID, "id", "", "Toast id; an existing toast with this id is replaced")
	cmd.Flags().StringVarP(&req.Duration, "duration", "d", "", "Auto-dismiss delay, e.g. 8s (default from server)")
	cmd.Flags().BoolVarP(&req.Persistent, "persistent", "p", false, "Never auto-dismiss")
	cmd.Flags().BoolVar(&req.Loading, "loading", false, "Show a spinner; implies persistent")
	cmd.Flags().BoolVar(&notDismissible, "not-dismissible", false, "Hide the close button and ignore dismiss keys")
	cmd.Flags().Float64SliceVar(&progress, "progress", nil, "Progress as CURRENT,TOTAL")
	cmd.Flags().StringVar(&req.Progress.Label, "progress-label", "", "Accessible label of the progress bar")
	cmd.Flags().StringVar(&summary, "summary", "", "Expandable summary button text")
	cmd.Flags().StringVar(&details, "details", "", "Expandable details text")
	cmd.Flags().StringVar(&copyText, "copy", "", "Text the copy button puts on the clipboard")
	cmd.Flags().StringVar(&copyLabel, "copy-label", "", "Copy button label")

	return cmd
}

func listCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the active toasts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			toasts, err := newClient(addr).List(ctx)
			if err != nil {
				return err
			}
			printToasts(cmd.OutOrStdout(), toasts)
			return nil
		},
	}
	addrFlag(cmd, &addr)
	return cmd
}

func dismissCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "dismiss ID",
		Short: "Dismiss one toast",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			if err := newClient(addr).Dismiss(ctx, args[0]); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Dismissed %s", args[0])
			return nil
		},
	}
	addrFlag(cmd, &addr)
	return cmd
}

func clearCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Dismiss every toast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			if err := newClient(addr).Clear(ctx); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Cleared all toasts")
			return nil
		},
	}
	addrFlag(cmd, &addr)
	return cmd
}

// copyCmd copies a toast's copyable text to the local clipboard.
func copyCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "copy ID",
		Short: "Copy a toast's copyable text to this machine's clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			toasts, err := newClient(addr).List(ctx)
			if err != nil {
				return err
			}
			for _, t := range toasts {
				if t.ID != args[0] {
					continue
				}
				if t.Copyable == nil {
					return fmt.Errorf("toast %s has no copyable text", t.ID)
				}
				if err := localClipboard.Write(ctx, t.Copyable.Text); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "Copied %q", t.Copyable.Text)
				return nil
			}
			return fmt.Errorf("no active toast with id %s", args[0])
		},
	}
	addrFlag(cmd, &addr)
	return cmd
}
