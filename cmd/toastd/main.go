package main

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/toastkit/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "toastd",
		Short: "Server-driven toast notifications",
		Long: `toastd serves a live toast notification stack to browsers.

Producers push toasts over the REST API or the send command; every
connected browser gets the stack rendered on the server and pushed
over a WebSocket.

  • Accessible markup (live regions, keyboard and swipe dismiss)
  • Pause on hover and focus
  • Prometheus metrics and OpenTelemetry spans`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		sendCmd(),
		listCmd(),
		dismissCmd(),
		clearCmd(),
		copyCmd(),
		configCmd(),
		versionCmd(),
	)
	return rootCmd
}

// printError prints err, using the structured layout for coded errors.
func printError(w io.Writer, err error) {
	var te *errors.Error
	if stderrors.As(err, &te) {
		fmt.Fprint(w, te.Format())
		return
	}
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render("Error:"), err)
}
