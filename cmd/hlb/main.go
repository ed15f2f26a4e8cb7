// Package main implements hlb, a command-line client for High/Low/Buffalo
// reflections. It works against the on-device store or the REST server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mmynk/highlowbuffalo/internal/apperr"
)

var (
	// Persistent flags; empty values fall back to the environment.
	serverURL   string
	backendName string
	token       string
	outputJSON  bool

	version = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "hlb: %s\n", notice(err))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "hlb",
	Short: "Record and share your High, Low and Buffalo",
	Long: `hlb records daily reflections: the best part of the day (High), the
hardest part (Low) and something unexpected (Buffalo).

Reflections are stored on this device by default. Set HLB_BACKEND=remote or
pass --backend remote to use a server, after "hlb login".`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (default $HLB_SERVER)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "local or remote (default $HLB_BACKEND)")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token for the remote backend (default $HLB_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print results as JSON")
}

// notice turns any error into a one-line message for the terminal.
func notice(err error) string {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return apperr.MessageOf(err)
	}
	return err.Error()
}
