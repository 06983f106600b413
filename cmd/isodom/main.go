package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/isodom/internal/config"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:   "isodom",
		Short: "Render isolated components into a live DOM",
		Long: `isodom drives a live document from streams of virtual trees.

Components read the document through scoped sources and tag their
output with isolation markers, so sibling and nested components never
see each other's elements or events.

  • render a demo, dispatch events and print the resulting HTML
  • serve a demo to browsers over a websocket bridge`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		renderCmd(&logLevel),
		serveCmd(&logLevel),
		versionCmd(),
	)
	return rootCmd
}

// newLogger writes text logs to w, honoring --log-level over the config.
func newLogger(w io.Writer, cfg *config.Config, flag string) (*slog.Logger, error) {
	if flag != "" {
		if _, err := config.ParseLevel(flag); err != nil {
			return nil, err
		}
		cfg.LogLevel = flag
	}
	return cfg.Logger(w), nil
}
