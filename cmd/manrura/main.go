// Command manrura serves the MANRURA ward self-assessment API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "manrura",
		Short: "MANRURA ward self-assessment service",
		Long: `Hospital ward self-assessment against the MANRURA standards.

Configuration is read from the environment (SERVER_PORT, STORAGE_BACKEND,
SQLITE_PATH, DATABASE_DSN, REDIS_ADDRESS, CATALOG_PATH, GEMINI_API_KEY, ...).

Examples:
  manrura                      # same as "manrura serve"
  manrura catalog              # print the standards tree
  manrura catalog --json       # print the catalog document as JSON
`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(catalogCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "manrura", version)
		},
	}
}

// setupLogger installs a JSON slog logger as the default
func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))
	slog.SetDefault(logger)
}
