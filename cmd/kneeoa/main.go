// kneeoa - command-line tools for the Knee OA Management Platform demo
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/kneeoa/internal/config"
	"github.com/ashureev/kneeoa/internal/content"
)

var (
	verbose    bool
	contentDir string
)

var rootCmd = &cobra.Command{
	Use:   "kneeoa",
	Short: "Knee OA Management Platform demo tools",
	Long: `kneeoa works on the same content fixtures as the web demo.

Export the downloadable reports, render the multi-agent therapy plans in the
terminal, or run the assessment chat as a terminal UI.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		if err := godotenv.Load(); err != nil {
			slog.Debug("No .env file found, using environment variables")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&contentDir, "content", "", "Content directory (default: $CONTENT_DIR, else embedded fixtures)")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(tuiCmd)
}

// openContent resolves --content, then CONTENT_DIR, then the embedded fixtures.
func openContent() (*content.Store, error) {
	dir := contentDir
	if dir == "" {
		dir = os.Getenv("CONTENT_DIR")
	}
	return content.Open(dir)
}

// loadConfig reads the environment after .env has been applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if contentDir != "" {
		cfg.ContentDir = contentDir
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
