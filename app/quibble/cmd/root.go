package cmd

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/quibble-bot/quibble/internal/textutil"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "quibble",
	Short: "Review-comment bookkeeping for GitHub pull requests",
	Long: `Quibble keeps track of the review comments a bot has already left on a
pull request. It maps analyzer findings onto diff positions, compares them
against the issues already posted on the review thread, and reports only the
ones that still need a comment.`,
	PersistentPreRun: loadRootConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func loadRootConfig(_ *cobra.Command, _ []string) {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config.TelemetryEnabled = textutil.ParseBool(os.Getenv("QUIBBLE_TELEMETRY"))
	loadOptionalFromEnv(&config.TelemetryEndpoint, "QUIBBLE_OTLP_ENDPOINT")
}
