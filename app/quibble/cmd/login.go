package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/quibble-bot/quibble/internal/creds"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store a GitHub token for later runs",
	Long: `Prompts for a GitHub personal access token, verifies it against the API,
and saves it to the user config directory. Runs that find no GITHUB_TOKEN in
the environment fall back to the saved token.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	token, err := creds.PromptToken(os.Stdin, os.Stdout)
	if err != nil {
		return err
	}
	if token == "" {
		return fmt.Errorf("empty token")
	}

	// Test the connection before persisting anything
	if err := creds.Verify(ctx, createGithubClient(ctx, token)); err != nil {
		return err
	}

	store, err := creds.DefaultStore()
	if err != nil {
		return err
	}
	if err := store.Save(token); err != nil {
		return err
	}

	log.Printf("Credentials verified and saved")
	return nil
}
