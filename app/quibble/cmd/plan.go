package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/quibble-bot/quibble/internal/githubapi"
	"github.com/quibble-bot/quibble/internal/review"
	"github.com/quibble-bot/quibble/internal/telemetry"
	"github.com/quibble-bot/quibble/internal/textutil"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute the review comments a pull request still needs",
	Long: `Reconciles a JSON file of analyzer findings against a pull request: findings
are mapped onto diff positions, issues the bot already posted are subtracted,
and the remaining comments are printed without being posted.`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&config.QualifiedRepoName, "repo", "", "Repository name in the format 'owner/repo'")
	planCmd.Flags().IntVar(&config.PRNumber, "pr", 0, "Pull request number")
	planCmd.Flags().StringVar(&config.FindingsPath, "findings", "", "Path to a JSON array of analyzer findings")
	planCmd.Flags().StringVar(&config.OutputFormat, "format", "text", "Output format: 'text' or 'json'")

	_ = planCmd.MarkFlagRequired("repo")
	_ = planCmd.MarkFlagRequired("pr")
	_ = planCmd.MarkFlagRequired("findings")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	owner, repo, err := splitRepoName(config.QualifiedRepoName)
	if err != nil {
		return err
	}

	tel, err := telemetry.NewProvider(ctx, telemetry.Config{
		Enabled:  config.TelemetryEnabled,
		Endpoint: config.TelemetryEndpoint,
	}, version)
	if err != nil {
		return fmt.Errorf("failed to set up telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			log.Printf("Failed to shut down telemetry: %v", err)
		}
	}()

	ctx, span, runID := telemetry.StartRun(ctx, "plan")
	defer span.End()

	log.Printf("Planning review for %s#%d (run %s)", config.QualifiedRepoName, config.PRNumber, runID)

	findings, err := review.LoadFindings(config.FindingsPath)
	if err != nil {
		return err
	}
	log.Printf("Loaded %s from %s", textutil.Plural(len(findings), "finding"), config.FindingsPath)

	client, err := authenticatedGithubClient(ctx)
	if err != nil {
		return err
	}

	planner := review.NewPlanner(githubapi.NewPullRequestService(client))
	plan, err := planner.Plan(ctx, owner, repo, config.PRNumber, findings)
	if err != nil {
		return fmt.Errorf("failed to compute plan: %w", err)
	}

	switch config.OutputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(plan); err != nil {
			return fmt.Errorf("failed to encode plan: %w", err)
		}
	case "text":
		printPlan(plan)
	default:
		return fmt.Errorf("unknown output format '%s'", config.OutputFormat)
	}

	return nil
}

func printPlan(plan *review.Plan) {
	for _, c := range plan.Comments {
		fmt.Printf("%s, position %d:\n", c.Path, c.Position)
		for _, issue := range c.Issues {
			fmt.Printf("  - %s\n", issue)
		}
	}

	fmt.Printf("%s to post", textutil.Plural(len(plan.Comments), "comment"))
	if plan.Duplicates > 0 {
		fmt.Printf(", %s already reported", textutil.Plural(plan.Duplicates, "issue"))
	}
	if plan.Unmapped > 0 {
		fmt.Printf(", %s outside the diff", textutil.Plural(plan.Unmapped, "finding"))
	}
	fmt.Println()

	for _, path := range plan.SkippedFiles {
		fmt.Printf("skipped %s: unparseable patch\n", path)
	}
}
