package cmd

import (
	"fmt"
	"log"
	"sort"

	"github.com/quibble-bot/quibble/internal/comment"
	"github.com/quibble-bot/quibble/internal/githubapi"
	"github.com/quibble-bot/quibble/internal/textutil"
	"github.com/spf13/cobra"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List the issues the bot has already posted on a pull request",
	RunE:  runIssues,
}

func init() {
	issuesCmd.Flags().StringVar(&config.QualifiedRepoName, "repo", "", "Repository name in the format 'owner/repo'")
	issuesCmd.Flags().IntVar(&config.PRNumber, "pr", 0, "Pull request number")

	_ = issuesCmd.MarkFlagRequired("repo")
	_ = issuesCmd.MarkFlagRequired("pr")

	rootCmd.AddCommand(issuesCmd)
}

func runIssues(cmd *cobra.Command, args []string) error {
	ctx := setupContext()

	owner, repo, err := splitRepoName(config.QualifiedRepoName)
	if err != nil {
		return err
	}

	client, err := authenticatedGithubClient(ctx)
	if err != nil {
		return err
	}

	records, err := githubapi.NewPullRequestService(client).ListReviewComments(ctx, owner, repo, config.PRNumber)
	if err != nil {
		return err
	}

	paths := map[string]struct{}{}
	for _, r := range records {
		paths[r.Path] = struct{}{}
	}
	sortedPaths := make([]string, 0, len(paths))
	for path := range paths {
		sortedPaths = append(sortedPaths, path)
	}
	sort.Strings(sortedPaths)

	total := 0
	for _, path := range sortedPaths {
		byLine := comment.IssuesByLine(records, path)
		if len(byLine) == 0 {
			continue
		}

		positions := make([]int, 0, len(byLine))
		for position := range byLine {
			positions = append(positions, position)
		}
		sort.Ints(positions)

		fmt.Println(path)
		for _, position := range positions {
			for _, issue := range byLine[position] {
				fmt.Printf("  position %d: %s\n", position, issue)
				total++
			}
		}
	}

	log.Printf("Found %s on %s#%d", textutil.Plural(total, "issue"), config.QualifiedRepoName, config.PRNumber)
	return nil
}
