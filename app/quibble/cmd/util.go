package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/google/go-github/v72/github"
	"github.com/quibble-bot/quibble/internal/creds"
	"golang.org/x/oauth2"
)

func setupContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	// Setup graceful shutdown
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		log.Println("Interrupt signal detected, shutting down gracefully...")
		cancel()
		<-interrupt
		log.Fatal("Forcing shutdown")
	}()

	return ctx
}

func createGithubClient(ctx context.Context, token string) *github.Client {
	tokenSource := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(ctx, tokenSource)
	return github.NewClient(httpClient)
}

// authenticatedGithubClient resolves credentials and builds a client with
// them. Resolution failures point the user at 'quibble login'.
func authenticatedGithubClient(ctx context.Context) (*github.Client, error) {
	token, err := creds.Token()
	if err != nil {
		return nil, fmt.Errorf("no GitHub credentials (run 'quibble login' or set %s): %w", creds.EnvToken, err)
	}
	return createGithubClient(ctx, token), nil
}

func splitRepoName(qualified string) (owner string, repo string, err error) {
	parts := strings.Split(qualified, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository format '%s', expected owner/repo", qualified)
	}
	return parts[0], parts[1], nil
}
