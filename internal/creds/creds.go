// Package creds loads, verifies, and stores the GitHub token the bot
// authenticates with.
package creds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/go-github/v72/github"
	"golang.org/x/term"
)

// EnvToken is the environment variable consulted before the credential file.
const EnvToken = "GITHUB_TOKEN"

const (
	configDirName  = "quibble"
	credentialFile = "github_auth"
)

var (
	ErrNoCredentials      = errors.New("no stored credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Store reads and writes the persisted credential file.
type Store struct {
	Dir string // config directory holding the credential file
}

// DefaultStore locates the store under the user's config directory.
func DefaultStore() (Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Store{}, fmt.Errorf("failed to locate user config dir: %w", err)
	}
	return Store{Dir: filepath.Join(dir, configDirName)}, nil
}

// Load returns the token from the first line of the credential file.
func (s Store) Load() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, credentialFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoCredentials
		}
		return "", fmt.Errorf("failed to read credential file: %w", err)
	}

	token, _, _ := strings.Cut(string(data), "\n")
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrNoCredentials
	}
	return token, nil
}

// Save persists token for later runs. The config directory and credential
// file are created owner-only.
func (s Store) Save(token string) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	path := filepath.Join(s.Dir, credentialFile)
	if err := os.WriteFile(path, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}

// Token resolves the GitHub token: environment first, then the default
// store's credential file.
func Token() (string, error) {
	if token := os.Getenv(EnvToken); token != "" {
		return token, nil
	}
	store, err := DefaultStore()
	if err != nil {
		return "", err
	}
	return store.Load()
}

// Verify makes a cheap authenticated request to confirm the token works. A
// 401 response reports ErrInvalidCredentials; other failures are transport
// errors.
func Verify(ctx context.Context, client *github.Client) error {
	_, resp, err := client.Users.Get(ctx, "")
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		return fmt.Errorf("failed to verify credentials: %w", err)
	}
	return nil
}

// PromptToken asks for a personal access token on out and reads it from in,
// hiding the input when in is a terminal.
func PromptToken(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "GitHub personal access token: ")

	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("failed to read token: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}
