package creds

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveAndLoad(t *testing.T) {
	store := Store{Dir: filepath.Join(t.TempDir(), "quibble")}

	require.NoError(t, store.Save("ghp_example"))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "ghp_example", token)
}

func TestStore_SaveRestrictsPermissions(t *testing.T) {
	store := Store{Dir: filepath.Join(t.TempDir(), "quibble")}
	require.NoError(t, store.Save("ghp_example"))

	dirInfo, err := os.Stat(store.Dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), dirInfo.Mode().Perm())

	fileInfo, err := os.Stat(filepath.Join(store.Dir, credentialFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fileInfo.Mode().Perm())
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := Store{Dir: t.TempDir()}

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestStore_LoadTakesFirstLine(t *testing.T) {
	// Older credential files carried the token on the first line and an
	// authorization id on the second
	store := Store{Dir: t.TempDir()}
	path := filepath.Join(store.Dir, credentialFile)
	require.NoError(t, os.WriteFile(path, []byte("ghp_example\n12345\n"), 0o600))

	token, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "ghp_example", token)
}

func TestStore_LoadEmptyFile(t *testing.T) {
	store := Store{Dir: t.TempDir()}
	path := filepath.Join(store.Dir, credentialFile)
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o600))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestToken_EnvironmentWins(t *testing.T) {
	t.Setenv(EnvToken, "ghp_from_env")

	token, err := Token()
	require.NoError(t, err)
	assert.Equal(t, "ghp_from_env", token)
}

func TestPromptToken_ReadsLine(t *testing.T) {
	var out strings.Builder
	token, err := PromptToken(strings.NewReader("ghp_typed\n"), &out)

	require.NoError(t, err)
	assert.Equal(t, "ghp_typed", token)
	assert.Contains(t, out.String(), "personal access token")
}

func TestPromptToken_NoTrailingNewline(t *testing.T) {
	var out strings.Builder
	token, err := PromptToken(strings.NewReader("ghp_typed"), &out)

	require.NoError(t, err)
	assert.Equal(t, "ghp_typed", token)
}

func TestPromptToken_EmptyInput(t *testing.T) {
	var out strings.Builder
	_, err := PromptToken(strings.NewReader(""), &out)

	require.Error(t, err)
}
