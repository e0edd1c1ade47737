package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authdemo "github.com/MalcoreHardcore698/authdemo"
	"github.com/MalcoreHardcore698/authdemo/auth"
	"github.com/MalcoreHardcore698/authdemo/mockstore"
)

// run executes one command against a private state dir and mock-only
// transport.
func run(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCmd()
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	base := []string{
		"--storage.dir", dir,
		"--transport.base_url=",
		"--mock.latency", "0s",
		"--mock.me_latency", "0s",
	}
	cmd.SetArgs(append(base, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())

	for _, sub := range []string{"serve", "register", "login", "me", "logout", "reset-password"} {
		assert.Contains(t, buf.String(), sub, "Help missing %q command", sub)
	}
}

func TestSessionPersistsAcrossInvocations(t *testing.T) {
	dir := t.TempDir()

	out, _, err := run(t, dir, "register", "--name", "Ada Lovelace", "--email", "ada@example.com", "--password", "Engines1843")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")

	out, _, err = run(t, dir, "me")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")

	out, _, err = run(t, dir, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "signed out")

	_, _, err = run(t, dir, "me")
	assert.ErrorIs(t, err, errNotSignedIn)

	out, _, err = run(t, dir, "login", "--email", "ADA@example.com", "--password", "Engines1843")
	require.NoError(t, err)
	assert.Contains(t, out, "ada@example.com")
}

func TestMeWithStaleTokenSignsOutQuietly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "auth_token.json"), []byte(`"stale-token"`), 0o600))

	out, stderr, err := run(t, dir, "me")
	require.ErrorIs(t, err, errNotSignedIn)
	assert.Empty(t, out)
	assert.NotContains(t, stderr, "error:")

	_, err = os.Stat(filepath.Join(dir, "auth_token.json"))
	assert.True(t, os.IsNotExist(err), "stale token is cleared")
}

func TestLoginWithSeededAccount(t *testing.T) {
	seed := mockstore.DefaultSeed[0]

	out, _, err := run(t, t.TempDir(), "login", "--email", seed.Email, "--password", seed.Password)
	require.NoError(t, err)
	assert.Contains(t, out, seed.Email)
}

func TestLoginFailureIsReported(t *testing.T) {
	_, stderr, err := run(t, t.TempDir(), "login", "--email", "test@example.com", "--password", "wrong-password")
	require.Error(t, err)
	assert.Contains(t, stderr, "error:")
}

func TestInvalidFormPrintsFieldErrors(t *testing.T) {
	_, stderr, err := run(t, t.TempDir(), "login", "--email", "not-an-email")
	require.ErrorIs(t, err, auth.ErrInvalidForm)
	assert.Contains(t, stderr, "email: Enter a valid email address")
	assert.Contains(t, stderr, "password: Password is required")
}

func TestResetPasswordPrintsBackendMessage(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "reset-password", "--email", "test@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, mockstore.ResetPasswordMessage)
}

func TestLoadConfigLayersFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authdemo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage:
  driver: memory
log:
  level: error
transport:
  timeout: 2s
server:
  listen: ":9000"
`), 0o600))

	cmd := NewRootCmd()
	fs := cmd.PersistentFlags()
	require.NoError(t, fs.Parse([]string{"--config", path, "--transport.timeout", "3s"}))

	cfg, err := loadConfig(fs)
	require.NoError(t, err)

	assert.Equal(t, authdemo.StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, 3*time.Second, cfg.Transport.Timeout, "flags override the file")
	assert.Equal(t, authdemo.DefaultConfig().Mock.Latency, cfg.Mock.Latency, "unset keys keep defaults")
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cmd := NewRootCmd()
	fs := cmd.PersistentFlags()
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := loadConfig(fs)
	assert.Error(t, err)
}

func TestServeStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{
		"--storage.driver", "memory",
		"--server.listen", "127.0.0.1:0",
		"serve", "--embedded-redis",
	})
	assert.NoError(t, cmd.ExecuteContext(ctx))
}
