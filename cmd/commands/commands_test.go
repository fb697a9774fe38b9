package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

const testKey = "12345678901234567890123456789012"

func writeConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	env := strings.Join([]string{
		"STORAGE=memory",
		"TOKEN_TYPE=paseto",
		"TOKEN_SYMMETRIC_KEY=" + testKey,
		"ACCESS_TOKEN_DURATION=15m",
		"SERVER_ADDRESS=127.0.0.1:0",
	}, "\n")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.env"), []byte(env), 0o600))

	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCmd()
	root.SetArgs(append([]string{"--config", writeConfig(t)}, args...))
	root.SetOut(&out)

	err := root.ExecuteContext(context.Background())

	return out.String(), err
}

func TestSweepCommand(t *testing.T) {
	out, err := run(t, "sweep")
	require.ErrorIs(t, err, ErrEphemeralStorage)
	require.Empty(t, out)
}

func TestProcessCommand(t *testing.T) {
	_, err := run(t, "process")
	require.EqualError(t, err, "--id must be positive")

	out, err := run(t, "process", "--id", "42")
	require.ErrorIs(t, err, ErrEphemeralStorage)
	require.Empty(t, out)
}

func TestTokenCommand(t *testing.T) {
	_, err := run(t, "token")
	require.Error(t, err)

	out, err := run(t, "token", "--username", "alice", "--duration", "1m")
	require.NoError(t, err)

	maker, err := tokenpkg.NewPasetoMaker(testKey)
	require.NoError(t, err)

	payload, err := maker.VerifyToken(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Equal(t, "alice", payload.Username)
	require.WithinDuration(t, time.Now().Add(time.Minute), payload.ExpiredAt, 5*time.Second)
}
