package integration_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hmesh/presale-dashboard/internal/testserver"
)

func presaleBinary(t *testing.T) string {
	t.Helper()
	for _, path := range []string{"./bin/presale", "../../bin/presale"} {
		if _, err := os.Stat(path); err == nil {
			abs, err := filepath.Abs(path)
			require.NoError(t, err)
			return abs
		}
	}
	t.Skip("Server binary not found. Run 'go build -o bin/presale ./cmd/presale' first.")
	return ""
}

// runCLI runs the binary against a database in dir and returns stdout.
func runCLI(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command(presaleBinary(t), args...)
	cmd.Env = append(os.Environ(),
		"PRESALE_ENV_FILE="+filepath.Join(dir, "missing.env"),
		"PRESALE_DB_PATH="+filepath.Join(dir, "presale.db"),
		"PRESALE_LEDGER_BACKEND=sqlite",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Run(), "presale %s: %s", strings.Join(args, " "), stderr.String())
	return stdout.String()
}

func TestCLI_ImportAndSchedule(t *testing.T) {
	dir := t.TempDir()
	snapshotPath := filepath.Join(dir, "snapshot.yaml")
	require.NoError(t, os.WriteFile(snapshotPath, testserver.Snapshot, 0o600))

	out := runCLI(t, dir, "import", snapshotPath)
	require.Contains(t, out, "chain 11155111: 2 rounds, 2 purchases, 1 promoters")

	out = runCLI(t, dir, "schedule",
		"--wallet", testserver.Wallet,
		"--round", "1",
		"--at", strconv.FormatInt(testserver.Now, 10),
	)
	require.Contains(t, out, "round 1: purchased 1000.00")
	require.Contains(t, out, "Immediate Release")
	require.Contains(t, out, "Month 2")
	require.Contains(t, out, "total 1000.00, available 600.00, locked 400.00, claimed 0.00")

	out = runCLI(t, dir, "schedule",
		"--wallet", testserver.Wallet,
		"--at", strconv.FormatInt(testserver.Now, 10),
	)
	require.Contains(t, out, "round 2: purchased 500.00")
	require.Contains(t, out, "Cliff Period")
	require.Contains(t, out, "all rounds:")

	out = runCLI(t, dir, "schedule",
		"--wallet", testserver.Wallet,
		"--round", "1",
		"--at", strconv.FormatInt(testserver.Now, 10),
		"--json",
	)
	require.Contains(t, out, `"available": "600.00"`)
}

func TestCLI_APIKeyAdd(t *testing.T) {
	dir := t.TempDir()

	key := strings.TrimSpace(runCLI(t, dir, "apikey", "add", "--client", "dashboard"))
	require.Len(t, key, 36)

	out := runCLI(t, dir, "apikey", "add", "--client", "bot", "--key", "fixed-key")
	require.Equal(t, "fixed-key", strings.TrimSpace(out))
}
