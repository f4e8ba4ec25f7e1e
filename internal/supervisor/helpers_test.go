package supervisor

import (
	"bufio"
	"os"
	"testing"

	"github.com/charliek/devcli/internal/domain"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func textsOf(entries []domain.LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func readLevels(t *testing.T, path string) []domain.Level {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var levels []domain.Level
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e domain.PersistedLogEntry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		levels = append(levels, e.Level)
	}
	return levels
}
