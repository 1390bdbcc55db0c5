package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), strings.Join(args, " "))
	return out.String()
}

func TestTrainSimilarModels(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	configPath := filepath.Join(dir, "korsub.yaml")
	dbPath := filepath.Join(dir, "models.db")

	lines := []string{
		"학교에 갔다", "학교에서 공부했다", "집에 갔다", "집에서 잤다",
		"학교에 왔다", "집에 왔다", "학교는 크다", "집은 작다",
	}
	require.NoError(t, os.WriteFile(corpusPath, []byte(strings.Join(lines, "\n")), 0o644))
	conf := `
scan:
  min_count: 1
  prune_per_sent: 0
cooc:
  min_count: 1
  prune_per_sent: 0
svd:
  rank: 4
`
	require.NoError(t, os.WriteFile(configPath, []byte(conf), 0o644))

	id := strings.TrimSpace(run(t, "train", corpusPath, "--config", configPath, "--db", dbPath, "--name", "demo"))
	require.Len(t, id, 26)

	listing := run(t, "models", "--config", configPath, "--db", dbPath)
	assert.Contains(t, listing, id)
	assert.Contains(t, listing, "demo")

	similar := run(t, "similar", "학교", "--config", configPath, "--db", dbPath, "--name", "demo", "--topk", "2")
	assert.True(t, strings.HasPrefix(similar, "학교\n"))
	assert.NotContains(t, strings.TrimPrefix(similar, "학교\n"), "학교 ")

	unknown := run(t, "similar", "없는말", "--config", configPath, "--db", dbPath, "--name", "demo")
	assert.Contains(t, unknown, "(no results)")
}
