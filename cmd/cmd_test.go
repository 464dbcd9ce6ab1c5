package cmd

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillmap/internal/config"
	"github.com/abhisek/skillmap/internal/store"
)

func TestParseResponse(t *testing.T) {
	r, err := parseResponse("go:1.5:true")
	require.NoError(t, err)
	assert.Equal(t, "go", r.SkillID)
	assert.Equal(t, 1.5, r.Difficulty)
	assert.True(t, r.Correct)
	assert.Equal(t, 1.0, r.Alpha)

	for _, bad := range []string{"go", "go:x:1", "go:1:maybe", ":1:1", "a:b:c:d"} {
		_, err := parseResponse(bad)
		assert.Error(t, err, bad)
	}
}

func TestUsageByPurpose(t *testing.T) {
	calls := []store.LLMCall{
		{Purpose: "gap-analysis", InputTokens: 100, OutputTokens: 50, LatencyMs: 300, Success: true},
		{Purpose: "assessment-questions", InputTokens: 10, OutputTokens: 5, LatencyMs: 100, Success: true},
		{Purpose: "gap-analysis", InputTokens: 20, OutputTokens: 0, LatencyMs: 100, Success: false},
	}

	stats := usageByPurpose(calls)
	require.Len(t, stats, 2)
	assert.Equal(t, "assessment-questions", stats[0].Purpose)

	gap := stats[1]
	assert.Equal(t, 2, gap.Calls)
	assert.Equal(t, 1, gap.Failures)
	assert.Equal(t, 120, gap.InputTokens)
	assert.Equal(t, 50, gap.OutputTokens)
	assert.Equal(t, int64(200), gap.AvgLatencyMs)
}

func TestEmbeddingOptionsBorrowsProviderKeys(t *testing.T) {
	cfg := config.Default()
	cfg.Embedding.Provider = "openai"
	cfg.LLM.OpenAI.APIKey = "sk-test"
	cfg.LLM.OpenAI.BaseURL = "http://localhost:9999/v1"

	opts := embeddingOptions(cfg)
	assert.Equal(t, "sk-test", opts.APIKey)
	assert.Equal(t, "http://localhost:9999/v1", opts.BaseURL)

	cfg.Embedding.Provider = "hash"
	assert.Empty(t, embeddingOptions(cfg).APIKey)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestBuildInfoFromModule(t *testing.T) {
	b := buildInfo{Version: "(devel)", GoVersion: "go1.24.0", Platform: "linux/amd64"}
	got := b.withBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	assert.Equal(t, "v0.3.1", got.Version)
	assert.Equal(t, "0123456789ab", got.Commit)
	assert.True(t, got.Modified)
	assert.Equal(t, "skillmap v0.3.1 (0123456789ab, dirty) go1.24.0 linux/amd64", got.String())
}

func TestBuildInfoKeepsLinkedVersion(t *testing.T) {
	b := buildInfo{Version: "1.2.0", GoVersion: "go1.24.0", Platform: "darwin/arm64"}
	got := b.withBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "v0.0.0-dev"}})

	assert.Equal(t, "1.2.0", got.Version)
	assert.Empty(t, got.Commit)
	assert.Equal(t, "skillmap 1.2.0 go1.24.0 darwin/arm64", got.String())
}
