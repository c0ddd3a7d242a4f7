package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veildata/veil/internal/config"
	"github.com/veildata/veil/internal/redact"
	"github.com/veildata/veil/internal/report"
)

func TestReportCommandEmpty(t *testing.T) {
	t.Setenv("VEIL_DATA_DIR", t.TempDir())

	out, err := runCLI(t, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "No recorded runs.")
}

func TestReportCommandListsRuns(t *testing.T) {
	t.Setenv("VEIL_DATA_DIR", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.EnsureDataDir())

	store, err := report.NewStore(cfg.ReportDBPath())
	require.NoError(t, err)

	// Run IDs are normally UUIDs, but the store accepts any non-empty ID;
	// the listing must not assume a minimum length.
	recs := []*report.RunRecord{
		{ID: "r1", Provider: "http", Lines: 3,
			Counts: map[redact.Category]int{redact.CategoryPerson: 2}},
		{Provider: "openai", Lines: 1,
			Counts: map[redact.Category]int{redact.CategoryEmail: 1}},
	}
	for _, rec := range recs {
		require.NoError(t, store.Save(context.Background(), rec))
	}
	require.NoError(t, store.Close())

	out, err := runCLI(t, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Recent runs (2):")
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "provider=openai")
	assert.Contains(t, out, "PERSON")
	assert.Contains(t, out, "EMAIL")
}
