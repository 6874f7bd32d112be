package fixture

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestRun_testdataCorpus(t *testing.T) {
	results, err := Run(context.Background(), afero.NewOsFs(), "testdata", false)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	for _, r := range results {
		require.True(t, r.Passed, "%s: expected %q, got %q", r.Name, r.Expected, r.Outcome)
	}
}

func TestRun_passAndFail(t *testing.T) {
	fs := afero.NewMemMapFs()
	write := func(name, content string) {
		require.NoError(t, afero.WriteFile(fs, name, []byte(content), 0o644))
	}
	write("corpus/pass.mood", "pub fn test(): i32 { 1_i32 + 2_i32 }")
	write("corpus/pass.expected", "3\n")
	write("corpus/fail.mood", "pub fn test(): i32 { 1_i32 }")
	write("corpus/fail.expected", "2\n")

	results, err := Run(context.Background(), fs, "corpus", false)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	require.True(t, byName["pass.mood"].Passed)
	require.False(t, byName["fail.mood"].Passed)
	require.Equal(t, "1", byName["fail.mood"].Outcome)
}

func TestRun_writeRecordsOutcomes(t *testing.T) {
	fs := afero.NewMemMapFs()
	source := "pub fn test(): i32 { 40_i32 + 2_i32 }"
	require.NoError(t, afero.WriteFile(fs, "corpus/answer.mood", []byte(source), 0o644))

	results, err := Run(context.Background(), fs, "corpus", true)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Written)

	recorded, err := afero.ReadFile(fs, "corpus/answer.expected")
	require.NoError(t, err)
	require.Equal(t, "42\n", string(recorded))

	// A second run compares against what was just written.
	results, err = Run(context.Background(), fs, "corpus", false)
	require.NoError(t, err)
	require.True(t, results[0].Passed)
}

func TestRun_diagnosticOutcome(t *testing.T) {
	fs := afero.NewMemMapFs()
	source := "pub fn test(): i32 { missing }"
	require.NoError(t, afero.WriteFile(fs, "corpus/bad.mood", []byte(source), 0o644))

	results, err := Run(context.Background(), fs, "corpus", true)
	require.NoError(t, err)

	outcome := results[0].Outcome
	require.True(t, strings.HasPrefix(outcome, `Error: Undefined name "missing":`))
	require.Contains(t, outcome, "--> bad.mood:1:22")
	require.Contains(t, outcome, "^^^^^^^")
}

func TestRun_missingExpectedFileErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "corpus/orphan.mood",
		[]byte("pub fn test(): i32 { 1_i32 }"), 0o644))

	_, err := Run(context.Background(), fs, "corpus", false)
	require.Error(t, err)
	require.Contains(t, err.Error(), "orphan.mood")
}
