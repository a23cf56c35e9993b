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

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "proposal version dev\n", out)
}

func TestTotals_DefaultData(t *testing.T) {
	out, _, err := run(t, "totals")
	require.NoError(t, err)

	assert.Contains(t, out, "SERA 2026")
	assert.Contains(t, out, "1,503,596.25")
	assert.Contains(t, out, "451,191")
	assert.Contains(t, out, "7,394,229.75")
	assert.Contains(t, out, "8,503,364.21")
}

func TestTotals_KindLines(t *testing.T) {
	out, _, err := run(t, "totals")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	kind := func(label string) string {
		for _, l := range lines {
			if strings.Contains(l, label) {
				return l
			}
		}
		return ""
	}
	assert.Contains(t, kind("Quarter groups"), "6,353,088.75")
	assert.Contains(t, kind("Newsletter groups"), "589,950")
	assert.Contains(t, kind("Sports groups"), "451,191")
}

func TestGenerate_WritesEveryFormat(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, "generate", "--out", dir, "--name", "sera", "--date", "1 January 2026", "--log-level", "error")
	require.NoError(t, err)

	for _, ext := range []string{"xlsx", "pdf", "csv"} {
		path := filepath.Join(dir, "sera."+ext)
		assert.Contains(t, out, path)
		info, err := os.Stat(path)
		require.NoError(t, err, ext)
		assert.Positive(t, info.Size(), ext)
	}
}

func TestGenerate_SelectedFormats(t *testing.T) {
	dir := t.TempDir()
	_, _, err := run(t, "generate", "--out", dir, "--format", "csv", "--log-level", "error")
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "proposal.csv", entries[0].Name())
}

func TestGenerate_InvalidDataWritesNothing(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "bad.yaml")
	src := `
title: "Bad"
currency: "SAR"
commission_rate: 0.15
tax_rate: 0.15
rollup: [q1, q9]
groups:
  - key: q1
    name: "Q1"
    kind: quarter
    events:
      - name: "Opening"
        items:
          - {description: "Gifts", quantity: -3, unit_price: 260}
`
	require.NoError(t, os.WriteFile(data, []byte(src), 0o600))
	outDir := filepath.Join(dir, "out")

	_, errOut, err := run(t, "generate", "--data", data, "--out", outDir)
	require.Error(t, err)
	assert.Equal(t, "validation failed with 2 problem(s)", err.Error())
	assert.Contains(t, errOut, "groups[q1].events[0].items[0].quantity: must not be negative")
	assert.Contains(t, errOut, `rollup[1]: rollup references unknown group "q9"`)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "no output directory on validation failure")
}

func TestValidate_ReportsDrift(t *testing.T) {
	out, _, err := run(t, "validate", "--log-level", "error")
	require.NoError(t, err)

	assert.Contains(t, out, "45 events in 6 groups are valid")
	assert.Contains(t, out, "1 published total(s) differ")
	assert.Contains(t, out, "1,613,996")
	assert.Contains(t, out, "1,503,596.25")
}

func TestValidate_LargeToleranceIsClean(t *testing.T) {
	out, _, err := run(t, "validate", "--tolerance", "200000", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "All published totals match")
}

func TestData_PrintsBundledFile(t *testing.T) {
	out, _, err := run(t, "data")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# SERA 2026"))
}

func TestInvalidConfig(t *testing.T) {
	_, _, err := run(t, "totals", "--log-format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.format")
}
