package main

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"godoe/adapters/excel"
	"godoe/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var campaignIDPattern = regexp.MustCompile(`campaign ([0-9a-f-]{36}) created`)

func run(t *testing.T, db string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	env := &cliEnv{out: &out}
	cmd := newRootCmd(env)
	cmd.SetArgs(append([]string{"--db", db, "--log-level", "ERROR"}, args...))
	require.NoError(t, cmd.Execute(), out.String())
	return out.String()
}

func TestCLI_ManualLoop(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "doe.db")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", db)
	t.Setenv("LOG_LEVEL", "ERROR")

	surface, err := testkit.Lookup("ridge")
	require.NoError(t, err)
	campaignFile := filepath.Join(dir, "ridge.yaml")
	require.NoError(t, os.WriteFile(campaignFile, []byte(surface.Campaign), 0o644))

	out := run(t, db, "init", campaignFile)
	m := campaignIDPattern.FindStringSubmatch(out)
	require.Len(t, m, 2, out)
	id := m[1]

	designFile := filepath.Join(dir, "runs.xlsx")
	out = run(t, db, "design", id, "--out", designFile)
	assert.Contains(t, out, "screening design")

	// Fill in the response column the way a lab would.
	sheet, err := excel.NewDataReader(designFile, nil).ReadSheet()
	require.NoError(t, err)
	runsDesign, _, err := excel.Split(sheet, []string{"a", "b"}, nil)
	require.NoError(t, err)
	responses, err := testkit.NewSimulator(surface, testkit.DefaultSimulatorConfig()).Respond(runsDesign)
	require.NoError(t, err)
	y, _ := responses.Numeric("y")
	require.NoError(t, sheet.SetNumeric("y", y))
	require.NoError(t, excel.NewDataWriter(designFile, nil).WriteSheet(sheet))

	out = run(t, db, "evaluate", id, designFile)
	assert.Contains(t, out, "iteration 1 (screening)")

	stateFile := filepath.Join(dir, "state.csv")
	out = run(t, db, "status", id, "--state-out", stateFile)
	assert.Contains(t, out, "phase optimization after 1 iterations")
	assert.FileExists(t, stateFile)

	out = run(t, db, "best", id)
	assert.Contains(t, out, "weighted_y")

	out = run(t, db, "list")
	assert.Contains(t, out, id)

	htmlFile := filepath.Join(dir, "report.html")
	run(t, db, "report", id, "--html", htmlFile)
	assert.FileExists(t, htmlFile)
}

func TestCLI_Simulate(t *testing.T) {
	db := filepath.Join(t.TempDir(), "doe.db")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("DATABASE_URL", db)
	t.Setenv("LOG_LEVEL", "ERROR")
	out := run(t, db, "simulate", "--surface", "ridge", "--max-iter", "5")
	assert.Contains(t, out, "iteration 1 (screening)")
	assert.Regexp(t, `\d+ iterations, \d+ runs`, out)
}
