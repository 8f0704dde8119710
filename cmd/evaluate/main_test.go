package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/ats-evaluator/internal/models"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFactsCommand(t *testing.T) {
	jd := writeTemp(t, "jd.txt", "Go engineer with 2-4 years of experience")
	resume := writeTemp(t, "resume.txt", "Jane Doe\nGo engineer")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"facts", "--jd", jd, "--resume", resume})
	require.NoError(t, rootCmd.Execute())

	var facts models.FactRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &facts))
	assert.Equal(t, "Jane Doe", facts.Name())
	assert.Equal(t, 4, facts.Years())
	assert.Greater(t, facts.Score(), 0.0)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())

	assert.Equal(t, "dev\n", out.String())
}

func TestReadInputsMissingFile(t *testing.T) {
	_, err := readInputs(filepath.Join(t.TempDir(), "missing.txt"), "resume.txt")
	assert.ErrorContains(t, err, "read job description")
}
