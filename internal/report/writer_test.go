package report

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteArtifact_CreatesDirAndOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out", "vuln_report.md")

	require.NoError(t, WriteArtifact(path, []byte("first")))
	require.NoError(t, WriteArtifact(path, []byte("second")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteArtifact_FailureIsWriteError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// parent is a regular file, so the directory cannot be created
	path := filepath.Join(blocker, "vuln_report.json")
	err := WriteArtifact(path, []byte("{}"))

	var werr *WriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, path, werr.Path)
	assert.Contains(t, err.Error(), path)
}

func TestWrite_RendersThenStores(t *testing.T) {
	path := OutputPath(t.TempDir(), "vuln_report", FormatMarkdown)

	require.NoError(t, Write(path, &MarkdownRenderer{}, fixtureReport(false)))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(got), "### 3.2 SQL injection")
}
