package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkuze-health/merkuze/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [file|glob]...", ingestCmd.Use)
	assert.NotNil(t, ingestCmd.Flags().Lookup("collection"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("retire-stale"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("json"))
	assert.NotNil(t, ingestCmd.Flags().Lookup("dry-run"))
}

func TestIngestCmd_RequiresArgs(t *testing.T) {
	_, err := runCommand("ingest")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestIngestCmd_NotConfigured(t *testing.T) {
	_, err := runCommand("ingest", "kb.json")

	assert.EqualError(t, err, "extractor not configured")
}

func TestIngestCmd_IngestsFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "hospital.kb", "hospital_info=General Hospital\ndept-0=Cardiology\n")

	out, err := runCommand("ingest", path, "--collection", "staging", "--retire-stale")

	require.NoError(t, err)
	assert.Contains(t, out, "hospital.kb: 2 chunks")
	assert.Contains(t, out, "Collection: merkuze-hospital-d384")
	assert.Contains(t, out, "Ingested 2 of 2 chunks")
	assert.NotContains(t, out, "Failed")

	require.Len(t, mocks.ingestion.chunks, 2)
	assert.Equal(t, "hospital_info", mocks.ingestion.chunks[0].ID)
	assert.Equal(t, "staging", mocks.ingestion.opts.Collection)
	assert.True(t, mocks.ingestion.opts.RetireStale)
	assert.NotNil(t, mocks.ingestion.opts.Progress)
}

func TestIngestCmd_GlobAcrossFiles(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	writeFile(t, dir, "a.kb", "dept-0=Cardiology\n")
	writeFile(t, dir, "nested/b.kb", "dept-1=Radiology\n")
	writeFile(t, dir, "notes.txt", "ignored=yes\n")

	out, err := runCommand("ingest", filepath.Join(dir, "**", "*.kb"))

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 2 of 2 chunks")
	require.Len(t, mocks.ingestion.chunks, 2)
	assert.Equal(t, "dept-0", mocks.ingestion.chunks[0].ID)
	assert.Equal(t, "dept-1", mocks.ingestion.chunks[1].ID)
}

func TestIngestCmd_ChunkFailuresDoNotFail(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.ingestion.fail = map[string]string{"dept-1": "embedding unavailable"}

	path := writeFile(t, t.TempDir(), "kb.kb", "dept-0=Cardiology\ndept-1=Radiology\n")

	out, err := runCommand("ingest", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Ingested 1 of 2 chunks")
	assert.Contains(t, out, "Failed (1):")
	assert.Contains(t, out, "dept-1: embedding unavailable")
}

func TestIngestCmd_JobFailure(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	mocks.ingestion.err = domain.ErrVectorIndexUnavailable

	path := writeFile(t, t.TempDir(), "kb.kb", "dept-0=Cardiology\n")

	_, err := runCommand("ingest", path)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
}

func TestIngestCmd_SchemaErrorAbortsBeforeIngest(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	good := writeFile(t, dir, "a.kb", "dept-0=Cardiology\n")
	bad := writeFile(t, dir, "b.kb", "bad input")

	_, err := runCommand("ingest", good, bad)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema error")
	assert.Nil(t, mocks.ingestion.chunks, "nothing ingested")
}

func TestIngestCmd_NoMatch(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := runCommand("ingest", filepath.Join(t.TempDir(), "*.json"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files match")
}

func TestIngestCmd_DryRun(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "kb.kb", "dept-0=Cardiology\ndept-1=Radiology\n")

	out, err := runCommand("ingest", path, "--dry-run")

	require.NoError(t, err)
	assert.Contains(t, out, "Extracted 2 chunks from 1 files")
	assert.Nil(t, mocks.ingestion.chunks)
}

func TestIngestCmd_JSON(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := writeFile(t, t.TempDir(), "kb.kb", "dept-0=Cardiology\n")

	out, err := runCommand("ingest", path, "--json")
	require.NoError(t, err)

	var report domain.IngestionReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"dept-0"}, report.Succeeded)
	assert.Nil(t, mocks.ingestion.opts.Progress, "no progress bar with --json")
}

func TestExpandPaths_Deduplicates(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", "{}")
	writeFile(t, dir, "b.json", "{}")

	files, err := expandPaths([]string{a, filepath.Join(dir, "*.json")})

	require.NoError(t, err)
	assert.Equal(t, []string{a, filepath.Join(dir, "b.json")}, files)
}

func TestExpandPaths_SkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0o755))

	_, err := expandPaths([]string{filepath.Join(dir, "*.json")})

	assert.Error(t, err)
}

func TestExpandPaths_BadPattern(t *testing.T) {
	_, err := expandPaths([]string{"[unclosed"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, os.ErrNotExist))
}
