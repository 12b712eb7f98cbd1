package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadsearch/loadsearch/internal/query"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	t.Setenv("LOADSEARCH_DATA", t.TempDir())
	dataDirFlag = ""
	debugMode = false

	docs := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(docs, "rapor.txt"),
		[]byte("yıllık bütçe raporu hazırlandı"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(docs, "plan.md"),
		[]byte("tatil planı ve bütçe"), 0o644))
	return docs
}

func TestIndexWithoutFoldersFails(t *testing.T) {
	setupEnv(t)

	_, err := execute(t, "index")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no folders configured")
}

func TestEndToEndIndexAndSearch(t *testing.T) {
	docs := setupEnv(t)

	out, err := execute(t, "config", "add-folder", docs)
	require.NoError(t, err)
	assert.Contains(t, out, "Added")

	out, err = execute(t, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "indexed: 2")

	out, err = execute(t, "search", "bütçe", "--format", "json")
	require.NoError(t, err)

	var resp query.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Total)

	out, err = execute(t, "search", "raporu", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "rapor.txt")
}

func TestSearchIncrementalAfterChange(t *testing.T) {
	docs := setupEnv(t)

	_, err := execute(t, "config", "add-folder", docs)
	require.NoError(t, err)
	_, err = execute(t, "index")
	require.NoError(t, err)

	out, err := execute(t, "index")
	require.NoError(t, err)
	assert.Contains(t, out, "skipped: 2")
}

func TestStatusShowsIndexCounts(t *testing.T) {
	docs := setupEnv(t)

	_, err := execute(t, "config", "add-folder", docs)
	require.NoError(t, err)
	_, err = execute(t, "index")
	require.NoError(t, err)

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "2 documents")
	assert.Contains(t, out, docs)
}

func TestConfigShowAndRemoveFolder(t *testing.T) {
	docs := setupEnv(t)

	_, err := execute(t, "config", "add-folder", docs)
	require.NoError(t, err)

	out, err := execute(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, docs)

	_, err = execute(t, "config", "remove-folder", docs)
	require.NoError(t, err)

	out, err = execute(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, docs)

	_, err = execute(t, "config", "remove-folder", docs)
	require.Error(t, err)
}
