package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatingWriter_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "test.log")

	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)

	_, err = w.Write([]byte("hello log\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello log\n", string(data))
}

func TestRotatingWriter_RotatesAtSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	w, err := NewRotatingWriter(path, 1, 3)
	require.NoError(t, err)
	// Force the limit low so a couple of writes trigger rotation.
	w.maxSize = 64

	line := strings.Repeat("x", 40) + "\n"
	for i := 0; i < 4; i++ {
		_, err = w.Write([]byte(line))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	_, err = os.Stat(path + ".1")
	assert.NoError(t, err, "rotated file should exist")
	assert.NotEmpty(t, RotatedFiles(path))
}

func TestRotatingWriter_KeepsAtMostMaxFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")

	w, err := NewRotatingWriter(path, 1, 2)
	require.NoError(t, err)
	w.maxSize = 16

	for i := 0; i < 10; i++ {
		_, err = w.Write([]byte(strings.Repeat("y", 12) + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	files := RotatedFiles(path)
	assert.LessOrEqual(t, len(files), 2)
}

func TestSetup_StderrOnly(t *testing.T) {
	cleanup, err := Setup(Config{Level: "debug"})
	require.NoError(t, err)
	cleanup()
}
