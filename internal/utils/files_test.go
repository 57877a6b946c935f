package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports", "nested")
	require.NoError(t, EnsureDir(dir))

	path := filepath.Join(dir, "analyzed_data.csv.csv")
	require.NoError(t, SafeWriteFile(path, []byte("a,b\n1,2")))
	require.NoError(t, SafeWriteFile(path, []byte("a\n1")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1", string(got))
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestSafeWriteFile_MissingDir(t *testing.T) {
	err := SafeWriteFile(filepath.Join(t.TempDir(), "missing", "x.csv"), []byte("x"))
	assert.ErrorContains(t, err, "write temp file")
}

func TestPrettyJSON(t *testing.T) {
	b, err := PrettyJSON(map[string]int{"rows": 2})
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"rows\": 2\n}", string(b))

	_, err = PrettyJSON(make(chan int))
	assert.Error(t, err)
}
