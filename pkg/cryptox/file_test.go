package cryptox

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadOrCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "secret")

	calls := 0
	gen := func() ([]byte, error) {
		calls++
		return []byte("generated"), nil
	}

	data, err := LoadOrCreateFile(path, gen)
	require.NoError(t, err)
	require.Equal(t, "generated", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err = LoadOrCreateFile(path, gen)
	require.NoError(t, err)
	require.Equal(t, "generated", string(data))
	require.Equal(t, 1, calls)
}

func TestLoadOrCreateFile_GeneratorError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret")
	boom := errors.New("boom")

	_, err := LoadOrCreateFile(path, func() ([]byte, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
