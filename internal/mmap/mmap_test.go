//go:build unix

package mmap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapping_ReadWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 4096), 0o600))

	m, err := OpenFile(path)
	require.NoError(t, err)
	defer m.Close()

	require.Equal(t, 4096, m.Size())

	data := m.Bytes()
	data[0] = 0xAB
	data[4095] = 0xCD
	require.NoError(t, m.Sync())

	// Changes must be visible through plain file reads.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), raw[0])
	require.Equal(t, byte(0xCD), raw[4095])
}

func TestMapping_WriteAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 64), 0o600))

	m, err := OpenFile(path)
	require.NoError(t, err)
	defer m.Close()

	n, err := m.WriteAt([]byte{1, 2, 3, 4}, 8)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	// Descriptor writes are coherent with the mapping.
	require.Equal(t, []byte{1, 2, 3, 4}, m.Bytes()[8:12])

	_, err = m.WriteAt([]byte{1}, 64)
	require.ErrorIs(t, err, ErrInvalidOffset)
	_, err = m.WriteAt([]byte{1}, -1)
	require.ErrorIs(t, err, ErrInvalidOffset)
}

func TestMapping_Close(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 16), 0o600))

	m, err := OpenFile(path)
	require.NoError(t, err)

	require.NoError(t, m.Close())
	require.NoError(t, m.Close()) // idempotent

	require.Nil(t, m.Bytes())
	require.ErrorIs(t, m.Sync(), ErrClosed)
	_, err = m.WriteAt([]byte{1}, 0)
	require.ErrorIs(t, err, ErrClosed)
}

func TestOpenFile_Errors(t *testing.T) {
	_, err := OpenFile(filepath.Join(t.TempDir(), "missing.bin"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.bin")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = OpenFile(empty)
	require.ErrorIs(t, err, ErrInvalidSize)
}
