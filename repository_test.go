package fleetctl

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/renameio/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout(t *testing.T) Layout {
	t.Helper()

	root := t.TempDir()
	l := DefaultLayout("fleetd")
	l.ConfigDir = filepath.Join(root, "etc")
	l.PIDDir = filepath.Join(root, "run")
	l.LockDir = filepath.Join(root, "lock")
	return l
}

func writeFixture(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := renameio.WriteFile(path, []byte(content), 0o640); err != nil {
		t.Fatal(err)
	}
}

func TestFSRepositoryListUnion(t *testing.T) {
	l := testLayout(t)
	writeFixture(t, l.ConfigPath("a1"), "")
	writeFixture(t, l.ConfigPath("a2"), "")
	writeFixture(t, l.PIDPath("a2"), "100\n")
	writeFixture(t, l.PIDPath("a3"), "101\n")
	writeFixture(t, filepath.Join(l.ConfigDir, "README"), "not an instance")
	require.NoError(t, os.MkdirAll(filepath.Join(l.ConfigDir, "fleetd-dir.conf"), 0o755))

	ids, err := NewFSRepository(l).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids)
}

func TestFSRepositoryListMissingDirs(t *testing.T) {
	ids, err := NewFSRepository(testLayout(t)).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFSRepositoryReadPID(t *testing.T) {
	l := testLayout(t)
	repo := NewFSRepository(l)

	_, err := repo.ReadPID("a1")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	writeFixture(t, l.PIDPath("a1"), "4321\n")
	pid, err := repo.ReadPID("a1")
	require.NoError(t, err)
	assert.Equal(t, 4321, pid)

	writeFixture(t, l.PIDPath("a2"), "")
	_, err = repo.ReadPID("a2")
	assert.ErrorIs(t, err, ErrCorruptPidFile)
}

func TestFSRepositoryRemovePID(t *testing.T) {
	l := testLayout(t)
	repo := NewFSRepository(l)
	writeFixture(t, l.PIDPath("a1"), "1\n")

	require.NoError(t, repo.RemovePID("a1"))
	_, err := os.Stat(l.PIDPath("a1"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	assert.NoError(t, repo.RemovePID("a1"), "removing a missing pid file is not an error")
}

func TestFSRepositoryEnablement(t *testing.T) {
	l := testLayout(t)
	repo := NewFSRepository(l)
	path := l.ConfigPath("a1")
	writeFixture(t, path, "port = 7000\n")

	enabled, err := repo.ReadEnabled("a1")
	require.NoError(t, err)
	assert.True(t, enabled)

	changed, err := repo.WriteEnabled("a1", false)
	require.NoError(t, err)
	assert.True(t, changed)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "port = 7000\n"+DisableMarker+"\n", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm(), "rewrite must keep permissions")

	changed, err = repo.WriteEnabled("a1", false)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = repo.WriteEnabled("a1", true)
	require.NoError(t, err)
	assert.True(t, changed)

	enabled, err = repo.ReadEnabled("a1")
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestFSRepositoryUnknownConfig(t *testing.T) {
	repo := NewFSRepository(testLayout(t))

	_, err := repo.ReadEnabled("zz")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.WriteEnabled("zz", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	repo.SetConfig("a1", "")
	repo.SetConfig("a2", "")
	repo.SetPIDFile("a2", "12")
	repo.SetPIDFile("a3", "garbage")

	ids, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "a3"}, ids)

	_, err = repo.ReadPID("a1")
	assert.ErrorIs(t, err, fs.ErrNotExist)

	pid, err := repo.ReadPID("a2")
	require.NoError(t, err)
	assert.Equal(t, 12, pid)

	_, err = repo.ReadPID("a3")
	assert.ErrorIs(t, err, ErrCorruptPidFile)

	changed, err := repo.WriteEnabled("a1", false)
	require.NoError(t, err)
	assert.True(t, changed)
	content, _ := repo.Config("a1")
	assert.Equal(t, DisableMarker+"\n", content)

	_, err = repo.WriteEnabled("zz", false)
	assert.ErrorIs(t, err, ErrNotFound)
}
