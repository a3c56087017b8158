package cache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)
	return s
}

func TestFileStore_WriteRead(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Write(ctx, "secret-paths.deny.json", []byte(`[".env"]`)))

	data, err := s.Read(ctx, "secret-paths.deny.json")
	require.NoError(t, err)
	assert.Equal(t, `[".env"]`, string(data))

	mt, err := s.ModTime(ctx, "secret-paths.deny.json")
	require.NoError(t, err)
	assert.False(t, mt.IsZero())
}

func TestFileStore_DirPermissions(t *testing.T) {
	s := newTestStore(t)
	info, err := os.Stat(s.Dir())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestFileStore_ReadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Read(context.Background(), "absent.json")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ModTime(context.Background(), "absent.json")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_InvalidKeys(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for _, key := range []string{"", ".", "..", "../escape.json", "a/b.json", `a\b.json`} {
		err := s.Write(ctx, key, []byte("x"))
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestFileStore_OverwriteLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Write(ctx, "a.json", []byte(strings.Repeat("x", i+1))))
	}

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

func TestFileStore_ConcurrentWritersNeverExposePartialData(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	small := []byte(`["a"]`)
	large := []byte(`["` + strings.Repeat("b", 64*1024) + `"]`)
	require.NoError(t, s.Write(ctx, "k.json", small))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			payload := small
			if i%2 == 0 {
				payload = large
			}
			_ = s.Write(ctx, "k.json", payload)
		}(i)
	}
	for i := 0; i < 50; i++ {
		data, err := s.Read(ctx, "k.json")
		require.NoError(t, err)
		assert.True(t, string(data) == string(small) || string(data) == string(large), "partial read of %d bytes", len(data))
	}
	wg.Wait()
}

func TestFileStore_DeleteAndList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, s.Write(ctx, "b.json", []byte("[]")))
	require.NoError(t, s.Write(ctx, "a.json", []byte("[]")))
	require.NoError(t, os.MkdirAll(filepath.Join(s.Dir(), "exemptions"), 0o700))

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.json", "b.json"}, keys)

	require.NoError(t, s.Delete(ctx, "a.json"))
	assert.ErrorIs(t, s.Delete(ctx, "a.json"), ErrNotFound)
}

func TestNewFileStore_RejectsSymlink(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "real")
	require.NoError(t, os.MkdirAll(target, 0o700))
	link := filepath.Join(base, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := NewFileStore(link)
	assert.ErrorIs(t, err, ErrUnsafeDir)
}
