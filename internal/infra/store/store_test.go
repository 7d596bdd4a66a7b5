package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/vibebox/internal/infra/config"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "state"))
	require.NoError(t, err)

	db, err := NewSQLite(filepath.Join(t.TempDir(), "vibebox.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return map[string]Store{
		"memory": NewMemory(),
		"file":   file,
		"sqlite": db,
	}
}

func TestStore_LoadSave(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, ok, err := s.Load(ctx, "dj-state")
			require.NoError(t, err)
			assert.False(t, ok, "absent key should not be found")

			require.NoError(t, s.Save(ctx, "dj-state", []byte(`{"isActive":true}`)))
			data, ok, err := s.Load(ctx, "dj-state")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"isActive":true}`, string(data))

			require.NoError(t, s.Save(ctx, "dj-state", []byte(`{"isActive":false}`)))
			data, ok, err = s.Load(ctx, "dj-state")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.JSONEq(t, `{"isActive":false}`, string(data))

			require.NoError(t, s.Save(ctx, "other", []byte(`[]`)))
			data, _, err = s.Load(ctx, "dj-state")
			require.NoError(t, err)
			assert.JSONEq(t, `{"isActive":false}`, string(data))

			assert.NoError(t, s.Close())
		})
	}
}

func TestStore_InvalidKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "..", "../escape", "a/b", "with space"} {
				err := s.Save(context.Background(), key, []byte("x"))
				assert.True(t, errors.Is(err, ErrInvalidKey), "save %q", key)

				_, _, err = s.Load(context.Background(), key)
				assert.True(t, errors.Is(err, ErrInvalidKey), "load %q", key)
			}
		})
	}
}

func TestMemory_CopiesValues(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, m.Save(ctx, "k", in))
	in[0] = 'z'

	out, _, err := m.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))

	out[0] = 'y'
	again, _, _ := m.Load(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "state")
	ctx := context.Background()

	first, err := NewFile(dir)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "dj-state", []byte(`{"autoQueue":true}`)))

	second, err := NewFile(dir)
	require.NoError(t, err)
	data, ok, err := second.Load(ctx, "dj-state")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"autoQueue":true}`, string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "dj-state.json", entries[0].Name())
}

func TestSQLite_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibebox.db")
	ctx := context.Background()

	first, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Save(ctx, "dj-state", []byte(`{"autoQueue":false}`)))
	require.NoError(t, first.Close())

	second, err := NewSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	data, ok, err := second.Load(ctx, "dj-state")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"autoQueue":false}`, string(data))
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.StoreConfig
		expected any
		wantErr  bool
	}{
		{name: "memory", cfg: config.StoreConfig{Type: "memory"}, expected: &Memory{}},
		{name: "file", cfg: config.StoreConfig{Type: "file", Path: t.TempDir()}, expected: &File{}},
		{name: "sqlite", cfg: config.StoreConfig{Type: "sqlite", Path: filepath.Join(t.TempDir(), "db.sqlite")}, expected: &SQLite{}},
		{name: "unsupported", cfg: config.StoreConfig{Type: "redis"}, wantErr: true},
		{name: "file without path", cfg: config.StoreConfig{Type: "file"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer s.Close()
			assert.IsType(t, tt.expected, s)
		})
	}
}
