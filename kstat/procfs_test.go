package kstat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, s Stream) []Field {
	t.Helper()
	var out []Field
	for f, err := range s.Fields {
		require.NoError(t, err)
		out = append(out, f)
	}
	return out
}

func TestProcfsSourceOnePool(t *testing.T) {
	src := NewProcfsSource("testdata/zfs", logr.Discard())
	stream, err := src.Open(context.Background(), "tank")
	require.NoError(t, err)
	assert.True(t, stream.Strict)

	fields := collect(t, stream)
	// five objsets with seven rows each; txgs is not an objset
	assert.Len(t, fields, 35)

	names := make(map[string]string)
	for _, f := range fields {
		key, field := f.Split()
		if field == "dataset_name" {
			s, ok := f.Value.Str()
			require.True(t, ok)
			names[key] = s
		}
	}
	assert.Equal(t, "tank/vm/chimera", names["tank/objset-0x103"])
	assert.Equal(t, "tank", names["tank/objset-0x36"])
}

func TestProcfsSourceValues(t *testing.T) {
	src := NewProcfsSource("testdata/zfs", logr.Discard())
	stream, err := src.Open(context.Background(), "backup")
	require.NoError(t, err)

	got := make(map[string]Value)
	for _, f := range collect(t, stream) {
		got[f.Name] = f.Value
	}
	assert.Equal(t, String("backup"), got["backup/objset-0x36.dataset_name"])
	assert.Equal(t, Uint64(40), got["backup/objset-0x36.nread"])
	assert.Equal(t, Uint64(10), got["backup/objset-0x36.writes"])
}

func TestProcfsSourceAllPools(t *testing.T) {
	src := NewProcfsSource("testdata/zfs", logr.Discard())
	stream, err := src.Open(context.Background(), "")
	require.NoError(t, err)
	fields := collect(t, stream)
	assert.Len(t, fields, 42)
	// pools are walked in directory order
	assert.Equal(t, "backup/objset-0x36.dataset_name", fields[0].Name)
}

func TestProcfsSourceMissingPool(t *testing.T) {
	src := NewProcfsSource("testdata/zfs", logr.Discard())
	_, err := src.Open(context.Background(), "nosuchpool")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPoolNotFound))
	assert.NotEmpty(t, errors.GetAllHints(err))
}

func TestProcfsSourceNamedPoolWithoutObjsets(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "tank"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "tank", "txgs"), []byte("txg\n"), 0o644))

	src := NewProcfsSource(root, logr.Discard())
	_, err := src.Open(context.Background(), "tank")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPoolNotFound))

	stream, err := src.Open(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, collect(t, stream))
}

func TestProcfsSourceUnavailable(t *testing.T) {
	src := NewProcfsSource(t.TempDir()+"/missing", logr.Discard())
	_, err := src.Open(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestProcfsSourceEmptyRoot(t *testing.T) {
	src := NewProcfsSource(t.TempDir(), logr.Discard())
	stream, err := src.Open(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, collect(t, stream))
}

func TestProcfsSourceCancelled(t *testing.T) {
	src := NewProcfsSource("testdata/zfs", logr.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	stream, err := src.Open(ctx, "tank")
	require.NoError(t, err)
	cancel()
	var gotErr error
	for _, err := range stream.Fields {
		gotErr = err
	}
	assert.ErrorIs(t, gotErr, context.Canceled)
}

func TestFieldSplit(t *testing.T) {
	key, field := Field{Name: "kstat.zfs.my.pool.dataset.objset-0x58c.nread"}.Split()
	assert.Equal(t, "kstat.zfs.my.pool.dataset.objset-0x58c", key)
	assert.Equal(t, "nread", field)

	key, field = Field{Name: "nread"}.Split()
	assert.Equal(t, "", key)
	assert.Equal(t, "nread", field)
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, Uint64(17), parseValue("reads", "17"))
	assert.Equal(t, String("1234"), parseValue("dataset_name", "1234"))
	assert.Equal(t, String("abc"), parseValue("reads", "abc"))
	assert.Equal(t, KindInvalid, Value{}.Kind())
}
