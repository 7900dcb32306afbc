package kstat

import (
	"context"
	"os/exec"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSysctl = `kstat.zfs.tank.misc.state=ONLINE
kstat.zfs.tank.txgs.0=17
kstat.zfs.tank.dataset.objset-0x58c.nunlinked=5
kstat.zfs.tank.dataset.objset-0x58c.nunlinks=6
kstat.zfs.tank.dataset.objset-0x58c.nread=1
kstat.zfs.tank.dataset.objset-0x58c.reads=2
kstat.zfs.tank.dataset.objset-0x58c.nwritten=3
kstat.zfs.tank.dataset.objset-0x58c.writes=4
kstat.zfs.tank.dataset.objset-0x58c.dataset_name=tank/foo
kstat.zfs.misc.arcstats.hits=99
`

func fixedRunner(out string, err error, seen *string) SysctlRunner {
	return func(_ context.Context, oid string) ([]byte, error) {
		if seen != nil {
			*seen = oid
		}
		return []byte(out), err
	}
}

func TestSysctlSourceFiltersDatasetOIDs(t *testing.T) {
	var oid string
	src := NewSysctlSource(fixedRunner(sampleSysctl, nil, &oid), logr.Discard())
	stream, err := src.Open(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, stream.Strict)
	assert.Equal(t, "kstat.zfs", oid)

	fields := collect(t, stream)
	require.Len(t, fields, 7)
	assert.Equal(t, "kstat.zfs.tank.dataset.objset-0x58c.nunlinked", fields[0].Name)
	assert.Equal(t, Uint64(5), fields[0].Value)
	assert.Equal(t, String("tank/foo"), fields[6].Value)
}

func TestSysctlSourcePoolOID(t *testing.T) {
	var oid string
	src := NewSysctlSource(fixedRunner("", nil, &oid), logr.Discard())
	stream, err := src.Open(context.Background(), "my.pool")
	require.NoError(t, err)
	assert.Equal(t, "kstat.zfs.my%25pool.dataset", oid)
	assert.Empty(t, collect(t, stream))
}

func TestSysctlSourceErrors(t *testing.T) {
	exitErr := &exec.ExitError{}

	_, err := NewSysctlSource(fixedRunner("", exitErr, nil), logr.Discard()).
		Open(context.Background(), "nosuchpool")
	assert.True(t, errors.Is(err, ErrPoolNotFound))

	_, err = NewSysctlSource(fixedRunner("", exitErr, nil), logr.Discard()).
		Open(context.Background(), "")
	assert.True(t, errors.Is(err, ErrUnavailable))

	_, err = NewSysctlSource(fixedRunner("", exec.ErrNotFound, nil), logr.Discard()).
		Open(context.Background(), "tank")
	assert.True(t, errors.Is(err, ErrUnavailable))
}
