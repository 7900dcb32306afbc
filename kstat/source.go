// Package kstat reads the raw per-objset ZFS counters the kernel exports and hands
// them out as an unordered stream of qualified (name, value) fields.
package kstat

import (
	"context"
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrUnavailable means the ZFS counter subsystem could not be found at all.
	ErrUnavailable = errors.New("zfs statistics unavailable")
	// ErrPoolNotFound means a requested pool exports no statistics.
	ErrPoolNotFound = errors.New("pool statistics not found")
)

// Field is one raw counter. Name is qualified: everything before the last '.' is the
// session key identifying the objset instance (pool included), the rest is the
// field name.
type Field struct {
	Name  string
	Value Value
}

// Split separates the session key from the field name.
func (f Field) Split() (key, field string) {
	i := strings.LastIndexByte(f.Name, '.')
	if i < 0 {
		return "", f.Name
	}
	return f.Name[:i], f.Name[i+1:]
}

// Stream is one independent pass over the counters of a pool (or of every pool).
type Stream struct {
	Fields iter.Seq2[Field, error]
	// Strict is set when every objset is a self-contained block, so an incomplete
	// record is malformed input rather than a field probed separately.
	Strict bool
}

// Source opens counter streams. An empty pool means every pool.
type Source interface {
	Open(ctx context.Context, pool string) (Stream, error)
}

func poolNotFound(pool string) error {
	return errors.WithHint(
		errors.Wrapf(ErrPoolNotFound, "pool %q", pool),
		"check the pool name with `zpool list`")
}

func unavailable(cause error) error {
	err := ErrUnavailable
	if cause != nil {
		err = errors.Mark(errors.Wrap(cause, ErrUnavailable.Error()), ErrUnavailable)
	}
	return errors.WithHint(err, "is the ZFS kernel module loaded?")
}
