package dataset

import (
	"iter"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"ztop/kstat"
)

// ErrMalformedRecord marks a counter group that ended without every required field.
var ErrMalformedRecord = errors.New("malformed dataset record")

// builder accumulates the fields of one objset until its session key changes.
type builder struct {
	key                            string
	name                           *string
	nread, reads, nwritten, writes *uint64
	nunlinked, nunlinks            *uint64
}

func (b *builder) set(field string, v kstat.Value) bool {
	if field == "dataset_name" {
		s, ok := v.Str()
		if !ok {
			return false
		}
		b.name = &s
		return true
	}
	n, ok := v.Num()
	if !ok {
		return false
	}
	switch field {
	case "nread":
		b.nread = &n
	case "reads":
		b.reads = &n
	case "nwritten":
		b.nwritten = &n
	case "writes":
		b.writes = &n
	case "nunlinked":
		b.nunlinked = &n
	case "nunlinks":
		b.nunlinks = &n
	default:
		return false
	}
	return true
}

// tryFinish produces the Snapshot, or ErrMalformedRecord naming what is missing.
// nunlinked and nunlinks are absent on older kernels and default to zero.
func (b *builder) tryFinish() (Snapshot, error) {
	var missing []string
	if b.name == nil {
		missing = append(missing, "dataset_name")
	}
	for _, req := range []struct {
		name string
		v    *uint64
	}{{"nread", b.nread}, {"reads", b.reads}, {"nwritten", b.nwritten}, {"writes", b.writes}} {
		if req.v == nil {
			missing = append(missing, req.name)
		}
	}
	if len(missing) > 0 {
		return Snapshot{}, errors.Wrapf(ErrMalformedRecord, "%s: missing %s",
			b.key, strings.Join(missing, ", "))
	}
	return Snapshot{
		Name:      *b.name,
		Nread:     *b.nread,
		Reads:     *b.reads,
		Nwritten:  *b.nwritten,
		Writes:    *b.writes,
		Nunlinked: valueOr(b.nunlinked),
		Nunlinks:  valueOr(b.nunlinks),
	}, nil
}

func valueOr(p *uint64) uint64 {
	if p == nil {
		return 0
	}
	return *p
}

// Assembler groups raw counter fields into Snapshots.
//
// Fields of one objset share a session key but may arrive in any order. A change of
// key finishes the current record. In strict mode an incomplete record is yielded
// as an error; otherwise it is logged and skipped.
type Assembler struct {
	Strict bool
	Logger logr.Logger
}

// Assemble consumes fields lazily. The returned sequence is single-use and stops
// after the first error.
func (a Assembler) Assemble(fields iter.Seq2[kstat.Field, error]) iter.Seq2[Snapshot, error] {
	return func(yield func(Snapshot, error) bool) {
		var cur *builder
		finish := func() bool {
			if cur == nil {
				return true
			}
			snap, err := cur.tryFinish()
			if err != nil {
				if a.Strict {
					yield(Snapshot{}, err)
					return false
				}
				a.Logger.V(1).Info("skipping incomplete record", "key", cur.key, "reason", err.Error())
				return true
			}
			return yield(snap, nil)
		}

		for f, err := range fields {
			if err != nil {
				yield(Snapshot{}, err)
				return
			}
			key, field := f.Split()
			if cur == nil || cur.key != key {
				if !finish() {
					return
				}
				cur = &builder{key: key}
			}
			if !cur.set(field, f.Value) {
				a.Logger.V(1).Info("unknown counter", "name", f.Name, "kind", f.Value.Kind().String())
			}
		}
		finish()
	}
}
