package dataset

import (
	"context"
	"iter"
	"slices"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-logr/logr"

	"ztop/kstat"
)

// generation is one sampling cycle's snapshots, iterable in name order.
type generation struct {
	byName map[string]*Snapshot
	names  []string
}

func newGeneration() *generation {
	return &generation{byName: make(map[string]*Snapshot)}
}

func emptyGeneration() *generation {
	g := newGeneration()
	g.seal()
	return g
}

func (g *generation) entry(name string) *Snapshot {
	s, ok := g.byName[name]
	if !ok {
		s = &Snapshot{Name: name}
		g.byName[name] = s
	}
	return s
}

// insert records s. With children set, s is also accumulated into every ancestor,
// creating entries for ancestors that export no counters of their own.
func (g *generation) insert(s Snapshot, children bool) {
	if !children {
		g.byName[s.Name] = &s
		return
	}
	g.entry(s.Name).add(&s)
	for _, a := range Ancestors(s.Name) {
		g.entry(a).Accumulate(&s)
	}
}

func (g *generation) seal() {
	g.names = make([]string, 0, len(g.byName))
	for name := range g.byName {
		g.names = append(g.names, name)
	}
	sort.Strings(g.names)
}

// DataSource owns the current and previous generation of snapshots and derives
// rates between them.
type DataSource struct {
	src    kstat.Source
	clock  Clock
	pools  []string
	logger logr.Logger

	cur, prev     *generation
	curTS, prevTS time.Duration
	sampled       bool // curTS is set
	hasPrev       bool // prevTS is set

	children bool
}

// NewDataSource collects from src, restricted to pools when any are given. Each
// pool is read once per sample however often it is named. Nothing is read until
// the first Refresh.
func NewDataSource(src kstat.Source, clock Clock, pools []string, logger logr.Logger) *DataSource {
	pools = slices.Clone(pools)
	slices.Sort(pools)
	pools = slices.Compact(pools)
	empty := emptyGeneration()
	return &DataSource{
		src:    src,
		clock:  clock,
		pools:  pools,
		logger: logger.WithName("datasource"),
		cur:    empty,
		prev:   empty,
	}
}

// Children reports whether descendants are aggregated into their ancestors.
func (d *DataSource) Children() bool { return d.children }

// SetChildren sets the aggregation mode before the first Refresh.
func (d *DataSource) SetChildren(on bool) { d.children = on }

// Len is the number of datasets in the current generation.
func (d *DataSource) Len() int { return len(d.cur.names) }

// Refresh samples a new generation. On failure the previous state is kept.
func (d *DataSource) Refresh(ctx context.Context) error {
	now, err := d.clock.Now()
	if err != nil {
		return errors.Mark(err, ErrClock)
	}
	gen, err := d.collect(ctx)
	if err != nil {
		return err
	}
	d.prev, d.prevTS, d.hasPrev = d.cur, d.curTS, d.sampled
	d.cur, d.curTS, d.sampled = gen, now, true
	return nil
}

func (d *DataSource) collect(ctx context.Context) (*generation, error) {
	scopes := d.pools
	if len(scopes) == 0 {
		scopes = []string{""}
	}
	gen := newGeneration()
	for _, pool := range scopes {
		stream, err := d.src.Open(ctx, pool)
		if err != nil {
			return nil, err
		}
		asm := Assembler{Strict: stream.Strict, Logger: d.logger}
		for snap, err := range asm.Assemble(stream.Fields) {
			if err != nil {
				return nil, err
			}
			gen.insert(snap, d.children)
		}
	}
	gen.seal()
	return gen, nil
}

// ToggleChildren flips the aggregation mode and resamples. Aggregated and plain
// counters are not comparable, so the previous generation is dropped and the next
// Elements reports rates since boot.
func (d *DataSource) ToggleChildren(ctx context.Context) error {
	d.children = !d.children
	if err := d.Refresh(ctx); err != nil {
		d.children = !d.children
		return err
	}
	d.prev = emptyGeneration()
	d.prevTS, d.hasPrev = 0, false
	return nil
}

// interval returns the seconds the current generation's rates cover and the
// generation to diff against, if any.
func (d *DataSource) interval() (float64, *generation, error) {
	if d.hasPrev {
		if etime := (d.curTS - d.prevTS).Seconds(); etime > 0 {
			return etime, d.prev, nil
		}
	}
	up, err := d.clock.Uptime()
	if err != nil {
		return 0, nil, errors.Mark(err, ErrClock)
	}
	if up <= 0 {
		return 0, nil, errors.Wrapf(ErrClock, "non-positive uptime %s", up)
	}
	return up.Seconds(), nil, nil
}

// Elements derives one Element per current dataset, in name order.
//
// A dataset whose counters went backwards is treated as reset and reported at
// cur/etime. With children aggregated, an ancestor also goes backwards when a
// descendant disappears between samples; its totals are not a reset, so it
// reports zero rates for that interval instead.
func (d *DataSource) Elements() (iter.Seq[Element], error) {
	etime, prev, err := d.interval()
	if err != nil {
		return nil, err
	}
	cur, children := d.cur, d.children
	return func(yield func(Element) bool) {
		for _, name := range cur.names {
			s := cur.byName[name]
			var p *Snapshot
			if prev != nil {
				p = prev.byName[name]
			}
			e := Element{Name: name}
			switch {
			case p != nil && s.regressed(p) && children:
				d.logger.V(1).Info("aggregate went backwards; skipping interval", "dataset", name)
			case p != nil && s.regressed(p):
				d.logger.V(1).Info("counters went backwards; treating as reset", "dataset", name)
				e = compute(s, nil, etime)
			default:
				e = compute(s, p, etime)
			}
			if !yield(e) {
				return
			}
		}
	}, nil
}
