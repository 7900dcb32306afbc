// Package view holds the interactive display state of a session and turns the
// current dataset rates into the rows to draw.
package view

import (
	"cmp"
	"context"
	"iter"
	"math"
	"regexp"
	"slices"

	"ztop/dataset"
)

// Source is the rate provider behind a State.
type Source interface {
	Refresh(ctx context.Context) error
	Elements() (iter.Seq[dataset.Element], error)
	ToggleChildren(ctx context.Context) error
	Children() bool
}

// Options seeds a State from the command line and config file.
type Options struct {
	Auto    bool
	Depth   int // 0 means unlimited
	Filter  *regexp.Regexp
	Reverse bool
	Sort    Column
}

// AutoThreshold is the combined bytes/s at or below which auto mode hides a dataset.
const AutoThreshold = 1.0

// State is the interactive session state. It is not safe for concurrent use.
type State struct {
	src Source

	auto    bool
	depth   int
	filter  *regexp.Regexp
	reverse bool
	sort    Column
	quit    bool
}

func New(src Source, opts Options) *State {
	return &State{
		src:     src,
		auto:    opts.Auto,
		depth:   max(opts.Depth, 0),
		filter:  opts.Filter,
		reverse: opts.Reverse,
		sort:    opts.Sort,
	}
}

func (s *State) Auto() bool             { return s.auto }
func (s *State) Children() bool         { return s.src.Children() }
func (s *State) Depth() int             { return s.depth }
func (s *State) Filter() *regexp.Regexp { return s.filter }
func (s *State) Reverse() bool          { return s.reverse }
func (s *State) Sort() Column           { return s.sort }
func (s *State) Quitting() bool         { return s.quit }

// Elements returns the rows to display: depth, name and idle filters applied in
// that order, then sorted when a sort column is selected.
func (s *State) Elements() ([]dataset.Element, error) {
	seq, err := s.src.Elements()
	if err != nil {
		return nil, err
	}
	var rows []dataset.Element
	for e := range seq {
		if s.depth > 0 && dataset.Depth(e.Name) > s.depth {
			continue
		}
		if s.filter != nil && !s.filter.MatchString(e.Name) {
			continue
		}
		if s.auto && e.Busy() <= AutoThreshold {
			continue
		}
		rows = append(rows, e)
	}
	if s.sort != NoColumn {
		less := compareBy(s.sort)
		if s.reverse {
			slices.SortStableFunc(rows, func(a, b dataset.Element) int { return less(b, a) })
		} else {
			slices.SortStableFunc(rows, less)
		}
	}
	return rows, nil
}

func compareBy(c Column) func(a, b dataset.Element) int {
	var key func(dataset.Element) float64
	switch c {
	case ReadOps:
		key = func(e dataset.Element) float64 { return e.ReadOps }
	case ReadBytes:
		key = func(e dataset.Element) float64 { return e.ReadBytes }
	case WriteOps:
		key = func(e dataset.Element) float64 { return e.WriteOps }
	case WriteBytes:
		key = func(e dataset.Element) float64 { return e.WriteBytes }
	case DeleteOps:
		key = func(e dataset.Element) float64 { return e.DeleteOps }
	case DeleteBytes:
		key = func(e dataset.Element) float64 { return e.DeleteBytes }
	default:
		return func(a, b dataset.Element) int { return cmp.Compare(a.Name, b.Name) }
	}
	return func(a, b dataset.Element) int {
		return cmp.Compare(totalOrder(key(a)), totalOrder(key(b)))
	}
}

// totalOrder maps f to an integer whose ordering is IEEE 754 totalOrder:
// -NaN < -Inf < ... < -0 < +0 < ... < +Inf < +NaN.
func totalOrder(f float64) int64 {
	b := int64(math.Float64bits(f))
	return b ^ int64(uint64(b>>63)>>1)
}

// Refresh samples new rates from the source.
func (s *State) Refresh(ctx context.Context) error {
	return s.src.Refresh(ctx)
}

func (s *State) ToggleAuto() {
	if s.quit {
		return
	}
	s.auto = !s.auto
}

// IncDepth shows one more level of the hierarchy; from unlimited it starts at 1.
func (s *State) IncDepth() {
	if s.quit {
		return
	}
	s.depth++
}

// DecDepth shows one level less; going below 1 means unlimited.
func (s *State) DecDepth() {
	if s.quit || s.depth == 0 {
		return
	}
	s.depth--
}

// NextSort cycles through the columns and then back to unsorted.
func (s *State) NextSort() {
	if s.quit {
		return
	}
	s.sort = (s.sort + 1) % (Name + 1)
}

// PrevSort is NextSort in the other direction.
func (s *State) PrevSort() {
	if s.quit {
		return
	}
	s.sort = (s.sort + Name) % (Name + 1)
}

func (s *State) ToggleReverse() {
	if s.quit {
		return
	}
	s.reverse = !s.reverse
}

// SetFilter shows only datasets whose name matches re.
func (s *State) SetFilter(re *regexp.Regexp) {
	if s.quit {
		return
	}
	s.filter = re
}

func (s *State) ClearFilter() {
	if s.quit {
		return
	}
	s.filter = nil
}

// ToggleChildren switches child aggregation in the source. The source resamples,
// so this may fail the same way Refresh does.
func (s *State) ToggleChildren(ctx context.Context) error {
	if s.quit {
		return nil
	}
	return s.src.ToggleChildren(ctx)
}

// Quit ends the session. Every later mutation is ignored.
func (s *State) Quit() { s.quit = true }
