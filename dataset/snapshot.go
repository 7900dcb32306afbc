// Package dataset turns raw ZFS counters into per-dataset snapshots and derives
// per-second rates between two generations of them.
package dataset

import (
	"fmt"
	"strings"
)

// Snapshot is one dataset's cumulative counters at one sampling instant. The
// fields are not read atomically, but ought to be close.
type Snapshot struct {
	Name string
	// Bytes and operations read.
	Nread, Reads uint64
	// Bytes and operations written.
	Nwritten, Writes uint64
	// Bytes and operations freed by unlink. Zero on kernels that lack them.
	Nunlinked, Nunlinks uint64
}

func (s *Snapshot) add(o *Snapshot) {
	s.Nread += o.Nread
	s.Reads += o.Reads
	s.Nwritten += o.Nwritten
	s.Writes += o.Writes
	s.Nunlinked += o.Nunlinked
	s.Nunlinks += o.Nunlinks
}

// Accumulate adds a descendant's counters into s. child must live strictly below s
// in the dataset hierarchy; anything else is a caller bug.
func (s *Snapshot) Accumulate(child *Snapshot) {
	if !IsAncestor(s.Name, child.Name) {
		panic(fmt.Sprintf("dataset: %q is not an ancestor of %q", s.Name, child.Name))
	}
	s.add(child)
}

// regressed reports whether any counter went backwards since prev, which happens
// when a dataset is remounted and the kernel restarts its counters.
func (s *Snapshot) regressed(prev *Snapshot) bool {
	return s.Nread < prev.Nread || s.Reads < prev.Reads ||
		s.Nwritten < prev.Nwritten || s.Writes < prev.Writes ||
		s.Nunlinked < prev.Nunlinked || s.Nunlinks < prev.Nunlinks
}

// IsAncestor reports whether name is a strict path prefix of child.
func IsAncestor(name, child string) bool {
	return len(child) > len(name) && strings.HasPrefix(child, name) && child[len(name)] == '/'
}

// Ancestors returns the strict ancestors of name, outermost first:
// "tank/a/b" yields "tank" and "tank/a".
func Ancestors(name string) []string {
	var out []string
	for i := 0; i < len(name); i++ {
		if name[i] == '/' && i > 0 {
			out = append(out, name[:i])
		}
	}
	return out
}

// Depth is the number of '/'-separated components in name.
func Depth(name string) int {
	return strings.Count(name, "/") + 1
}
