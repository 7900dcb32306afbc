package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/cockroachdb/errors"
)

// Column identifies a sortable table column. The zero value is NoColumn.
type Column int

const (
	// NoColumn leaves rows in the source's name order.
	NoColumn Column = iota
	ReadOps
	ReadBytes
	WriteOps
	WriteBytes
	DeleteOps
	DeleteBytes
	Name

	numColumns = int(Name)
)

var headers = [numColumns + 1]string{
	ReadOps:     "r/s",
	ReadBytes:   "kB/s r",
	WriteOps:    "w/s",
	WriteBytes:  "kB/s w",
	DeleteOps:   "d/s",
	DeleteBytes: "kB/s d",
	Name:        "Dataset",
}

// Columns lists the table columns in display order.
func Columns() []Column {
	out := make([]Column, 0, numColumns)
	for c := ReadOps; c <= Name; c++ {
		out = append(out, c)
	}
	return out
}

// Index is the column's 0-based display position, or -1 for NoColumn.
func (c Column) Index() int {
	if c < ReadOps || c > Name {
		return -1
	}
	return int(c) - 1
}

// Header is the column title as drawn in the table.
func (c Column) Header() string {
	if c.Index() < 0 {
		return ""
	}
	return headers[c]
}

func (c Column) String() string {
	if c == NoColumn {
		return "none"
	}
	if h := c.Header(); h != "" {
		return h
	}
	return fmt.Sprintf("Column(%d)", int(c))
}

// ErrUnknownColumn is returned by ParseColumn for names that match no header.
var ErrUnknownColumn = errors.New("unknown sort column")

// ParseColumn maps a header, matched case-sensitively, to its Column.
func ParseColumn(name string) (Column, error) {
	best, bestDist := "", -1
	for _, c := range Columns() {
		h := headers[c]
		if h == name {
			return c, nil
		}
		if d := levenshtein.ComputeDistance(h, name); bestDist < 0 || d < bestDist {
			best, bestDist = h, d
		}
	}
	err := errors.Wrapf(ErrUnknownColumn, "%q", name)
	if bestDist >= 0 && bestDist <= 3 {
		err = errors.WithHintf(err, "did you mean %q?", best)
	}
	return NoColumn, errors.WithHintf(err, "valid columns: %s", validColumns())
}

func validColumns() string {
	quoted := make([]string, 0, numColumns)
	for _, c := range Columns() {
		quoted = append(quoted, strconv.Quote(headers[c]))
	}
	return strings.Join(quoted, ", ")
}
