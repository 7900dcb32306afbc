package ui

import (
	"regexp"

	"github.com/cockroachdb/errors"
)

// ErrBadFilter marks a filter pattern that does not compile.
var ErrBadFilter = errors.New("invalid filter")

// FilterEditor is the line editor behind the 'f' key. A pattern that fails to
// compile keeps the editor open with the text and the error.
type FilterEditor struct {
	active bool
	text   []rune
	err    error
}

// Begin opens the editor seeded with the active pattern.
func (e *FilterEditor) Begin(current string) {
	e.active = true
	e.text = []rune(current)
	e.err = nil
}

func (e *FilterEditor) Active() bool { return e.active }
func (e *FilterEditor) Text() string { return string(e.text) }
func (e *FilterEditor) Err() error   { return e.err }

func (e *FilterEditor) Insert(r rune) {
	if !e.active {
		return
	}
	e.text = append(e.text, r)
}

func (e *FilterEditor) Backspace() {
	if !e.active || len(e.text) == 0 {
		return
	}
	e.text = e.text[:len(e.text)-1]
}

// Cancel closes the editor without applying anything.
func (e *FilterEditor) Cancel() {
	e.active = false
	e.text = nil
	e.err = nil
}

// Commit compiles the text. ok is false when the pattern is invalid; the editor
// then stays open. An empty pattern commits as nil, meaning no filter.
func (e *FilterEditor) Commit() (re *regexp.Regexp, ok bool) {
	if !e.active {
		return nil, false
	}
	text := string(e.text)
	if text != "" {
		var err error
		re, err = regexp.Compile(text)
		if err != nil {
			e.err = errors.Mark(errors.Wrapf(err, "filter %q", text), ErrBadFilter)
			return nil, false
		}
	}
	e.Cancel()
	return re, true
}
