package ui

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterEditorCommit(t *testing.T) {
	var e FilterEditor
	e.Begin("")
	for _, r := range "tank/vmx" {
		e.Insert(r)
	}
	e.Backspace()
	assert.Equal(t, "tank/vm", e.Text())

	re, ok := e.Commit()
	require.True(t, ok)
	require.NotNil(t, re)
	assert.Equal(t, "tank/vm", re.String())
	assert.False(t, e.Active())
}

func TestFilterEditorInvalidStaysOpen(t *testing.T) {
	var e FilterEditor
	e.Begin("(")
	re, ok := e.Commit()
	assert.False(t, ok)
	assert.Nil(t, re)
	assert.True(t, e.Active())
	assert.Equal(t, "(", e.Text())
	assert.True(t, errors.Is(e.Err(), ErrBadFilter))

	e.Insert(')')
	re, ok = e.Commit()
	require.True(t, ok)
	assert.Equal(t, "()", re.String())
	assert.NoError(t, e.Err())
}

func TestFilterEditorCancel(t *testing.T) {
	var e FilterEditor
	e.Begin("abc")
	e.Cancel()
	assert.False(t, e.Active())
	assert.Empty(t, e.Text())

	e.Insert('x')
	assert.Empty(t, e.Text())
	_, ok := e.Commit()
	assert.False(t, ok)
}

func TestFilterEditorEmptyClears(t *testing.T) {
	var e FilterEditor
	e.Begin("a")
	e.Backspace()
	e.Backspace()
	re, ok := e.Commit()
	assert.True(t, ok)
	assert.Nil(t, re)
}
