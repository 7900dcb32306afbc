package view

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColumn(t *testing.T) {
	for _, c := range Columns() {
		got, err := ParseColumn(c.Header())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestParseColumnCaseSensitive(t *testing.T) {
	_, err := ParseColumn("dataset")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownColumn))
	assert.Contains(t, errors.FlattenHints(err), `did you mean "Dataset"?`)
}

func TestParseColumnNoSuggestionForGarbage(t *testing.T) {
	_, err := ParseColumn("completely unrelated")
	require.Error(t, err)
	hints := errors.FlattenHints(err)
	assert.NotContains(t, hints, "did you mean")
	assert.Contains(t, hints, `"kB/s w"`)
}

func TestColumnString(t *testing.T) {
	assert.Equal(t, "none", NoColumn.String())
	assert.Equal(t, "kB/s d", DeleteBytes.String())
	assert.Equal(t, "", Column(42).Header())
	assert.Equal(t, "", NoColumn.Header())
}

func TestColumnIndex(t *testing.T) {
	for i, c := range Columns() {
		assert.Equal(t, i, c.Index())
	}
	assert.Equal(t, -1, NoColumn.Index())
	assert.Equal(t, 6, Name.Index())
}

