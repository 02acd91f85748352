package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn")
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("Found duplicate entries", "table", "attribute_value_mappings", "duplicates", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "Found duplicate entries")
	assert.Contains(t, out, "table=attribute_value_mappings")
	assert.Contains(t, out, "duplicates=2")
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, "chatty")
	assert.Error(t, err)
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("nothing to see")
}
