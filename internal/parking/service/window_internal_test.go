package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQueryWindow_Invariants(t *testing.T) {
	ref := time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC)
	before := ref.Add(-time.Hour)
	after := ref.Add(time.Hour)

	_, err := newQueryWindow(ref, 0, nil, &ref)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	_, err = newQueryWindow(ref, 60, &before, nil)
	assert.ErrorIs(t, err, ErrRangeOrder)

	_, err = newQueryWindow(ref, 60, &after, &before)
	assert.ErrorIs(t, err, ErrRangeOrder)

	// Reference after the upper bound.
	_, err = newQueryWindow(after, 60, &before, &ref)
	assert.ErrorIs(t, err, ErrReferenceOutOfRange)

	// Reference before the lower bound.
	_, err = newQueryWindow(before.Add(-time.Minute), 60, &before, &ref)
	assert.ErrorIs(t, err, ErrReferenceOutOfRange)

	w, err := newQueryWindow(ref, 60, &before, &after)
	require.NoError(t, err)
	assert.Equal(t, after, w.upper())
}
