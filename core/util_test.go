package core

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{14.5714, 14.57},
		{12.006, 12.01},
		{11.994, 11.99},
		{-2.346, -2.35},
		{10, 10},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Round2(tt.in), 1e-9, "Round2(%v)", tt.in)
	}
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Quarter 1", CleanString("  Quarter 1\n"))
	assert.Equal(t, "absence", CleanString(" ABSENCE ", true))
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "", OrderBy())
	assert.Equal(t, " ORDER BY r.date ASC, r.created_at DESC", OrderBy(
		DBOrdering{Field: "r.date", Ascending: true},
		DBOrdering{Field: "r.created_at"},
	))
}

func TestErrors(t *testing.T) {
	notFound := NewNotFoundError("term not found")
	assert.True(t, IsNotFound(notFound))
	assert.True(t, IsNotFound(errors.Wrap(notFound, "loading report")))
	assert.False(t, IsNotFound(NewConflictError("term not found")))

	assert.True(t, IsShutdown(errors.Wrap(NewShutdownError("db gone"), "query")))

	err := NewValidationError(nil, FieldError{Field: "name", Error: "required"})
	assert.Equal(t, "name: required", err.Error())
}
