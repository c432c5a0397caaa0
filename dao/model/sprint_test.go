package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSprintDateRange(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	s := Sprint{StartDate: start, EndDate: start.AddDate(0, 0, 14)}
	require.NoError(t, s.BeforeSave(nil))

	s.EndDate = start
	assert.ErrorIs(t, s.BeforeSave(nil), ErrSprintDateRange, "equal dates are not a valid range")

	s.EndDate = start.AddDate(0, 0, -1)
	assert.ErrorIs(t, s.BeforeSave(nil), ErrSprintDateRange)
}
