package service

import (
	"math"
	"testing"
	"time"

	"valoracademy/internal/http-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeProgress_FreshReport(t *testing.T) {
	now := time.Now()

	record, err := NormalizeProgress(nil, 120, 600, now)

	require.NoError(t, err)
	assert.Equal(t, 120, record.LastPosition)
	assert.Equal(t, 600, record.TotalDuration)
	assert.InDelta(t, 0.2, record.Progress, 1e-9)
	assert.False(t, record.Completed)
	assert.Nil(t, record.CompletedAt)
}

func TestNormalizeProgress_RejectsInvalidInput(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		position float64
		duration float64
	}{
		{"negative position", -1, 600},
		{"negative duration", 10, -600},
		{"NaN position", math.NaN(), 600},
		{"NaN duration", 10, math.NaN()},
		{"infinite position", math.Inf(1), 600},
		{"infinite duration", 10, math.Inf(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record, err := NormalizeProgress(nil, tt.position, tt.duration, now)
			assert.Error(t, err)
			assert.Nil(t, record)
		})
	}
}

func TestNormalizeProgress_ClampsPositionToDuration(t *testing.T) {
	now := time.Now()

	record, err := NormalizeProgress(nil, 900, 600, now)

	require.NoError(t, err)
	assert.Equal(t, 600, record.LastPosition)
	assert.Equal(t, 1.0, record.Progress)
	assert.True(t, record.Completed)
}

func TestNormalizeProgress_ZeroDurationKeepsRawPosition(t *testing.T) {
	now := time.Now()

	record, err := NormalizeProgress(nil, 42, 0, now)

	require.NoError(t, err)
	assert.Equal(t, 42, record.LastPosition)
	assert.Equal(t, 0, record.TotalDuration)
	assert.Equal(t, 0.0, record.Progress)
	assert.False(t, record.Completed)
}

func TestNormalizeProgress_ZeroDurationFallsBackToStored(t *testing.T) {
	now := time.Now()
	prev := &models.LessonProgress{
		UserID:        "user-id",
		LessonID:      7,
		LastPosition:  100,
		TotalDuration: 600,
		Progress:      100.0 / 600.0,
	}

	record, err := NormalizeProgress(prev, 300, 0, now)

	require.NoError(t, err)
	assert.Equal(t, 600, record.TotalDuration)
	assert.Equal(t, 300, record.LastPosition)
	assert.InDelta(t, 0.5, record.Progress, 1e-9)
	assert.Equal(t, "user-id", record.UserID)
	assert.Equal(t, int64(7), record.LessonID)
}

func TestNormalizeProgress_CompletionAtThreshold(t *testing.T) {
	now := time.Now()

	// 540/600 = exactly 0.9
	record, err := NormalizeProgress(nil, 540, 600, now)

	require.NoError(t, err)
	assert.True(t, record.Completed)
	require.NotNil(t, record.CompletedAt)
	assert.Equal(t, now, *record.CompletedAt)

	// 539/600 just below the threshold
	record, err = NormalizeProgress(nil, 539, 600, now)

	require.NoError(t, err)
	assert.False(t, record.Completed)
	assert.Nil(t, record.CompletedAt)
}

func TestNormalizeProgress_StaleReportNeverRegresses(t *testing.T) {
	now := time.Now()
	prev := &models.LessonProgress{
		LastPosition:  400,
		TotalDuration: 600,
		Progress:      400.0 / 600.0,
	}

	record, err := NormalizeProgress(prev, 100, 600, now)

	require.NoError(t, err)
	assert.Equal(t, 400, record.LastPosition)
	assert.InDelta(t, 400.0/600.0, record.Progress, 1e-9)
}

func TestNormalizeProgress_CompletionIsSticky(t *testing.T) {
	now := time.Now()
	completedAt := now.Add(-24 * time.Hour)
	prev := &models.LessonProgress{
		LastPosition:  600,
		TotalDuration: 600,
		Progress:      1.0,
		Completed:     true,
		CompletedAt:   &completedAt,
	}

	// a later report rewinds the position; completion must survive
	record, err := NormalizeProgress(prev, 50, 600, now)

	require.NoError(t, err)
	assert.True(t, record.Completed)
	require.NotNil(t, record.CompletedAt)
	assert.Equal(t, completedAt, *record.CompletedAt)
	assert.Equal(t, 600, record.LastPosition)
}

func TestNormalizeProgress_CompletedAtSetOnlyOnce(t *testing.T) {
	first := time.Now()
	record, err := NormalizeProgress(nil, 590, 600, first)
	require.NoError(t, err)
	require.NotNil(t, record.CompletedAt)

	later := first.Add(time.Hour)
	record2, err := NormalizeProgress(record, 600, 600, later)
	require.NoError(t, err)
	require.NotNil(t, record2.CompletedAt)
	assert.Equal(t, first, *record2.CompletedAt)
}

func TestNormalizeProgress_CrossesThresholdFromEarlierReport(t *testing.T) {
	now := time.Now()
	prev := &models.LessonProgress{
		LastPosition:  100,
		TotalDuration: 1000,
		Progress:      0.1,
	}

	record, err := NormalizeProgress(prev, 950, 1000, now)

	require.NoError(t, err)
	assert.Equal(t, 950, record.LastPosition)
	assert.InDelta(t, 0.95, record.Progress, 1e-9)
	assert.True(t, record.Completed)
	require.NotNil(t, record.CompletedAt)
}

func TestNormalizeProgress_RoundsFractionalSeconds(t *testing.T) {
	now := time.Now()

	record, err := NormalizeProgress(nil, 119.6, 600.4, now)

	require.NoError(t, err)
	assert.Equal(t, 120, record.LastPosition)
	assert.Equal(t, 600, record.TotalDuration)
}

func TestNormalizeProgress_GrowingDurationKept(t *testing.T) {
	now := time.Now()
	prev := &models.LessonProgress{
		LastPosition:  100,
		TotalDuration: 600,
		Progress:      100.0 / 600.0,
	}

	// a re-encoded video may report a longer duration; keep the larger one
	record, err := NormalizeProgress(prev, 100, 660, now)

	require.NoError(t, err)
	assert.Equal(t, 660, record.TotalDuration)
}
