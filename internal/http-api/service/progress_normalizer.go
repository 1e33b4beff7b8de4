package service

import (
	"math"
	"net/http"
	"time"

	"valoracademy/internal/http-api/models"
	"valoracademy/pkg/apperrors"
)

// CompleteRatio is the watched fraction at which a lesson counts as completed.
const CompleteRatio = 0.9

// NormalizeProgress converts a raw client-reported position/duration pair plus
// the previously stored record into a safe, monotonic progress record.
//
// Rules:
//   - negative or non-finite inputs are rejected;
//   - the duration falls back to the stored one when the report carries none;
//   - the position is clamped into [0, safeDuration], except when no duration
//     is known yet, in which case the rounded raw position is accepted as-is;
//   - completion is sticky: once completed, later ratio drops cannot undo it,
//     and CompletedAt keeps its first value;
//   - the returned record merges with the previous one using max, so a stale
//     or out-of-order report never regresses stored progress.
//
// The function is pure apart from reading `now`; persistence is the caller's
// responsibility.
func NormalizeProgress(prev *models.LessonProgress, lastPosition, totalDuration float64, now time.Time) (*models.LessonProgress, error) {
	if !isFiniteNonNegative(lastPosition) {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "progress", "lastPosition must be a non-negative finite number", http.StatusBadRequest)
	}
	if !isFiniteNonNegative(totalDuration) {
		return nil, apperrors.New(apperrors.CodeValidationFailed, "progress", "totalDuration must be a non-negative finite number", http.StatusBadRequest)
	}

	safeDuration := int(math.Round(totalDuration))
	if safeDuration <= 0 {
		safeDuration = 0
		if prev != nil {
			safeDuration = prev.TotalDuration
		}
	}

	normalizedPosition := int(math.Round(lastPosition))
	if normalizedPosition < 0 {
		normalizedPosition = 0
	}
	// with no known duration the raw position is accepted rather than
	// clamped to zero
	if safeDuration > 0 && normalizedPosition > safeDuration {
		normalizedPosition = safeDuration
	}

	ratio := 0.0
	if safeDuration > 0 {
		ratio = float64(normalizedPosition) / float64(safeDuration)
		if ratio > 1 {
			ratio = 1
		}
	}

	record := &models.LessonProgress{
		LastPosition:  normalizedPosition,
		TotalDuration: safeDuration,
		Progress:      ratio,
		Completed:     ratio >= CompleteRatio,
		UpdatedAt:     now,
	}

	if prev != nil {
		if prev.LastPosition > record.LastPosition {
			record.LastPosition = prev.LastPosition
		}
		if prev.TotalDuration > record.TotalDuration {
			record.TotalDuration = prev.TotalDuration
		}
		if prev.Progress > record.Progress {
			record.Progress = prev.Progress
		}
		if prev.Completed {
			record.Completed = true
		}
		record.CompletedAt = prev.CompletedAt
		record.UserID = prev.UserID
		record.LessonID = prev.LessonID
	}

	// set once on the first transition to completed, never cleared
	if record.Completed && record.CompletedAt == nil {
		completedAt := now
		record.CompletedAt = &completedAt
	}

	return record, nil
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
