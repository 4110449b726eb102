package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/padhy-04/LifeSenseAI/internal"
)

var ErrAnalysisState = errors.New("invalid analysis status transition")

// TotalCalories sums the calories of every food item.
func TotalCalories(foods []internal.FoodItem) float64 {
	total := 0.0
	for _, f := range foods {
		total += f.Calories
	}
	return total
}

// SleepDurationHours returns wake - bed in hours, shifted by whole days until
// non-negative so clock-only times that wrap midnight still count.
func SleepDurationHours(bed, wake time.Time) float64 {
	d := wake.Sub(bed).Hours()
	for d < 0 {
		d += 24
	}
	return d
}

// AdvanceAnalysisStatus allows pending -> in_progress -> completed|failed.
func AdvanceAnalysisStatus(from, to internal.AnalysisStatus) error {
	switch {
	case from == internal.AnalysisPending && to == internal.AnalysisInProgress:
		return nil
	case from == internal.AnalysisInProgress && (to == internal.AnalysisCompleted || to == internal.AnalysisFailed):
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrAnalysisState, from, to)
}

// dateOr returns the requested date, else the stored one, else now. A null
// date on update keeps the entry where it is.
func dateOr(d *time.Time, stored, now time.Time) time.Time {
	if d != nil && !d.IsZero() {
		return d.UTC()
	}
	if !stored.IsZero() {
		return stored
	}
	return now
}
