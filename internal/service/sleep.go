package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/storage"
)

type SleepRequest struct {
	Date                *time.Time            `json:"date"`
	Bedtime             *time.Time            `json:"bedtime" validate:"required"`
	WakeTime            *time.Time            `json:"wakeTime" validate:"required"`
	SleepQuality        int                   `json:"sleepQuality" validate:"omitempty,min=1,max=5"`
	SleepStages         *internal.SleepStages `json:"sleepStages"`
	WakeUps             int                   `json:"wakeUps" validate:"gte=0"`
	Notes               string                `json:"notes" validate:"max=500"`
	FocusRecommendation []internal.FocusBlock `json:"focusRecommendation" validate:"omitempty,dive"`
}

func SleepRequestFrom(e internal.SleepEntry) SleepRequest {
	d, bed, wake := e.Date, e.Bedtime, e.WakeTime
	req := SleepRequest{
		Date:         &d,
		Bedtime:      &bed,
		WakeTime:     &wake,
		SleepQuality: e.SleepQuality,
		WakeUps:      e.WakeUps,
		Notes:        e.Notes,
	}
	if e.SleepStages != nil {
		stages := *e.SleepStages
		req.SleepStages = &stages
	}
	return req
}

func CreateSleepEntry(ctx context.Context, repo storage.SleepRepository, user *internal.User, req *SleepRequest) (*internal.SleepEntry, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	entry := internal.SleepEntry{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
	}
	applySleepRequest(&entry, req, now)
	if err := repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func UpdateSleepEntry(ctx context.Context, repo storage.SleepRepository, entry *internal.SleepEntry, req *SleepRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	applySleepRequest(entry, req, time.Now().UTC())
	return repo.Update(ctx, *entry)
}

func applySleepRequest(e *internal.SleepEntry, req *SleepRequest, now time.Time) {
	e.Date = dateOr(req.Date, e.Date, now)
	e.Bedtime = req.Bedtime.UTC()
	e.WakeTime = req.WakeTime.UTC()
	e.DurationHours = SleepDurationHours(e.Bedtime, e.WakeTime)
	e.SleepQuality = req.SleepQuality
	e.SleepStages = req.SleepStages
	e.WakeUps = req.WakeUps
	e.Notes = req.Notes
	if req.FocusRecommendation != nil {
		e.FocusRecommendation = req.FocusRecommendation
	}
	e.UpdatedAt = now
}

type SleepStats struct {
	Entries         int     `json:"entries"`
	AverageQuality  float64 `json:"averageQuality"`
	AverageDuration float64 `json:"averageDuration"`
	Trend           []int   `json:"trend"`
}

// CalculateSleepStats averages entries dated within the last 7 days of now.
// Entries without a quality rating count toward duration only.
func CalculateSleepStats(entries []internal.SleepEntry, now time.Time) SleepStats {
	cutoff := now.AddDate(0, 0, -7)
	totalQuality, rated := 0, 0
	totalDuration := 0.0
	stats := SleepStats{Trend: []int{}}

	for _, e := range entries {
		if !e.Date.After(cutoff) {
			continue
		}
		stats.Entries++
		totalDuration += e.DurationHours
		if e.SleepQuality > 0 {
			totalQuality += e.SleepQuality
			rated++
			stats.Trend = append(stats.Trend, e.SleepQuality)
		}
	}

	if rated > 0 {
		stats.AverageQuality = float64(totalQuality) / float64(rated)
	}
	if stats.Entries > 0 {
		stats.AverageDuration = totalDuration / float64(stats.Entries)
	}
	return stats
}
