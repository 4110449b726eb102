package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/storage"
)

type WorkoutRequest struct {
	Date            *time.Time          `json:"date"`
	Title           string              `json:"title" validate:"max=150"`
	WorkoutType     string              `json:"workoutType" validate:"required,oneof=strength cardio flexibility hybrid other"`
	DurationMinutes int                 `json:"durationMinutes" validate:"omitempty,min=1"`
	CaloriesBurned  float64             `json:"caloriesBurned" validate:"gte=0"`
	Exercises       []internal.Exercise `json:"exercises" validate:"omitempty,dive"`
	Notes           string              `json:"notes" validate:"max=500"`
}

func WorkoutRequestFrom(e internal.WorkoutEntry) WorkoutRequest {
	d := e.Date
	return WorkoutRequest{
		Date:            &d,
		Title:           e.Title,
		WorkoutType:     e.WorkoutType,
		DurationMinutes: e.DurationMinutes,
		CaloriesBurned:  e.CaloriesBurned,
		Notes:           e.Notes,
	}
}

func CreateWorkoutEntry(ctx context.Context, repo storage.WorkoutRepository, user *internal.User, req *WorkoutRequest) (*internal.WorkoutEntry, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	entry := internal.WorkoutEntry{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Exercises: []internal.Exercise{},
		CreatedAt: now,
	}
	applyWorkoutRequest(&entry, req, now)
	if err := repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func UpdateWorkoutEntry(ctx context.Context, repo storage.WorkoutRepository, entry *internal.WorkoutEntry, req *WorkoutRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	applyWorkoutRequest(entry, req, time.Now().UTC())
	return repo.Update(ctx, *entry)
}

func applyWorkoutRequest(e *internal.WorkoutEntry, req *WorkoutRequest, now time.Time) {
	e.Date = dateOr(req.Date, e.Date, now)
	e.Title = req.Title
	e.WorkoutType = req.WorkoutType
	e.DurationMinutes = req.DurationMinutes
	e.CaloriesBurned = req.CaloriesBurned
	if req.Exercises != nil {
		e.Exercises = req.Exercises
	}
	e.Notes = req.Notes
	e.UpdatedAt = now
}

// ApplyPostureAnalysis stores a pose-detection result on the workout.
func ApplyPostureAnalysis(ctx context.Context, repo storage.WorkoutRepository, entry *internal.WorkoutEntry, result *internal.PostureAnalysis) error {
	result.OverallScore = clamp(result.OverallScore, 0, 100)
	if result.Feedback == nil {
		result.Feedback = []string{}
	}
	entry.PostureAnalysisResult = result
	entry.UpdatedAt = time.Now().UTC()
	return repo.Update(ctx, *entry)
}
