package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/storage"
)

type MealRequest struct {
	Date     *time.Time          `json:"date"`
	MealType string              `json:"mealType" validate:"required,oneof=breakfast lunch dinner snack other"`
	Foods    []internal.FoodItem `json:"foods" validate:"omitempty,dive"`
	PhotoURL string              `json:"photoUrl" validate:"omitempty,http_url"`
	Notes    string              `json:"notes" validate:"max=500"`
}

// MealRequestFrom prefills a request from a stored entry. Foods stay nil
// unless the body replaces them.
func MealRequestFrom(e internal.MealEntry) MealRequest {
	d := e.Date
	return MealRequest{Date: &d, MealType: e.MealType, PhotoURL: e.PhotoURL, Notes: e.Notes}
}

func CreateMealEntry(ctx context.Context, repo storage.MealRepository, user *internal.User, req *MealRequest) (*internal.MealEntry, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	entry := internal.MealEntry{
		ID:               uuid.NewString(),
		UserID:           user.ID,
		Foods:            []internal.FoodItem{},
		AIAnalysisStatus: internal.AnalysisPending,
		CreatedAt:        now,
	}
	applyMealRequest(&entry, req, now)
	if err := repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func UpdateMealEntry(ctx context.Context, repo storage.MealRepository, entry *internal.MealEntry, req *MealRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	applyMealRequest(entry, req, time.Now().UTC())
	return repo.Update(ctx, *entry)
}

func applyMealRequest(e *internal.MealEntry, req *MealRequest, now time.Time) {
	e.Date = dateOr(req.Date, e.Date, now)
	e.MealType = req.MealType
	if req.Foods != nil {
		e.Foods = req.Foods
	}
	e.PhotoURL = req.PhotoURL
	e.Notes = req.Notes
	e.TotalCalories = TotalCalories(e.Foods)
	e.UpdatedAt = now
}

// SetMealAnalysisStatus moves the entry to status and persists it.
func SetMealAnalysisStatus(ctx context.Context, repo storage.MealRepository, entry *internal.MealEntry, status internal.AnalysisStatus) error {
	if err := AdvanceAnalysisStatus(entry.AIAnalysisStatus, status); err != nil {
		return err
	}
	entry.AIAnalysisStatus = status
	entry.UpdatedAt = time.Now().UTC()
	return repo.Update(ctx, *entry)
}

var mealAnalysisMu sync.Mutex

// StartMealAnalysis reloads the stored entry and moves it from pending to
// in_progress while holding mealAnalysisMu, so concurrent callers in one
// process see each other's write and only one of them wins.
func StartMealAnalysis(ctx context.Context, repo storage.MealRepository, entry *internal.MealEntry) error {
	mealAnalysisMu.Lock()
	defer mealAnalysisMu.Unlock()

	stored, err := repo.Get(ctx, entry.UserID, entry.ID)
	if err != nil {
		return err
	}
	*entry = stored
	return SetMealAnalysisStatus(ctx, repo, entry, internal.AnalysisInProgress)
}

// CompleteMealAnalysis stores the OCR result and marks the entry completed.
// The food list the user entered is kept as is.
func CompleteMealAnalysis(ctx context.Context, repo storage.MealRepository, entry *internal.MealEntry, result *internal.MealAnalysisResult) error {
	if err := AdvanceAnalysisStatus(entry.AIAnalysisStatus, internal.AnalysisCompleted); err != nil {
		return err
	}
	if result.EstimatedFoods == nil {
		result.EstimatedFoods = []string{}
	}
	entry.AIAnalysisStatus = internal.AnalysisCompleted
	entry.AIAnalysisResult = result
	entry.UpdatedAt = time.Now().UTC()
	return repo.Update(ctx, *entry)
}
