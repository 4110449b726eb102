package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/storage"
)

// JournalRequest is the client-writable part of a journal entry. Sentiment,
// stress and burnout are set only by analysis.
type JournalRequest struct {
	Date       *time.Time `json:"date"`
	Title      string     `json:"title" validate:"max=150"`
	Text       string     `json:"text" validate:"required"`
	MoodRating int        `json:"moodRating" validate:"omitempty,min=1,max=5"`
	Tags       []string   `json:"tags" validate:"omitempty,dive,max=50"`
}

// JournalRequestFrom prefills a request from a stored entry so a partial
// body can be decoded over it. Tags stay nil unless the body sets them.
func JournalRequestFrom(e internal.JournalEntry) JournalRequest {
	d := e.Date
	return JournalRequest{Date: &d, Title: e.Title, Text: e.Text, MoodRating: e.MoodRating}
}

func CreateJournalEntry(ctx context.Context, repo storage.JournalRepository, user *internal.User, req *JournalRequest) (*internal.JournalEntry, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	entry := internal.JournalEntry{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Tags:      []string{},
		CreatedAt: now,
	}
	applyJournalRequest(&entry, req, now)
	if err := repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateJournalEntry validates req and writes it over entry.
func UpdateJournalEntry(ctx context.Context, repo storage.JournalRepository, entry *internal.JournalEntry, req *JournalRequest) error {
	if err := Validate(req); err != nil {
		return err
	}
	applyJournalRequest(entry, req, time.Now().UTC())
	return repo.Update(ctx, *entry)
}

func applyJournalRequest(e *internal.JournalEntry, req *JournalRequest, now time.Time) {
	e.Date = dateOr(req.Date, e.Date, now)
	e.Title = req.Title
	e.Text = req.Text
	e.MoodRating = req.MoodRating
	if req.Tags != nil {
		e.Tags = req.Tags
	}
	e.UpdatedAt = now
}

// ApplyJournalAnalysis stores analysis results, clamping scores to 0..100.
func ApplyJournalAnalysis(ctx context.Context, repo storage.JournalRepository, entry *internal.JournalEntry, a *internal.JournalAnalysis) error {
	stress, burnout := clamp(a.StressLevel, 0, 100), clamp(a.BurnoutRisk, 0, 100)
	entry.SentimentAnalysis = a.SentimentAnalysis
	entry.StressLevel = &stress
	entry.BurnoutRisk = &burnout
	entry.UpdatedAt = time.Now().UTC()
	return repo.Update(ctx, *entry)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
