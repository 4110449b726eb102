package api

import (
	"context"
	"encoding/json"

	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/aiclient"
	"github.com/padhy-04/LifeSenseAI/internal/auth"
	"github.com/padhy-04/LifeSenseAI/internal/storage"
)

// Coach forwards analysis tasks to the AI service.
type Coach interface {
	Forward(ctx context.Context, task aiclient.Task, userID string, payload map[string]interface{}) (json.RawMessage, error)
}

type App interface {
	Logger() internal.Logger
	Users() storage.UserRepository
	Journals() storage.JournalRepository
	Meals() storage.MealRepository
	Sleep() storage.SleepRepository
	Workouts() storage.WorkoutRepository
	Tokens() *auth.TokenIssuer
	Coach() Coach
}

type app struct {
	logger internal.Logger
	repos  *storage.Repositories
	tokens *auth.TokenIssuer
	coach  Coach
}

func NewApp(logger internal.Logger, repos *storage.Repositories, tokens *auth.TokenIssuer, coach Coach) App {
	return &app{logger: logger, repos: repos, tokens: tokens, coach: coach}
}

func (a *app) Logger() internal.Logger             { return a.logger }
func (a *app) Users() storage.UserRepository       { return a.repos.Users }
func (a *app) Journals() storage.JournalRepository { return a.repos.Journals }
func (a *app) Meals() storage.MealRepository       { return a.repos.Meals }
func (a *app) Sleep() storage.SleepRepository      { return a.repos.Sleep }
func (a *app) Workouts() storage.WorkoutRepository { return a.repos.Workouts }
func (a *app) Tokens() *auth.TokenIssuer           { return a.tokens }
func (a *app) Coach() Coach                        { return a.coach }
