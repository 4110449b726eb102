package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/aiclient"
	"github.com/padhy-04/LifeSenseAI/internal/auth"
	"github.com/padhy-04/LifeSenseAI/internal/response"
	"github.com/padhy-04/LifeSenseAI/internal/service"
)

const msgAIFailed = "Failed to communicate with AI service"

// persistTimeout bounds the writes made after the upstream call returns.
const persistTimeout = 10 * time.Second

// persistContext outlives a cancelled request, so the status written after
// the upstream call always lands.
func persistContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.Request.Context()), persistTimeout)
}

type chatRequest struct {
	Message string      `json:"message"`
	Context interface{} `json:"context"`
}

type mealAnalyzeRequest struct {
	ImageURL    string `json:"imageUrl"`
	MealEntryID string `json:"mealEntryId"`
}

type journalAnalyzeRequest struct {
	JournalText    string `json:"journalText"`
	JournalEntryID string `json:"journalEntryId"`
}

type postureAnalyzeRequest struct {
	PostureData interface{} `json:"postureData"`
	WorkoutID   string      `json:"workoutId"`
}

func badAIRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Fail(msg))
}

func PostChat(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Message == "" {
			badAIRequest(c, "Message is required")
			return
		}

		payload := map[string]interface{}{"message": req.Message}
		if req.Context != nil {
			payload["context"] = req.Context
		}
		raw, err := app.Coach().Forward(c.Request.Context(), aiclient.TaskChat, user.ID, payload)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgAIFailed)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(raw))
	}
}

// PostMealAnalyze moves a pending meal to in_progress, calls meal-ocr and
// records completed or failed.
func PostMealAnalyze(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var req mealAnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.ImageURL == "" || req.MealEntryID == "" {
			badAIRequest(c, "Image URL and Meal Entry ID are required")
			return
		}

		ctx := c.Request.Context()
		meal, ok := meals.load(c, app, req.MealEntryID)
		if !ok {
			return
		}
		if err := service.StartMealAnalysis(ctx, app.Meals(), &meal); err != nil {
			if errors.Is(err, service.ErrAnalysisState) {
				HandleError(c, app.Logger(), err, http.StatusBadRequest, "Meal entry has already been analyzed")
				return
			}
			meals.storeError(c, app, err)
			return
		}

		raw, err := app.Coach().Forward(ctx, aiclient.TaskMeal, user.ID, map[string]interface{}{
			"imageUrl":    req.ImageURL,
			"mealEntryId": req.MealEntryID,
		})

		wctx, cancel := persistContext(c)
		defer cancel()
		if err != nil {
			if serr := service.SetMealAnalysisStatus(wctx, app.Meals(), &meal, internal.AnalysisFailed); serr != nil {
				app.Logger().Errorf("[request_id=%s] failed to mark meal %s failed: %v", c.GetString("request_id"), meal.ID, serr)
			}
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgAIFailed)
			return
		}

		if err := service.CompleteMealAnalysis(wctx, app.Meals(), &meal, aiclient.ParseMealAnalysis(raw)); err != nil {
			meals.storeError(c, app, err)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.SuccessWithMessage(raw, "Meal analysis processed"))
	}
}

func PostJournalAnalyze(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var req journalAnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.JournalText == "" || req.JournalEntryID == "" {
			badAIRequest(c, "Journal text and Journal Entry ID are required")
			return
		}

		ctx := c.Request.Context()
		entry, ok := journals.load(c, app, req.JournalEntryID)
		if !ok {
			return
		}

		raw, err := app.Coach().Forward(ctx, aiclient.TaskJournal, user.ID, map[string]interface{}{
			"journalText":    req.JournalText,
			"journalEntryId": req.JournalEntryID,
		})
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgAIFailed)
			return
		}

		wctx, cancel := persistContext(c)
		defer cancel()
		if err := service.ApplyJournalAnalysis(wctx, app.Journals(), &entry, aiclient.ParseJournalAnalysis(raw)); err != nil {
			journals.storeError(c, app, err)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.SuccessWithMessage(raw, "Journal analysis processed"))
	}
}

func GetRecommendations(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		raw, err := app.Coach().Forward(c.Request.Context(), aiclient.TaskRecommendations, user.ID, nil)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgAIFailed)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(raw))
	}
}

func PostPostureAnalyze(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		var req postureAnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.PostureData == nil || req.WorkoutID == "" {
			badAIRequest(c, "Posture data and Workout ID are required")
			return
		}

		ctx := c.Request.Context()
		workout, ok := workouts.load(c, app, req.WorkoutID)
		if !ok {
			return
		}

		raw, err := app.Coach().Forward(ctx, aiclient.TaskPosture, user.ID, map[string]interface{}{
			"postureData": req.PostureData,
			"workoutId":   req.WorkoutID,
		})
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgAIFailed)
			return
		}

		wctx, cancel := persistContext(c)
		defer cancel()
		if err := service.ApplyPostureAnalysis(wctx, app.Workouts(), &workout, aiclient.ParsePostureAnalysis(raw)); err != nil {
			workouts.storeError(c, app, err)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.SuccessWithMessage(raw, "Posture analysis processed"))
	}
}

var _ Coach = (*aiclient.Client)(nil)
