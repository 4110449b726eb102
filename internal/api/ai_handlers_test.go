package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/aiclient"
	"github.com/padhy-04/LifeSenseAI/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	mealReply = `{"totalCalories":550,"accuracyScore":0.8,"estimatedFoods":[
		{"name":"rice","calories":200,"macronutrients":{"protein":4,"carbohydrates":45,"fats":1}},
		{"name":"chicken","calories":350,"macronutrients":{"protein":30,"carbohydrates":0,"fats":10}}]}`
	journalReply = `{"sentimentAnalysis":{"overallSentiment":"negative","sentimentScore":-0.4,"keywords":["deadline"]},
		"stressLevel":140,"burnoutRisk":40,"recoverySuggestions":["walk"]}`
	postureReply = `{"overallScore":85,"repetitionCount":10,"feedback":[
		{"joint":"knees","feedback":"Knees are caving inwards.","correction":"Push them out."}]}`
)

func newCoach() *fakeCoach {
	return &fakeCoach{replies: map[aiclient.Task]string{
		aiclient.TaskChat:            `{"response":"Try a short walk.","suggestions":["walk"]}`,
		aiclient.TaskMeal:            mealReply,
		aiclient.TaskJournal:         journalReply,
		aiclient.TaskRecommendations: `{"recommendations":[{"title":"Sleep earlier"}]}`,
		aiclient.TaskPosture:         postureReply,
	}}
}

func TestPostChat(t *testing.T) {
	coach := newCoach()
	s := newTestServer(t, coach, RouterConfig{})
	token := s.register(t, "Ada", "ada@example.com")

	w := s.do(t, http.MethodPost, "/api/ai/chat", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Message is required", body(w).Get("message").String())

	w = s.do(t, http.MethodPost, "/api/ai/chat", token, gin.H{"message": "I feel tired", "context": gin.H{"mood": 2}, "userId": "spoofed"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Try a short walk.", body(w).Get("data.response").String())

	call := coach.lastCall(t)
	assert.Equal(t, aiclient.TaskChat, call.task)
	assert.Equal(t, s.userID(t, token), call.userID)
	assert.Equal(t, "I feel tired", call.payload["message"])
	assert.NotNil(t, call.payload["context"])
	assert.NotContains(t, call.payload, "userId")
}

func TestPostChat_UpstreamFailure(t *testing.T) {
	coach := &fakeCoach{err: errors.New("connection refused")}
	s := newTestServer(t, coach, RouterConfig{})
	token := s.register(t, "Ada", "ada@example.com")

	w := s.do(t, http.MethodPost, "/api/ai/chat", token, gin.H{"message": "hi"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgAIFailed, body(w).Get("message").String())
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPostMealAnalyze(t *testing.T) {
	coach := newCoach()
	s := newTestServer(t, coach, RouterConfig{})
	token := s.register(t, "Ada", "ada@example.com")

	w := s.do(t, http.MethodPost, "/api/meals", token, gin.H{"mealType": "dinner", "foods": []gin.H{{"name": "plate", "calories": 600}}})
	require.Equal(t, http.StatusCreated, w.Code)
	mealID := body(w).Get("data.id").String()

	w = s.do(t, http.MethodPost, "/api/ai/meal-analyze", token, gin.H{"mealEntryId": mealID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Image URL and Meal Entry ID are required", body(w).Get("message").String())

	req := gin.H{"imageUrl": "https://img.example.com/plate.jpg", "mealEntryId": mealID}
	w = s.do(t, http.MethodPost, "/api/ai/meal-analyze", token, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Meal analysis processed", body(w).Get("message").String())
	assert.Equal(t, 550.0, body(w).Get("data.totalCalories").Float())

	call := coach.lastCall(t)
	assert.Equal(t, aiclient.TaskMeal, call.task)
	assert.Equal(t, mealID, call.payload["mealEntryId"])

	w = s.do(t, http.MethodGet, "/api/meals/"+mealID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	meal := body(w).Get("data")
	assert.Equal(t, "completed", meal.Get("aiAnalysisStatus").String())
	assert.Equal(t, 550.0, meal.Get("aiAnalysisResult.calories").Float())
	assert.Equal(t, `["rice","chicken"]`, meal.Get("aiAnalysisResult.estimatedFoods").Raw)
	assert.Equal(t, 34.0, meal.Get("aiAnalysisResult.macronutrients.protein").Float())
	// The user's own food list is untouched.
	assert.Equal(t, 600.0, meal.Get("totalCalories").Float())

	w = s.do(t, http.MethodPost, "/api/ai/meal-analyze", token, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Meal entry has already been analyzed", body(w).Get("message").String())
}

func TestPostMealAnalyze_FailureMarksEntry(t *testing.T) {
	coach := &fakeCoach{err: errors.New("timeout")}
	s := newTestServer(t, coach, RouterConfig{})
	token := s.register(t, "Ada", "ada@example.com")

	w := s.do(t, http.MethodPost, "/api/meals", token, gin.H{"mealType": "snack"})
	require.Equal(t, http.StatusCreated, w.Code)
	mealID := body(w).Get("data.id").String()

	w = s.do(t, http.MethodPost, "/api/ai/meal-analyze", token, gin.H{"imageUrl": "https://img.example.com/a.jpg", "mealEntryId": mealID})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgAIFailed, body(w).Get("message").String())

	w = s.do(t, http.MethodGet, "/api/meals/"+mealID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "failed", body(w).Get("data.aiAnalysisStatus").String())
	assert.False(t, body(w).Get("data.aiAnalysisResult").Exists())
}

// ctxCheckingMeals refuses writes once the caller's context is done, the way
// a network-backed store would.
type ctxCheckingMeals struct {
	storage.MealRepository
}

func (m ctxCheckingMeals) Update(ctx context.Context, entry internal.MealEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.MealRepository.Update(ctx, entry)
}

// hangupCoach cancels the request mid call, like a client that disconnects
// while the upstream is still working.
type hangupCoach struct {
	cancel context.CancelFunc
}

func (h *hangupCoach) Forward(context.Context, aiclient.Task, string, map[string]interface{}) (json.RawMessage, error) {
	h.cancel()
	return nil, context.Canceled
}

func TestPostMealAnalyze_ClientHangupStillMarksFailed(t *testing.T) {
	coach := &hangupCoach{}
	s := newTestServer(t, coach, RouterConfig{}, func(r *storage.Repositories) {
		r.Meals = ctxCheckingMeals{r.Meals}
	})
	token := s.register(t, "Ada", "ada@example.com")

	w := s.do(t, http.MethodPost, "/api/meals", token, gin.H{"mealType": "lunch"})
	require.Equal(t, http.StatusCreated, w.Code)
	mealID := body(w).Get("data.id").String()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	coach.cancel = cancel
	req := gin.H{"imageUrl": "https://img.example.com/a.jpg", "mealEntryId": mealID}
	w = s.doWithContext(t, ctx, http.MethodPost, "/api/ai/meal-analyze", token, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgAIFailed, body(w).Get("message").String())

	w = s.do(t, http.MethodGet, "/api/meals/"+mealID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "failed", body(w).Get("data.aiAnalysisStatus").String())

	w = s.do(t, http.MethodPost, "/api/ai/meal-analyze", token, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Meal entry has already been analyzed", body(w).Get("message").String())
}

func TestAIAnalyze_ForeignEntryNotFound(t *testing.T) {
	coach := newCoach()
	s := newTestServer(t, coach, RouterConfig{})
	alice := s.register(t, "Alice", "alice@example.com")
	bob := s.register(t, "Bob", "bob@example.com")

	meal := body(s.do(t, http.MethodPost, "/api/meals", alice, gin.H{"mealType": "lunch"})).Get("data.id").String()
	journal := body(s.do(t, http.MethodPost, "/api/journals", alice, gin.H{"text": "secret"})).Get("data.id").String()
	workout := body(s.do(t, http.MethodPost, "/api/workouts", alice, gin.H{"workoutType": "strength"})).Get("data.id").String()

	w := s.do(t, http.MethodPost, "/api/ai/meal-analyze", bob, gin.H{"imageUrl": "https://img.example.com/a.jpg", "mealEntryId": meal})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Meal entry not found", body(w).Get("message").String())

	w = s.do(t, http.MethodPost, "/api/ai/journal-analyze", bob, gin.H{"journalText": "x", "journalEntryId": journal})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Journal entry not found", body(w).Get("message").String())

	w = s.do(t, http.MethodPost, "/api/ai/posture-analyze", bob, gin.H{"postureData": gin.H{"frames": 1}, "workoutId": workout})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Workout not found", body(w).Get("message").String())

	// Nothing reached the upstream, and Alice's meal is still pending.
	assert.Empty(t, coach.calls)
	w = s.do(t, http.MethodGet, "/api/meals/"+meal, alice, nil)
	assert.Equal(t, "pending", body(w).Get("data.aiAnalysisStatus").String())
}

func TestPostJournalAnalyze(t *testing.T) {
	coach := newCoach()
	s := newTestServer(t, coach, RouterConfig{})
	token := s.register(t, "Ada", "ada@example.com")

	id := body(s.do(t, http.MethodPost, "/api/journals", token, gin.H{"text": "deadline stress"})).Get("data.id").String()

	w := s.do(t, http.MethodPost, "/api/ai/journal-analyze", token, gin.H{"journalEntryId": id})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Journal text and Journal Entry ID are required", body(w).Get("message").String())

	w = s.do(t, http.MethodPost, "/api/ai/journal-analyze", token, gin.H{"journalText": "deadline stress", "journalEntryId": id})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Journal analysis processed", body(w).Get("message").String())
	assert.Equal(t, "deadline stress", coach.lastCall(t).payload["journalText"])

	w = s.do(t, http.MethodGet, "/api/journals/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entry := body(w).Get("data")
	assert.Equal(t, "negative", entry.Get("sentimentAnalysis.overallSentiment").String())
	assert.Equal(t, -0.4, entry.Get("sentimentAnalysis.sentimentScore").Float())
	assert.Equal(t, 100.0, entry.Get("stressLevel").Float())
	assert.Equal(t, 40.0, entry.Get("burnoutRisk").Float())
}

func TestPostPostureAnalyze(t *testing.T) {
	coach := newCoach()
	s := newTestServer(t, coach, RouterConfig{})
	token := s.register(t, "Ada", "ada@example.com")

	id := body(s.do(t, http.MethodPost, "/api/workouts", token, gin.H{"workoutType": "strength"})).Get("data.id").String()

	w := s.do(t, http.MethodPost, "/api/ai/posture-analyze", token, gin.H{"workoutId": id})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Posture data and Workout ID are required", body(w).Get("message").String())

	w = s.do(t, http.MethodPost, "/api/ai/posture-analyze", token, gin.H{"postureData": gin.H{"keypoints": []int{1, 2}}, "workoutId": id})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Posture analysis processed", body(w).Get("message").String())

	w = s.do(t, http.MethodGet, "/api/workouts/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := body(w).Get("data.postureAnalysisResult")
	assert.Equal(t, 85.0, result.Get("overallScore").Float())
	assert.Equal(t, `["knees: Knees are caving inwards. Push them out."]`, result.Get("feedback").Raw)
}

func TestGetRecommendations(t *testing.T) {
	coach := newCoach()
	s := newTestServer(t, coach, RouterConfig{})
	token := s.register(t, "Ada", "ada@example.com")

	w := s.do(t, http.MethodGet, "/api/ai/recommendations", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Sleep earlier", body(w).Get("data.recommendations.0.title").String())
	assert.Equal(t, aiclient.TaskRecommendations, coach.lastCall(t).task)
}

// The real client against a stub upstream: a schema violation surfaces as
// the generic failure and leaves the journal untouched.
func TestPostJournalAnalyze_UpstreamSchemaViolation(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var got map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&got)
		assert.Equal(t, "/journal-nlp", r.URL.Path)
		assert.NotEmpty(t, got["userId"])
		_, _ = w.Write([]byte(`{"stressLevel":"very"}`))
	}))
	defer upstream.Close()

	coach := aiclient.New(upstream.URL, "key", time.Second, internal.NewNopLogger())
	s := newTestServer(t, coach, RouterConfig{})
	token := s.register(t, "Ada", "ada@example.com")
	id := body(s.do(t, http.MethodPost, "/api/journals", token, gin.H{"text": "hello"})).Get("data.id").String()

	w := s.do(t, http.MethodPost, "/api/ai/journal-analyze", token, gin.H{"journalText": "hello", "journalEntryId": id})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, msgAIFailed, body(w).Get("message").String())

	w = s.do(t, http.MethodGet, "/api/journals/"+id, token, nil)
	assert.False(t, body(w).Get("data.sentimentAnalysis").Exists())
	assert.False(t, body(w).Get("data.stressLevel").Exists())
}
