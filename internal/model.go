package internal

import "time"

// Record is implemented by every user-owned entry so storage backends can
// index it without knowing its concrete shape.
type Record interface {
	RecordID() string
	OwnerID() string
	RecordDate() time.Time
}

type User struct {
	ID           string    `json:"id" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// Public returns a copy of the user without the password hash.
func (u User) Public() *User {
	u.PasswordHash = ""
	return &u
}

// --- Journal ---

type SentimentAnalysis struct {
	OverallSentiment string   `json:"overallSentiment,omitempty" bson:"overallSentiment,omitempty"` // positive, neutral, negative, mixed
	SentimentScore   float64  `json:"sentimentScore" bson:"sentimentScore"`                         // -1..1
	Keywords         []string `json:"keywords,omitempty" bson:"keywords,omitempty"`
	Topics           []string `json:"topics,omitempty" bson:"topics,omitempty"`
}

type JournalEntry struct {
	ID                string             `json:"id" bson:"_id"`
	UserID            string             `json:"userId" bson:"userId"`
	Date              time.Time          `json:"date" bson:"date"`
	Title             string             `json:"title,omitempty" bson:"title,omitempty"`
	Text              string             `json:"text" bson:"text"`
	MoodRating        int                `json:"moodRating,omitempty" bson:"moodRating,omitempty"` // 1–5
	SentimentAnalysis *SentimentAnalysis `json:"sentimentAnalysis,omitempty" bson:"sentimentAnalysis,omitempty"`
	StressLevel       *float64           `json:"stressLevel,omitempty" bson:"stressLevel,omitempty"`
	BurnoutRisk       *float64           `json:"burnoutRisk,omitempty" bson:"burnoutRisk,omitempty"`
	Tags              []string           `json:"tags" bson:"tags"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// JournalAnalysis is the part of a journal-nlp result kept on the entry.
type JournalAnalysis struct {
	SentimentAnalysis *SentimentAnalysis
	StressLevel       float64
	BurnoutRisk       float64
}

func (e JournalEntry) RecordID() string      { return e.ID }
func (e JournalEntry) OwnerID() string       { return e.UserID }
func (e JournalEntry) RecordDate() time.Time { return e.Date }

// --- Meal ---

type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "pending"
	AnalysisInProgress AnalysisStatus = "in_progress"
	AnalysisCompleted  AnalysisStatus = "completed"
	AnalysisFailed     AnalysisStatus = "failed"
)

type Macronutrients struct {
	Protein       float64 `json:"protein" bson:"protein" validate:"gte=0"`
	Carbohydrates float64 `json:"carbohydrates" bson:"carbohydrates" validate:"gte=0"`
	Fats          float64 `json:"fats" bson:"fats" validate:"gte=0"`
}

type Micronutrients struct {
	Fiber  float64 `json:"fiber" bson:"fiber" validate:"gte=0"`
	Sugar  float64 `json:"sugar" bson:"sugar" validate:"gte=0"`
	Sodium float64 `json:"sodium" bson:"sodium" validate:"gte=0"`
}

type FoodItem struct {
	Name           string          `json:"name" bson:"name" validate:"required,max=100"`
	Quantity       string          `json:"quantity,omitempty" bson:"quantity,omitempty" validate:"max=50"` // "1 cup", "150g"
	Calories       float64         `json:"calories" bson:"calories" validate:"gte=0"`
	Macronutrients *Macronutrients `json:"macronutrients,omitempty" bson:"macronutrients,omitempty"`
	Micronutrients *Micronutrients `json:"micronutrients,omitempty" bson:"micronutrients,omitempty"`
}

type MealAnalysisResult struct {
	Calories       float64         `json:"calories" bson:"calories"`
	Macronutrients *Macronutrients `json:"macronutrients,omitempty" bson:"macronutrients,omitempty"`
	EstimatedFoods []string        `json:"estimatedFoods" bson:"estimatedFoods"`
}

type MealEntry struct {
	ID               string              `json:"id" bson:"_id"`
	UserID           string              `json:"userId" bson:"userId"`
	Date             time.Time           `json:"date" bson:"date"`
	MealType         string              `json:"mealType" bson:"mealType"`
	Foods            []FoodItem          `json:"foods" bson:"foods"`
	TotalCalories    float64             `json:"totalCalories" bson:"totalCalories"`
	PhotoURL         string              `json:"photoUrl,omitempty" bson:"photoUrl,omitempty"`
	AIAnalysisStatus AnalysisStatus      `json:"aiAnalysisStatus" bson:"aiAnalysisStatus"`
	AIAnalysisResult *MealAnalysisResult `json:"aiAnalysisResult,omitempty" bson:"aiAnalysisResult,omitempty"`
	Notes            string              `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt" bson:"updatedAt"`
}

func (e MealEntry) RecordID() string      { return e.ID }
func (e MealEntry) OwnerID() string       { return e.UserID }
func (e MealEntry) RecordDate() time.Time { return e.Date }

// --- Sleep ---

type SleepStages struct {
	DeepSleepMinutes  float64 `json:"deepSleepMinutes" bson:"deepSleepMinutes" validate:"gte=0"`
	LightSleepMinutes float64 `json:"lightSleepMinutes" bson:"lightSleepMinutes" validate:"gte=0"`
	RemSleepMinutes   float64 `json:"remSleepMinutes" bson:"remSleepMinutes" validate:"gte=0"`
	AwakeMinutes      float64 `json:"awakeMinutes" bson:"awakeMinutes" validate:"gte=0"`
}

type FocusBlock struct {
	StartTime string `json:"startTime" bson:"startTime" validate:"max=20"`
	EndTime   string `json:"endTime" bson:"endTime" validate:"max=20"`
	Activity  string `json:"activity" bson:"activity" validate:"max=200"`
}

type SleepEntry struct {
	ID                  string       `json:"id" bson:"_id"`
	UserID              string       `json:"userId" bson:"userId"`
	Date                time.Time    `json:"date" bson:"date"`
	Bedtime             time.Time    `json:"bedtime" bson:"bedtime"`
	WakeTime            time.Time    `json:"wakeTime" bson:"wakeTime"`
	DurationHours       float64      `json:"durationHours" bson:"durationHours"`
	SleepQuality        int          `json:"sleepQuality,omitempty" bson:"sleepQuality,omitempty"` // 1–5
	SleepStages         *SleepStages `json:"sleepStages,omitempty" bson:"sleepStages,omitempty"`
	WakeUps             int          `json:"wakeUps" bson:"wakeUps"`
	Notes               string       `json:"notes,omitempty" bson:"notes,omitempty"`
	FocusRecommendation []FocusBlock `json:"focusRecommendation,omitempty" bson:"focusRecommendation,omitempty"`
	CreatedAt           time.Time    `json:"createdAt" bson:"createdAt"`
	UpdatedAt           time.Time    `json:"updatedAt" bson:"updatedAt"`
}

func (e SleepEntry) RecordID() string      { return e.ID }
func (e SleepEntry) OwnerID() string       { return e.UserID }
func (e SleepEntry) RecordDate() time.Time { return e.Date }

// --- Workout ---

type Exercise struct {
	Name            string  `json:"name" bson:"name" validate:"required,max=100"`
	Sets            int     `json:"sets,omitempty" bson:"sets,omitempty" validate:"omitempty,min=1"`
	Reps            int     `json:"reps,omitempty" bson:"reps,omitempty" validate:"omitempty,min=1"`
	Weight          float64 `json:"weight,omitempty" bson:"weight,omitempty" validate:"gte=0"`
	DurationMinutes float64 `json:"durationMinutes,omitempty" bson:"durationMinutes,omitempty" validate:"gte=0"`
	Distance        float64 `json:"distance,omitempty" bson:"distance,omitempty" validate:"gte=0"`
	Intensity       string  `json:"intensity,omitempty" bson:"intensity,omitempty" validate:"max=50"`
	Notes           string  `json:"notes,omitempty" bson:"notes,omitempty" validate:"max=200"`
}

type PostureAnalysis struct {
	OverallScore float64  `json:"overallScore" bson:"overallScore"` // 0–100
	Feedback     []string `json:"feedback" bson:"feedback"`
	VideoRef     string   `json:"videoRef,omitempty" bson:"videoRef,omitempty"`
}

type WorkoutEntry struct {
	ID                    string           `json:"id" bson:"_id"`
	UserID                string           `json:"userId" bson:"userId"`
	Date                  time.Time        `json:"date" bson:"date"`
	Title                 string           `json:"title,omitempty" bson:"title,omitempty"`
	WorkoutType           string           `json:"workoutType" bson:"workoutType"`
	DurationMinutes       int              `json:"durationMinutes,omitempty" bson:"durationMinutes,omitempty"`
	CaloriesBurned        float64          `json:"caloriesBurned,omitempty" bson:"caloriesBurned,omitempty"`
	Exercises             []Exercise       `json:"exercises" bson:"exercises"`
	PostureAnalysisResult *PostureAnalysis `json:"postureAnalysisResult,omitempty" bson:"postureAnalysisResult,omitempty"`
	Notes                 string           `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt             time.Time        `json:"createdAt" bson:"createdAt"`
	UpdatedAt             time.Time        `json:"updatedAt" bson:"updatedAt"`
}

func (e WorkoutEntry) RecordID() string      { return e.ID }
func (e WorkoutEntry) OwnerID() string       { return e.UserID }
func (e WorkoutEntry) RecordDate() time.Time { return e.Date }
