package aiclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/tidwall/gjson"
)

type fieldCheck struct {
	path string
	kind string
	ok   func(gjson.Result) bool
}

func isNumber(r gjson.Result) bool { return r.Type == gjson.Number }
func isString(r gjson.Result) bool { return r.Type == gjson.String }

var schemas = map[Task][]fieldCheck{
	TaskChat: {
		{"response", "string", isString},
	},
	TaskMeal: {
		{"totalCalories", "number", isNumber},
		{"estimatedFoods", "array", gjson.Result.IsArray},
	},
	TaskJournal: {
		{"sentimentAnalysis", "object", gjson.Result.IsObject},
		{"stressLevel", "number", isNumber},
		{"burnoutRisk", "number", isNumber},
	},
	TaskPosture: {
		{"overallScore", "number", isNumber},
		{"feedback", "array", gjson.Result.IsArray},
	},
}

func checkSchema(task Task, raw []byte) error {
	if !gjson.ValidBytes(raw) {
		return errors.New("response is not valid JSON")
	}
	root := gjson.ParseBytes(raw)
	if task == TaskRecommendations {
		if !root.IsObject() && !root.IsArray() {
			return errors.New("response must be an object or array")
		}
		return nil
	}
	if !root.IsObject() {
		return errors.New("response must be an object")
	}
	for _, f := range schemas[task] {
		if v := root.Get(f.path); !f.ok(v) {
			return fmt.Errorf("field %q must be a %s", f.path, f.kind)
		}
	}
	return nil
}

// ParseMealAnalysis maps a meal-ocr body onto the stored result. Macros are
// summed over the estimated foods that report them.
func ParseMealAnalysis(raw []byte) *internal.MealAnalysisResult {
	root := gjson.ParseBytes(raw)
	result := &internal.MealAnalysisResult{
		Calories:       root.Get("totalCalories").Float(),
		EstimatedFoods: []string{},
	}
	var macros internal.Macronutrients
	hasMacros := false
	for _, food := range root.Get("estimatedFoods").Array() {
		name := food.String()
		if food.IsObject() {
			name = food.Get("name").String()
		}
		if name != "" {
			result.EstimatedFoods = append(result.EstimatedFoods, name)
		}
		if m := food.Get("macronutrients"); m.IsObject() {
			hasMacros = true
			macros.Protein += m.Get("protein").Float()
			macros.Carbohydrates += m.Get("carbohydrates").Float()
			macros.Fats += m.Get("fats").Float()
		}
	}
	if hasMacros {
		result.Macronutrients = &macros
	}
	return result
}

func ParseJournalAnalysis(raw []byte) *internal.JournalAnalysis {
	root := gjson.ParseBytes(raw)
	s := root.Get("sentimentAnalysis")
	sentiment := &internal.SentimentAnalysis{
		OverallSentiment: s.Get("overallSentiment").String(),
		SentimentScore:   s.Get("sentimentScore").Float(),
		Keywords:         stringArray(s.Get("keywords")),
		Topics:           stringArray(s.Get("topics")),
	}
	switch sentiment.OverallSentiment {
	case "positive", "neutral", "negative", "mixed":
	default:
		sentiment.OverallSentiment = ""
	}
	return &internal.JournalAnalysis{
		SentimentAnalysis: sentiment,
		StressLevel:       root.Get("stressLevel").Float(),
		BurnoutRisk:       root.Get("burnoutRisk").Float(),
	}
}

// ParsePostureAnalysis flattens feedback items into readable lines.
// Items may be plain strings or {joint, feedback, correction} objects.
func ParsePostureAnalysis(raw []byte) *internal.PostureAnalysis {
	root := gjson.ParseBytes(raw)
	result := &internal.PostureAnalysis{
		OverallScore: root.Get("overallScore").Float(),
		Feedback:     []string{},
		VideoRef:     root.Get("videoRef").String(),
	}
	for _, item := range root.Get("feedback").Array() {
		if !item.IsObject() {
			if s := item.String(); s != "" {
				result.Feedback = append(result.Feedback, s)
			}
			continue
		}
		line := item.Get("feedback").String()
		if joint := item.Get("joint").String(); joint != "" {
			line = joint + ": " + line
		}
		if corr := item.Get("correction").String(); corr != "" {
			line = strings.TrimSpace(line + " " + corr)
		}
		if line != "" {
			result.Feedback = append(result.Feedback, line)
		}
	}
	return result
}

func stringArray(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	out := make([]string, 0, len(r.Array()))
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}
