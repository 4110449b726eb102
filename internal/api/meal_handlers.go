package api

import (
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/service"
)

var meals = resource[internal.MealEntry, service.MealRequest]{
	label:       "Meal entry",
	repo:        App.Meals,
	create:      service.CreateMealEntry,
	requestFrom: service.MealRequestFrom,
	update:      service.UpdateMealEntry,
}
