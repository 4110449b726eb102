package api

import (
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/service"
)

var workouts = resource[internal.WorkoutEntry, service.WorkoutRequest]{
	label:       "Workout",
	repo:        App.Workouts,
	create:      service.CreateWorkoutEntry,
	requestFrom: service.WorkoutRequestFrom,
	update:      service.UpdateWorkoutEntry,
}
