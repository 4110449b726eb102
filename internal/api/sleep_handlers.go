package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/auth"
	"github.com/padhy-04/LifeSenseAI/internal/response"
	"github.com/padhy-04/LifeSenseAI/internal/service"
)

var sleepEntries = resource[internal.SleepEntry, service.SleepRequest]{
	label:       "Sleep entry",
	repo:        App.Sleep,
	create:      service.CreateSleepEntry,
	requestFrom: service.SleepRequestFrom,
	update:      service.UpdateSleepEntry,
}

// GetSleepStats summarises the caller's last 7 days of sleep.
func GetSleepStats(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)
		entries, err := app.Sleep().List(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgServerError)
			return
		}

		stats := service.CalculateSleepStats(entries, time.Now())
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(stats))
	}
}
