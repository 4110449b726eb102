package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/padhy-04/LifeSenseAI/internal/auth"
	"github.com/padhy-04/LifeSenseAI/internal/metrics"
	"github.com/padhy-04/LifeSenseAI/internal/ratelimit"
	"github.com/padhy-04/LifeSenseAI/internal/response"
)

type RouterConfig struct {
	AllowedOrigins []string
	// Limiter guards /api/auth and /api/ai. Nil disables limiting.
	Limiter ratelimit.Limiter
	// Metrics, when set, instruments every route and serves /metrics.
	Metrics *metrics.Metrics
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func NewRouter(app App, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestIDMiddleware(), RequestLogger(app.Logger()), cors.New(corsConfig(cfg.AllowedOrigins)))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, response.Success(gin.H{"status": "ok"}))
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Fail("Route not found"))
	})

	limit := func(scope string) gin.HandlerFunc {
		if cfg.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return ratelimit.Middleware(cfg.Limiter, scope, app.Logger())
	}
	protect := auth.AuthMiddleware(auth.NewJWTProvider(app.Tokens(), app.Users()), app.Logger())

	api := r.Group("/api")

	authGroup := api.Group("/auth", limit("auth"))
	authGroup.POST("/register", Register(app))
	authGroup.POST("/login", Login(app))

	api.GET("/users/profile", protect, GetProfile(app))

	journals.register(api.Group("/journals", protect), app)
	meals.register(api.Group("/meals", protect), app)
	sleepGroup := api.Group("/sleep", protect)
	sleepGroup.GET("/stats", GetSleepStats(app))
	sleepEntries.register(sleepGroup, app)
	workouts.register(api.Group("/workouts", protect), app)

	ai := api.Group("/ai", protect, limit("ai"))
	ai.POST("/chat", PostChat(app))
	ai.POST("/meal-analyze", PostMealAnalyze(app))
	ai.POST("/journal-analyze", PostJournalAnalyze(app))
	ai.GET("/recommendations", GetRecommendations(app))
	ai.POST("/posture-analyze", PostPostureAnalyze(app))

	return r
}
