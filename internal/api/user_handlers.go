package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/padhy-04/LifeSenseAI/internal/auth"
	"github.com/padhy-04/LifeSenseAI/internal/response"
	"github.com/padhy-04/LifeSenseAI/internal/service"
	"github.com/padhy-04/LifeSenseAI/internal/storage"
)

func Register(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}

		user, err := service.RegisterUser(c.Request.Context(), app.Users(), &req)
		if errors.Is(err, storage.ErrDuplicateEmail) {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Email already registered")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Server Error during registration")
			return
		}

		issueToken(c, app, user.ID)
	}
}

func Login(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.LoginRequest
		_ = c.ShouldBindJSON(&req)
		if req.Email == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, response.Fail("Please provide an email and password"))
			return
		}

		user, err := service.Authenticate(c.Request.Context(), app.Users(), req.Email, req.Password)
		if errors.Is(err, service.ErrInvalidCredentials) {
			HandleError(c, app.Logger(), err, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, "Server Error during login")
			return
		}

		issueToken(c, app, user.ID)
	}
}

func issueToken(c *gin.Context, app App, userID string) {
	token, err := app.Tokens().Issue(userID)
	if err != nil {
		HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgServerError)
		return
	}
	HandleSuccess(c, app.Logger(), http.StatusOK, response.Token(token))
}

// GetProfile returns the authenticated user.
func GetProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(auth.CurrentUser(c)))
	}
}
