package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/auth"
	"github.com/padhy-04/LifeSenseAI/internal/response"
	"github.com/padhy-04/LifeSenseAI/internal/storage"
)

// resource wires one owner-scoped collection to CRUD handlers. E is the
// stored entry and R the client-writable request.
type resource[E internal.Record, R any] struct {
	label       string // "Meal entry"
	repo        func(App) storage.EntryRepository[E]
	create      func(ctx context.Context, repo storage.EntryRepository[E], user *internal.User, req *R) (*E, error)
	requestFrom func(E) R
	update      func(ctx context.Context, repo storage.EntryRepository[E], entry *E, req *R) error
}

func (res resource[E, R]) notFound() string {
	return res.label + " not found"
}

// entryID returns the :id param, writing 400 when it is not a valid id.
func (res resource[E, R]) entryID(c *gin.Context, app App) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid "+strings.ToLower(res.label)+" ID")
		return "", false
	}
	return id, true
}

// load fetches the caller's entry, writing 404 for missing and foreign ids alike.
func (res resource[E, R]) load(c *gin.Context, app App, id string) (E, bool) {
	user := auth.CurrentUser(c)
	entry, err := res.repo(app).Get(c.Request.Context(), user.ID, id)
	if err != nil {
		res.storeError(c, app, err)
		return entry, false
	}
	return entry, true
}

func (res resource[E, R]) storeError(c *gin.Context, app App, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		HandleError(c, app.Logger(), err, http.StatusNotFound, res.notFound())
		return
	}
	HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgServerError)
}

func (res resource[E, R]) Create(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		var req R
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}

		entry, err := res.create(c.Request.Context(), res.repo(app), user, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgServerError)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusCreated, response.Success(entry))
	}
}

func (res resource[E, R]) List(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.CurrentUser(c)

		entries, err := res.repo(app).List(c.Request.Context(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, http.StatusInternalServerError, msgServerError)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.List(entries, len(entries)))
	}
}

func (res resource[E, R]) Get(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := res.entryID(c, app)
		if !ok {
			return
		}
		entry, ok := res.load(c, app, id)
		if !ok {
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(entry))
	}
}

// Update decodes the body over the stored entry's values, so omitted fields
// keep their current value.
func (res resource[E, R]) Update(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := res.entryID(c, app)
		if !ok {
			return
		}
		entry, ok := res.load(c, app, id)
		if !ok {
			return
		}

		req := res.requestFrom(entry)
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, http.StatusBadRequest, "Invalid JSON")
			return
		}

		if err := res.update(c.Request.Context(), res.repo(app), &entry, &req); err != nil {
			res.storeError(c, app, err)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Success(entry))
	}
}

func (res resource[E, R]) Delete(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := res.entryID(c, app)
		if !ok {
			return
		}
		user := auth.CurrentUser(c)
		if err := res.repo(app).Delete(c.Request.Context(), user.ID, id); err != nil {
			res.storeError(c, app, err)
			return
		}
		HandleSuccess(c, app.Logger(), http.StatusOK, response.Empty())
	}
}

// register mounts the five CRUD routes on g.
func (res resource[E, R]) register(g *gin.RouterGroup, app App) {
	g.POST("", res.Create(app))
	g.GET("", res.List(app))
	g.GET("/:id", res.Get(app))
	g.PUT("/:id", res.Update(app))
	g.DELETE("/:id", res.Delete(app))
}
