package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/padhy-04/LifeSenseAI/internal"
	"github.com/padhy-04/LifeSenseAI/internal/response"
	"github.com/padhy-04/LifeSenseAI/internal/service"
)

const msgServerError = "Server Error"

// HandleError logs err with the request id and writes msg with status.
// Validation failures always become 400 with their field list.
func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		logger.Warnf("[request_id=%s] validation failed: %v", requestID, err)
		fields := make([]response.FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, response.FieldError{Field: f.Field, Message: f.Message})
		}
		c.JSON(http.StatusBadRequest, response.Invalid("Validation failed", fields))
		return
	}

	if status >= http.StatusInternalServerError {
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	} else {
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	}
	c.JSON(status, response.Fail(msg))
}

func HandleSuccess(c *gin.Context, logger internal.Logger, status int, resp response.APIResponse) {
	logger.Debugf("[request_id=%s] %s %s -> %d", c.GetString("request_id"), c.Request.Method, c.FullPath(), status)
	c.JSON(status, resp)
}
