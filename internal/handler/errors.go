package handler

import (
	"net/http"

	"backoffice/internal/middleware"
	"backoffice/internal/service"
	"backoffice/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var statusByKind = map[service.ErrorKind]int{
	service.KindState:         http.StatusConflict,
	service.KindDuplicate:     http.StatusConflict,
	service.KindConflict:      http.StatusConflict,
	service.KindAuthorization: http.StatusForbidden,
	service.KindValidation:    http.StatusUnprocessableEntity,
	service.KindNotFound:      http.StatusNotFound,
	service.KindConfiguration: http.StatusInternalServerError,
}

// writeError maps a service error onto the response envelope. Internal errors hide
// their message from the client.
func writeError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status, ok := statusByKind[kind]
	if !ok {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, response.ErrorWithCode(http.StatusInternalServerError, string(service.KindInternal), "Internal server error"))
		return
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, response.ErrorWithCode(status, string(kind), err.Error()))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// pathID parses the :id route parameter, answering 400 when it is not a uuid.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "Invalid id: must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// caller returns the authenticated identity; routes without auth never call it.
func caller(c *gin.Context) (middleware.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
	}
	return identity, ok
}
