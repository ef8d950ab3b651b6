package handlers

import (
	"errors"
	"net/http"

	apperrors "seatpao/internal/errors"
	"seatpao/internal/logger"
	"seatpao/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// respondError writes err with the status its class maps to. Business rule
// violations are returned verbatim; anything unclassified becomes a 500.
func respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	if status >= http.StatusInternalServerError && !errors.Is(err, apperrors.ErrGatewayUnavailable) {
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).Error("Request failed", "error", err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(status, gin.H{
		"error":     err.Error(),
		"retryable": apperrors.IsRetryable(err),
	})
}

// pathID reads a uuid path parameter, answering 400 when it is malformed
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return "", false
	}
	return id, true
}
