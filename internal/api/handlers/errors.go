package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/devicehub/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps service errors onto status codes. Anything unrecognised is
// a 500 with message as the public error.
func respondError(c *gin.Context, err error, message string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found", "details": err.Error()})
	case errors.Is(err, domain.ErrItemUnavailable),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, domain.ErrLoanClosed),
		errors.Is(err, domain.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": message, "details": err.Error()})
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrItemReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": message, "details": err.Error()})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg(message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
	}
}

func bindJSON(c *gin.Context, form any) bool {
	if err := c.ShouldBindJSON(form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return false
	}
	return true
}
