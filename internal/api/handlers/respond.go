package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/psgpraveen/PolicyPilot/internal/attachment"
	"github.com/psgpraveen/PolicyPilot/internal/services"
	"github.com/psgpraveen/PolicyPilot/internal/store"
)

// respondError maps a domain error to the response envelope. Everything
// unrecognized becomes a logged 500 with a generic message; internal
// detail never reaches the caller. notFoundMessage names the entity for
// 404 responses.
func respondError(c *gin.Context, logger *zap.Logger, err error, notFoundMessage string) {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		message := "Validation failed"
		if len(validationErr.Fields) == 1 {
			message = validationErr.Fields[0].Message
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   message,
			"details": validationErr.Fields,
		})
	case errors.Is(err, attachment.ErrFileType), errors.Is(err, attachment.ErrFileTooLarge):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errMalformedForm):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
	case errors.Is(err, store.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User with this email already exists"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	case errors.Is(err, services.ErrNoAttachment):
		c.JSON(http.StatusNotFound, gin.H{"error": "No attachment found"})
	case errors.Is(err, store.ErrNotFound):
		if notFoundMessage == "" {
			notFoundMessage = "Not found"
		}
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMessage})
	default:
		logger.Error("Unhandled request error",
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
