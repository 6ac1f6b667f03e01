package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "cardwise/internal/errors"
	"cardwise/internal/logger"
	"cardwise/internal/uuid"
)

// requireUserID validates a caller-supplied user ID. There is no auth layer
// in front of this service; upstream callers pass the user identity
// explicitly.
func requireUserID(userID string) (string, error) {
	if userID == "" {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "user_id is required")
	}
	if !uuid.IsValid(userID) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "user_id must be a UUID")
	}
	return userID, nil
}

// parseStatementID validates the :id path parameter.
func parseStatementID(c *gin.Context) (string, error) {
	id := c.Param("id")
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid statement id")
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response. If the error is an
// *AppError it uses the error's status code, code, and message. Otherwise it
// logs the unexpected error and returns a generic internal server error.
func respondWithError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"path", c.Request.URL.Path,
			)
		}
		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
		return
	}

	logger.Get().Errorw("unexpected error",
		"error", err.Error(),
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
	)
	c.JSON(apperrors.ErrInternalServer.StatusCode, gin.H{
		"error": gin.H{
			"code":    apperrors.ErrInternalServer.Code,
			"message": apperrors.ErrInternalServer.Message,
		},
	})
}
