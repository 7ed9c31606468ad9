package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"recipehub/internal/apperrors"
)

// respondError translates a domain error into the uniform envelope
// {"status":"error","message":...,"errors":{"detail":...}}. Internal errors
// keep their detail out of the response.
func respondError(c *gin.Context, err error) {
	status := apperrors.Status(err)

	detail := err.Error()
	if status == http.StatusInternalServerError {
		detail = "internal server error"
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{
		"status":  "error",
		"message": apperrors.Message(err),
		"errors":  gin.H{"detail": detail},
	})
}

func respondBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status":  "error",
		"message": "Validation failed",
		"errors":  gin.H{"detail": err.Error()},
	})
}
