package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mwantia/godepot/pkg/files"
)

// statusForKind maps service failure kinds onto HTTP status codes.
func statusForKind(kind files.Kind) int {
	switch kind {
	case files.KindInvalidFileType:
		return http.StatusBadRequest
	case files.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case files.KindNotFound, files.KindBlobMissing:
		return http.StatusNotFound
	case files.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a service error as a structured JSON body. Only
// the boundary-safe message crosses the wire; wrapped causes stay
// server-side.
func writeError(c *gin.Context, err error) {
	var se *files.Error
	if errors.As(err, &se) {
		status := statusForKind(se.Kind)
		c.JSON(status, gin.H{
			"error": gin.H{
				"kind":    string(se.Kind),
				"message": se.Message,
				"status":  status,
			},
		})
		return
	}

	writeErrorMessage(c, http.StatusInternalServerError, "Internal Server Error")
}

func writeErrorMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"message": message,
			"status":  status,
		},
	})
}
