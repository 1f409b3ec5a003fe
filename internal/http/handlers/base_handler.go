// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tripintake/internal/modules/diagnostics"
	"tripintake/internal/modules/intake"
	"tripintake/internal/modules/quota"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts client-chosen session ids and generated UUIDs.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeIntakeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, intake.ErrBadRequest), errors.Is(err, diagnostics.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, intake.ErrInterimTranscript):
		writeError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, intake.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, intake.ErrForbidden):
		writeError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, quota.ErrExhausted):
		writeError(c, http.StatusTooManyRequests, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// queryLimit reads ?n=, defaulting to def.
func queryLimit(c *gin.Context, def int) (int, bool) {
	raw := c.Query("n")
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
