// README: Diagnostics handlers serving recent parse events and the uncovered-word leaderboard.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripintake/internal/modules/diagnostics"
)

const defaultListed = 50

// DiagnosticsReader is the read side of diagnostics.Service.
type DiagnosticsReader interface {
	Recent(ctx context.Context, n int) ([]diagnostics.Entry, error)
	TopUncovered(ctx context.Context, n int) ([]diagnostics.WordCount, error)
}

type DiagnosticsHandler struct {
	diag DiagnosticsReader
}

func NewDiagnosticsHandler(diag DiagnosticsReader) *DiagnosticsHandler {
	return &DiagnosticsHandler{diag: diag}
}

func (h *DiagnosticsHandler) Recent(c *gin.Context) {
	n, ok := queryLimit(c, defaultListed)
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid n")
		return
	}
	entries, err := h.diag.Recent(c.Request.Context(), n)
	if err != nil {
		writeIntakeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"entries": entries})
}

func (h *DiagnosticsHandler) Uncovered(c *gin.Context) {
	n, ok := queryLimit(c, defaultListed)
	if !ok {
		writeError(c, http.StatusBadRequest, "invalid n")
		return
	}
	words, err := h.diag.TopUncovered(c.Request.Context(), n)
	if err != nil {
		writeIntakeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"words": words})
}
