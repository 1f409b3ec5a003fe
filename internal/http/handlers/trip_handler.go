// README: Trip intake handlers; stateless parse plus per-session drafts.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripintake/internal/http/middleware"
	"tripintake/internal/modules/intake"
)

type TripHandler struct {
	intake *intake.Service
}

func NewTripHandler(svc *intake.Service) *TripHandler {
	return &TripHandler{intake: svc}
}

type transcriptReq struct {
	Transcript string `json:"transcript"`
	// Final mirrors the speech recognizer's isFinal flag.
	Final bool `json:"final"`
	// Debug adds the matched tokens and uncovered words to a parse response.
	Debug bool `json:"debug"`
}

// Parse runs the parser on one transcript without touching any draft.
func (h *TripHandler) Parse(c *gin.Context) {
	var req transcriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	analysis, err := h.intake.Parse(c.Request.Context(), intake.ParseCommand{
		UID:        middleware.CallerUID(c),
		Transcript: req.Transcript,
		Final:      req.Final,
	})
	if err != nil {
		writeIntakeError(c, err)
		return
	}
	if !req.Debug {
		writeJSON(c, http.StatusOK, gin.H{"fields": analysis.Fields})
		return
	}
	writeJSON(c, http.StatusOK, analysis)
}

// Create starts a new draft from its first utterance.
func (h *TripHandler) Create(c *gin.Context) {
	var req transcriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.intake.Submit(c.Request.Context(), intake.SubmitCommand{
		UID:        middleware.CallerUID(c),
		Transcript: req.Transcript,
		Final:      req.Final,
	})
	if err != nil {
		writeIntakeError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, res)
}

// AddUtterance merges one more utterance into the draft, creating it under
// the given id when it does not exist yet.
func (h *TripHandler) AddUtterance(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid draft id")
		return
	}
	var req transcriptReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	res, err := h.intake.Submit(c.Request.Context(), intake.SubmitCommand{
		SessionID:  id,
		UID:        middleware.CallerUID(c),
		Transcript: req.Transcript,
		Final:      req.Final,
	})
	if err != nil {
		writeIntakeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

func (h *TripHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid draft id")
		return
	}
	d, err := h.intake.Get(c.Request.Context(), id, middleware.CallerUID(c))
	if err != nil {
		writeIntakeError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, d)
}

func (h *TripHandler) Discard(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid draft id")
		return
	}
	if err := h.intake.Discard(c.Request.Context(), id, middleware.CallerUID(c)); err != nil {
		writeIntakeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
