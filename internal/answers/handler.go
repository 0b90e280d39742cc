package answers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/shared/metrics"
	"docqa-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the answering service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches ask routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ask", h.ask)
	rg.GET("/health/llm", h.probe)
}

type askRequest struct {
	Text        string   `json:"text"`
	DocumentIDs []string `json:"document_ids"`
}

func (h *Handler) ask(c *gin.Context) {
	metrics.IncAskStarted()

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.IncAskFailed()
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	started := time.Now()
	answer, err := h.Svc.Ask(c.Request.Context(), req.Text, req.DocumentIDs)
	metrics.ObserveAskDurationMs(float64(time.Since(started).Milliseconds()))
	if err != nil {
		metrics.IncAskFailed()
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrDocumentsNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "documents not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return
	}

	metrics.IncAskCompleted()
	respond.OK(c, gin.H{"answer": answer})
}

func (h *Handler) probe(c *gin.Context) {
	if err := h.Svc.Probe(c.Request.Context()); err != nil {
		respond.OK(c, gin.H{"status": "error", "message": err.Error()})
		return
	}
	respond.OK(c, gin.H{"status": "success", "message": "completion API is working"})
}
