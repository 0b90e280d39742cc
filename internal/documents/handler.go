package documents

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/docstore"
	"docqa-backend/internal/extract"
	"docqa-backend/internal/shared/metrics"
	"docqa-backend/internal/shared/server/respond"
)

const maxUploadBytes = 10 << 20

// Handler wires HTTP handlers to the document service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/documents", h.list)
}

func (h *Handler) upload(c *gin.Context) {
	metrics.IncUploadStarted()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		metrics.IncUploadFailed()
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		metrics.IncUploadFailed()
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		metrics.IncUploadFailed()
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	doc, err := h.Svc.Upload(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), content)
	if err != nil {
		metrics.IncUploadFailed()
		switch {
		case errors.Is(err, ErrInvalidInput), errors.Is(err, extract.ErrUnsupported):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
		}
		return
	}

	c.Set("documentId", doc.ID)
	metrics.IncUploadCompleted()
	respond.OK(c, uploadResponse{ID: doc.ID, Text: doc.Text})
}

func (h *Handler) list(c *gin.Context) {
	entries, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", err.Error(), nil)
		return
	}
	if entries == nil {
		entries = []docstore.Entry{}
	}
	respond.OK(c, listResponse{Documents: entries})
}
