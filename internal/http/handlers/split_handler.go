// Split and file-lifecycle HTTP handlers.
//
// This file exposes the REST endpoints for split-PDF artifacts:
//   - POST /split-pdf           (upload + extract page range)
//   - GET  /download/{file_id}  (stream the artifact)
//   - GET  /status/{file_id}    (lifecycle state + remaining time)
//
// Handlers are transport-thin: they validate input, call the application
// service, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docslice/go-pdf-splitter/internal/domain"
	"github.com/docslice/go-pdf-splitter/internal/http/middleware"
	"github.com/docslice/go-pdf-splitter/internal/pdf"
	"github.com/docslice/go-pdf-splitter/internal/services"
)

// SplitService defines the artifact lifecycle operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use.
type SplitService interface {
	// Split stores the upload, extracts [startPage, endPage] (endPage 0 =
	// last page), and registers the artifact for download.
	Split(ctx context.Context, upload io.Reader, filename string, startPage, endPage int) (*domain.StoredFile, error)
	// Download resolves a live record for streaming and marks it downloaded.
	Download(ctx context.Context, id string) (*domain.StoredFile, error)
	// Status returns the current record for id.
	Status(ctx context.Context, id string) (*domain.StoredFile, error)
}

// Handlers groups the HTTP endpoints around one SplitService.
type Handlers struct {
	svc SplitService

	// Now is the clock for remaining-time calculations; defaults to time.Now.
	Now func() time.Time
}

// New constructs a Handlers instance bound to the given service.
func New(svc SplitService) *Handlers {
	return &Handlers{svc: svc}
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now().UTC()
	}
	return time.Now().UTC()
}

// SplitResponse is the success payload of POST /split-pdf.
type SplitResponse struct {
	FileID           string `json:"file_id"`
	Message          string `json:"message"`
	DownloadURL      string `json:"download_url"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

// StatusResponse is the success payload of GET /status/{file_id}.
type StatusResponse struct {
	FileID           string `json:"file_id"`
	State            string `json:"state"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
	Downloaded       bool   `json:"downloaded"`
	DownloadURL      string `json:"download_url"`
}

// SplitPDF handles POST /split-pdf. The request is multipart: a "file" part
// carrying the PDF, a "start_page" field (default 1), and an optional
// "end_page" field (default: through the last page).
func (h *Handlers) SplitPDF(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "multipart field 'file' is required")
		return
	}

	startPage, okParse := formInt(c, "start_page", 1)
	if !okParse {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "start_page must be an integer")
		return
	}
	endPage, okParse := formInt(c, "end_page", 0)
	if !okParse {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "end_page must be an integer")
		return
	}

	src, err := fh.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "cannot read upload")
		return
	}
	defer src.Close()

	f, err := h.svc.Split(c.Request.Context(), src, fh.Filename, startPage, endPage)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotPDF):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, services.ErrNotPDF.Error())
		case errors.Is(err, pdf.ErrInvalidRange):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, pdf.ErrInvalidDocument):
			fail(c, http.StatusBadRequest, ErrCodeInvalidDocument, err.Error())
		default:
			middleware.LoggerFrom(c).Error().Err(err).Msg("split failed")
			fail(c, http.StatusInternalServerError, ErrCodeSplitFailed, "error processing PDF")
		}
		return
	}

	ok(c, http.StatusOK, SplitResponse{
		FileID:           f.ID,
		Message:          "PDF split successfully",
		DownloadURL:      "/download/" + f.ID,
		ExpiresInMinutes: int(f.ExpiresAt.Sub(f.CreatedAt).Minutes()),
	})
}

// DownloadPDF handles GET /download/{file_id}. The first successful download
// tightens the record's expiry deadline; the bytes are streamed as an
// attachment.
func (h *Handlers) DownloadPDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	f, err := h.svc.Download(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "file not found or expired")
		return
	}

	c.Header("Content-Type", "application/pdf")
	c.FileAttachment(f.OutputPath, f.Filename)
}

// FileStatus handles GET /status/{file_id}.
func (h *Handlers) FileStatus(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	f, err := h.svc.Status(c.Request.Context(), id)
	if err != nil {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "file not found or expired")
		return
	}

	now := h.now()
	ok(c, http.StatusOK, StatusResponse{
		FileID:           f.ID,
		State:            string(f.StateAt(now)),
		ExpiresInSeconds: int64(math.Ceil(f.ExpiresIn(now).Seconds())),
		Downloaded:       f.DownloadedAt != nil,
		DownloadURL:      "/download/" + f.ID,
	})
}

// formInt parses an optional integer form field, returning def when absent.
func formInt(c *gin.Context, field string, def int) (int, bool) {
	v := strings.TrimSpace(c.PostForm(field))
	if v == "" {
		return def, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
