// Package pdf wraps pdfcpu behind a narrow splitting interface. The library
// is the sole authority on document structure: page counts, validation, and
// extraction all come from it, and its failures surface as a single
// invalid-document error so handlers can map them to one status.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	// ErrInvalidRange is returned for a structurally bad page range before
	// the document is even opened: startPage < 1 or endPage < startPage.
	ErrInvalidRange = errors.New("invalid page range")

	// ErrInvalidDocument is returned when pdfcpu rejects the input (not a
	// PDF, corrupt, encrypted) or when startPage lies beyond the last page.
	ErrInvalidDocument = errors.New("invalid PDF document")
)

// Splitter extracts an inclusive 1-based page range into a new PDF.
type Splitter interface {
	// Split reads inputPath, writes pages [startPage, endPage] to outputPath,
	// and returns the number of pages written. endPage == 0 means "through
	// the last page"; an endPage beyond the document is clamped to it.
	// On any failure no partial output file is left behind.
	Split(ctx context.Context, inputPath, outputPath string, startPage, endPage int) (int, error)
}

// PdfcpuSplitter implements Splitter using pdfcpu's trim operation.
type PdfcpuSplitter struct{}

// NewSplitter returns a ready-to-use pdfcpu-backed Splitter.
func NewSplitter() *PdfcpuSplitter { return &PdfcpuSplitter{} }

// Split implements Splitter.
func (s *PdfcpuSplitter) Split(ctx context.Context, inputPath, outputPath string, startPage, endPage int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if startPage < 1 {
		return 0, fmt.Errorf("%w: start_page must be >= 1, got %d", ErrInvalidRange, startPage)
	}
	if endPage != 0 && endPage < startPage {
		return 0, fmt.Errorf("%w: end_page %d is before start_page %d", ErrInvalidRange, endPage, startPage)
	}

	conf := model.NewDefaultConfiguration()

	pageCount, err := api.PageCountFile(inputPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if startPage > pageCount {
		return 0, fmt.Errorf("%w: start_page %d exceeds page count %d", ErrInvalidDocument, startPage, pageCount)
	}
	if endPage == 0 || endPage > pageCount {
		endPage = pageCount
	}

	selected := []string{fmt.Sprintf("%d-%d", startPage, endPage)}
	if err := api.TrimFile(inputPath, outputPath, selected, conf); err != nil {
		// trim may have started writing before failing
		_ = os.Remove(outputPath)
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return endPage - startPage + 1, nil
}
