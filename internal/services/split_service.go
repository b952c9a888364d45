package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/docslice/go-pdf-splitter/internal/domain"
	"github.com/docslice/go-pdf-splitter/internal/pdf"
	"github.com/docslice/go-pdf-splitter/internal/store"
)

// SplitService owns the upload → split → track lifecycle of one artifact.
// It writes the upload and the split result under fresh UUID-derived names,
// so no two operations ever touch the same path concurrently.
type SplitService struct {
	Registry store.FileRegistry
	Splitter pdf.Splitter

	UploadDir string
	OutputDir string

	FileTTL     time.Duration // deadline after creation
	DownloadTTL time.Duration // deadline after first download

	// Now is the clock; defaults to time.Now. Injected so tests can advance
	// time without sleeping.
	Now func() time.Time
}

func (s *SplitService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Split stores the uploaded PDF, extracts [startPage, endPage] into a new
// artifact, and registers it for download. endPage == 0 means "through the
// last page".
//
// Errors: ErrNotPDF for a non-.pdf filename; pdf.ErrInvalidRange and
// pdf.ErrInvalidDocument pass through from the adapter; anything else is a
// storage failure. On any failure both artifacts are removed before
// returning, so a failed request leaves no trace on disk.
func (s *SplitService) Split(ctx context.Context, upload io.Reader, filename string, startPage, endPage int) (*domain.StoredFile, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, ErrNotPDF
	}

	id := uuid.NewString()
	inputPath := filepath.Join(s.UploadDir, id+"_input.pdf")
	outputName := id + "_split.pdf"
	outputPath := filepath.Join(s.OutputDir, outputName)

	if err := saveUpload(inputPath, upload); err != nil {
		_ = os.Remove(inputPath)
		return nil, fmt.Errorf("save upload: %w", err)
	}

	pages, err := s.Splitter.Split(ctx, inputPath, outputPath, startPage, endPage)
	if err != nil {
		_ = os.Remove(inputPath)
		_ = os.Remove(outputPath)
		return nil, err
	}

	created := s.now()
	f := &domain.StoredFile{
		ID:         id,
		InputPath:  inputPath,
		OutputPath: outputPath,
		Filename:   outputName,
		Pages:      pages,
		CreatedAt:  created,
		ExpiresAt:  created.Add(s.FileTTL),
	}
	s.Registry.Put(f)

	log.Info().
		Str("file_id", id).
		Int("pages", pages).
		Time("expires_at", f.ExpiresAt).
		Msg("pdf split")
	return f, nil
}

// Download resolves a live record for streaming and marks it downloaded,
// tightening the expiry deadline on the first fetch. A record whose artifact
// has vanished from disk is removed immediately and reported as not found.
func (s *SplitService) Download(ctx context.Context, id string) (*domain.StoredFile, error) {
	_ = ctx
	now := s.now()
	f, err := s.Registry.Get(id, now)
	if err != nil {
		return nil, ErrFileNotFound
	}
	if _, err := os.Stat(f.OutputPath); err != nil {
		// stale record: artifact gone despite a live entry
		_ = os.Remove(f.InputPath)
		s.Registry.Remove(id)
		log.Warn().Str("file_id", id).Msg("removed stale record with missing artifact")
		return nil, ErrFileNotFound
	}
	f, err = s.Registry.MarkDownloaded(id, now, s.DownloadTTL)
	if err != nil {
		return nil, ErrFileNotFound
	}
	return f, nil
}

// Status returns the current record for id, or ErrFileNotFound when the id
// is unknown or past its deadline (even if the sweeper has not collected it).
func (s *SplitService) Status(ctx context.Context, id string) (*domain.StoredFile, error) {
	_ = ctx
	f, err := s.Registry.Get(id, s.now())
	if err != nil {
		return nil, ErrFileNotFound
	}
	return f, nil
}

// saveUpload copies the request body to path without buffering it in memory.
func saveUpload(path string, r io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, r); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
