// Package services implements the use-cases around split-PDF artifacts:
// accepting an upload and producing a split, serving a download, and
// reporting status. This file centralizes the service-level error values so
// handlers can translate them into HTTP statuses consistently.
package services

import "errors"

var (
	// ErrNotPDF is returned when the uploaded filename does not name a PDF.
	ErrNotPDF = errors.New("only PDF files are allowed")

	// ErrFileNotFound indicates that the requested file id is unknown, has
	// expired, or its artifact is no longer on disk.
	ErrFileNotFound = errors.New("file not found or expired")
)
