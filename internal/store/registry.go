// Package store holds the two pieces of shared mutable state in the process:
// the file registry and the rate-limit table. Both live behind small
// interfaces so handlers, services, and the sweeper depend on contracts
// rather than concrete maps, and both are constructed at startup and torn
// down with the process.
package store

import (
	"errors"
	"sync"
	"time"

	"github.com/docslice/go-pdf-splitter/internal/domain"
)

// ErrNotFound is returned when a file id has no live record. Expired records
// that the sweeper has not collected yet are reported the same way, so expiry
// is exact at the API even though deletion is periodic.
var ErrNotFound = errors.New("file not found")

// FileRegistry tracks split-PDF artifacts from creation to deletion.
//
// Implementations must serialize all mutations so that a download request and
// a sweeper tick evaluating the same record never interleave.
type FileRegistry interface {
	// Put registers a new record under its ID.
	Put(f *domain.StoredFile)

	// Get returns a copy of a live record, or ErrNotFound if the id is
	// unknown or the record has expired at now.
	Get(id string, now time.Time) (*domain.StoredFile, error)

	// MarkDownloaded records the first download at now and tightens the
	// expiry deadline to min(expiresAt, now+downloadTTL). Repeated calls are
	// idempotent: only the first download moves the deadline. Returns a copy
	// of the updated record or ErrNotFound.
	MarkDownloaded(id string, now time.Time, downloadTTL time.Duration) (*domain.StoredFile, error)

	// ListExpired returns copies of every record whose deadline has passed.
	ListExpired(now time.Time) []*domain.StoredFile

	// Remove deletes a record. The caller deletes the underlying files first.
	Remove(id string)

	// Len reports the number of live records.
	Len() int
}

// MemoryRegistry is the in-process FileRegistry. A single mutex guards the
// map; given one request per client per day, contention is not a concern.
type MemoryRegistry struct {
	mu    sync.Mutex
	files map[string]*domain.StoredFile
}

// NewMemoryRegistry returns an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{files: make(map[string]*domain.StoredFile)}
}

// Put registers f under its ID, overwriting any stale record with the same id.
func (r *MemoryRegistry) Put(f *domain.StoredFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[f.ID] = f.Clone()
}

// Get implements FileRegistry.
func (r *MemoryRegistry) Get(id string, now time.Time) (*domain.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok || f.Expired(now) {
		return nil, ErrNotFound
	}
	return f.Clone(), nil
}

// MarkDownloaded implements FileRegistry.
func (r *MemoryRegistry) MarkDownloaded(id string, now time.Time, downloadTTL time.Duration) (*domain.StoredFile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok || f.Expired(now) {
		return nil, ErrNotFound
	}
	if f.DownloadedAt == nil {
		t := now
		f.DownloadedAt = &t
		if deadline := now.Add(downloadTTL); deadline.Before(f.ExpiresAt) {
			f.ExpiresAt = deadline
		}
	}
	return f.Clone(), nil
}

// ListExpired implements FileRegistry. It returns copies so the sweeper can
// delete files outside the lock.
func (r *MemoryRegistry) ListExpired(now time.Time) []*domain.StoredFile {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.StoredFile
	for _, f := range r.files {
		if f.Expired(now) {
			out = append(out, f.Clone())
		}
	}
	return out
}

// Remove implements FileRegistry. Removing an absent id is a no-op.
func (r *MemoryRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.files, id)
}

// Len implements FileRegistry.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files)
}
