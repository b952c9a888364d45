// Package domain defines the in-memory records tracked by the service:
// split-PDF artifacts awaiting download and per-client rate-limit entries.
// Nothing here is persisted; a process restart starts from an empty state.
package domain

import "time"

// FileState describes where a stored file is in its lifecycle.
type FileState string

const (
	// StatePendingDownload marks an artifact that has been produced but
	// not yet fetched by the client.
	StatePendingDownload FileState = "PENDING_DOWNLOAD"

	// StateDownloaded marks an artifact that has been fetched at least once.
	StateDownloaded FileState = "DOWNLOADED"

	// StateExpired marks a record whose deadline has passed. Expired records
	// are invisible to the API and are removed by the sweeper.
	StateExpired FileState = "EXPIRED"
)

// StoredFile is the metadata record for one produced split-PDF artifact.
//
// Fields:
//   - ID: opaque UUID naming the artifact; part of the download URL.
//   - InputPath / OutputPath: the uploaded original and the split result on
//     disk. Both are deleted together when the record expires.
//   - Filename: the name offered to the client on download.
//   - Pages: number of pages in the split result.
//   - CreatedAt: when splitting completed.
//   - DownloadedAt: set on the first successful download, nil before that.
//   - ExpiresAt: deletion deadline. Starts at CreatedAt + file TTL and is
//     only ever tightened (a download can shorten the remaining time,
//     never extend it).
type StoredFile struct {
	ID           string     `json:"file_id"`
	InputPath    string     `json:"-"`
	OutputPath   string     `json:"-"`
	Filename     string     `json:"filename"`
	Pages        int        `json:"pages"`
	CreatedAt    time.Time  `json:"created_at"`
	DownloadedAt *time.Time `json:"downloaded_at,omitempty"`
	ExpiresAt    time.Time  `json:"-"`
}

// Expired reports whether the record's deadline has passed at now.
func (f *StoredFile) Expired(now time.Time) bool {
	return !now.Before(f.ExpiresAt)
}

// ExpiresIn returns the remaining lifetime at now, floored at zero.
func (f *StoredFile) ExpiresIn(now time.Time) time.Duration {
	d := f.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// StateAt derives the lifecycle state of the record at now.
func (f *StoredFile) StateAt(now time.Time) FileState {
	switch {
	case f.Expired(now):
		return StateExpired
	case f.DownloadedAt != nil:
		return StateDownloaded
	default:
		return StatePendingDownload
	}
}

// Clone returns a shallow copy safe to hand outside the registry lock.
func (f *StoredFile) Clone() *StoredFile {
	cp := *f
	if f.DownloadedAt != nil {
		t := *f.DownloadedAt
		cp.DownloadedAt = &t
	}
	return &cp
}

// RateLimitEntry records the most recent accepted request for one client.
type RateLimitEntry struct {
	ClientKey     string
	LastRequestAt time.Time
}
