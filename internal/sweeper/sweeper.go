// Package sweeper runs the periodic expiry sweep: it deletes on-disk
// artifacts whose deadline has passed, drops their registry records, and
// prunes stale rate-limit entries. One sweeper goroutine runs for the
// lifetime of the process and stops cooperatively on shutdown.
package sweeper

import (
	"context"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/docslice/go-pdf-splitter/internal/store"
)

var (
	sweptFiles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pdfsplit_swept_files_total",
		Help: "Expired artifacts removed by the cleanup sweeper.",
	})
	sweepErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pdfsplit_sweep_errors_total",
		Help: "Artifact delete failures during sweeps.",
	})
	prunedEntries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pdfsplit_ratelimit_pruned_total",
		Help: "Stale rate-limit entries pruned.",
	})
	liveRecords = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pdfsplit_live_records",
		Help: "File records currently tracked by the registry.",
	})
)

func init() {
	prometheus.MustRegister(sweptFiles, sweepErrors, prunedEntries, liveRecords)
}

// Sweeper scans the registry on a fixed interval and deletes whatever has
// expired. It is constructed once at startup and driven by Run.
type Sweeper struct {
	Registry   store.FileRegistry
	RateLimits store.RateLimitStore
	Interval   time.Duration

	// Now is the clock; defaults to time.Now. Injected so tests can drive
	// Sweep directly instead of sleeping.
	Now func() time.Time

	// Logger defaults to the global logger.
	Logger *zerolog.Logger
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *Sweeper) logger() *zerolog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return &log.Logger
}

// Run ticks until ctx is cancelled. Each tick performs one sweep and one
// rate-table prune. Run never returns an error: individual failures are
// logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) {
	lg := s.logger()
	lg.Info().Dur("interval", s.Interval).Msg("cleanup sweeper started")

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			lg.Info().Msg("cleanup sweeper stopped")
			return
		case <-ticker.C:
			now := s.now()
			s.Sweep(now)
			if s.RateLimits != nil {
				if n := s.RateLimits.PruneStale(now); n > 0 {
					prunedEntries.Add(float64(n))
					lg.Debug().Int("pruned", n).Msg("pruned stale rate-limit entries")
				}
			}
		}
	}
}

// Sweep removes every record expired at now along with its artifacts.
//
// Per record the files go first and the registry entry second, so a crash
// mid-sweep can leave an orphaned record pointing at missing files (retried
// next tick) but never an untracked file. A delete failure keeps the record
// so the next sweep retries it; other records are unaffected. Sweeping an
// already-clean state is a no-op.
func (s *Sweeper) Sweep(now time.Time) {
	lg := s.logger()

	for _, f := range s.Registry.ListExpired(now) {
		if !s.removeArtifacts(f.ID, f.InputPath, f.OutputPath) {
			continue
		}
		s.Registry.Remove(f.ID)
		sweptFiles.Inc()
		lg.Info().Str("file_id", f.ID).Msg("cleaned up expired files")
	}
	liveRecords.Set(float64(s.Registry.Len()))
}

// removeArtifacts deletes both paths, tolerating already-missing files.
// It reports whether the record is safe to drop.
func (s *Sweeper) removeArtifacts(id string, paths ...string) bool {
	ok := true
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			sweepErrors.Inc()
			s.logger().Error().Err(err).Str("file_id", id).Str("path", p).Msg("sweep delete failed")
			ok = false
		}
	}
	return ok
}
