// Package jobs holds background housekeeping loops.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sealshare/internal/models"
)

// ReaperStore is the persistence surface the reaper sweeps.
type ReaperStore interface {
	GetReapableShares(ctx context.Context, cutoff time.Time, limit int) ([]models.Share, error)
	PurgeShare(ctx context.Context, id uuid.UUID) error
}

// BlobDeleter removes ciphertext objects for purged shares.
type BlobDeleter interface {
	Delete(ctx context.Context, path string) error
}

// Reaper permanently removes expired and tombstoned shares: ciphertext first,
// record second, so a crash mid-sweep leaves a record pointing at a missing
// blob rather than an orphaned blob.
type Reaper struct {
	store    ReaperStore
	blobs    BlobDeleter
	interval time.Duration
	grace    time.Duration
	log      *slog.Logger

	now func() time.Time
}

// NewReaper creates a new reaper. Grace is how long an expired or deleted
// share lingers before its ciphertext is destroyed.
func NewReaper(store ReaperStore, blobs BlobDeleter, interval, grace time.Duration, log *slog.Logger) *Reaper {
	return &Reaper{
		store:    store,
		blobs:    blobs,
		interval: interval,
		grace:    grace,
		log:      log,
		now:      time.Now,
	}
}

// Start begins the background reap loop.
func (r *Reaper) Start(ctx context.Context) {
	r.log.Info("reaper started", "interval", r.interval, "grace", r.grace)

	// Run immediately on start
	r.sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reaper stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// sweep purges one batch of reapable shares.
func (r *Reaper) sweep(ctx context.Context) {
	cutoff := r.now().Add(-r.grace)
	shares, err := r.store.GetReapableShares(ctx, cutoff, 50)
	if err != nil {
		r.log.Error("reaper: failed to list reapable shares", "error", err)
		return
	}

	if len(shares) == 0 {
		return
	}

	r.log.Info("reaper: purging shares", "count", len(shares))

	for _, share := range shares {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if share.FilePath != nil {
			if err := r.blobs.Delete(ctx, *share.FilePath); err != nil {
				// Keep the record so the next sweep retries the blob.
				r.log.Error("reaper: failed to delete blob", "share_id", share.ID, "path", *share.FilePath, "error", err)
				continue
			}
		}

		if err := r.store.PurgeShare(ctx, share.ID); err != nil {
			r.log.Error("reaper: failed to purge share", "share_id", share.ID, "error", err)
		}
	}
}
