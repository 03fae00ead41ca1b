package drive

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultOrphanBatch = 100

// Reconciler repairs what a failed blob delete or a lost quota update leaves
// behind. Everything it does is safe to repeat.
type Reconciler struct {
	users    UserStore
	orphans  OrphanStore
	blobs    BlobStore
	timeout  time.Duration
	interval time.Duration
	logger   *slog.Logger
}

func NewReconciler(deps Deps, opts Options, interval time.Duration, logger *slog.Logger) *Reconciler {
	timeout := opts.BlobTimeout
	if timeout <= 0 {
		timeout = defaultBlobTimeout
	}
	return &Reconciler{
		users:    deps.Users,
		orphans:  deps.Orphans,
		blobs:    deps.Blobs,
		timeout:  timeout,
		interval: interval,
		logger:   logger,
	}
}

// OrphanReport counts the outcome of one RetryOrphans pass.
type OrphanReport struct {
	Removed int
	Failed  int
}

// RetryOrphans makes one more delete attempt for up to limit recorded orphans.
func (r *Reconciler) RetryOrphans(ctx context.Context, limit int) (OrphanReport, error) {
	var report OrphanReport
	if limit <= 0 {
		limit = defaultOrphanBatch
	}

	pending, err := r.orphans.ListPending(ctx, limit)
	if err != nil {
		return report, fmt.Errorf("list orphaned blobs: %w", err)
	}

	for _, orphan := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		dctx, cancel := context.WithTimeout(ctx, r.timeout)
		blobErr := r.blobs.Delete(dctx, orphan.BlobID)
		cancel()

		if blobErr != nil {
			report.Failed++
			r.logger.Warn("orphaned blob still not deleted",
				"blob_id", orphan.BlobID,
				"attempts", orphan.Attempts+1,
				"error", blobErr,
			)
			if err := r.orphans.MarkFailed(ctx, orphan.ID, blobErr.Error()); err != nil {
				return report, err
			}
			continue
		}

		if err := r.orphans.Delete(ctx, orphan.ID); err != nil {
			return report, err
		}
		report.Removed++
	}

	if len(pending) > 0 {
		r.logger.Info("orphaned blobs retried", "removed", report.Removed, "failed", report.Failed)
	}
	return report, nil
}

// RecomputeStorage resets the owner's counter to the sum of their file sizes.
func (r *Reconciler) RecomputeStorage(ctx context.Context, ownerID uuid.UUID) error {
	if err := r.users.RecomputeStorage(ctx, ownerID); err != nil {
		return fmt.Errorf("recompute storage for %s: %w", ownerID, err)
	}
	return nil
}

// RecomputeAll recomputes every user's counter. One failing user does not stop
// the rest; the first error is returned at the end.
func (r *Reconciler) RecomputeAll(ctx context.Context) error {
	ids, err := r.users.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	var first error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.RecomputeStorage(ctx, id); err != nil {
			r.logger.Error("storage recompute failed", "owner_id", id, "error", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Run reconciles once per interval until ctx is done. A zero interval disables it.
func (r *Reconciler) Run(ctx context.Context) error {
	if r.interval <= 0 {
		r.logger.Info("reconciler disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return nil
		case <-ticker.C:
			r.runOnce(ctx)
		}
	}
}

func (r *Reconciler) runOnce(ctx context.Context) {
	if _, err := r.RetryOrphans(ctx, defaultOrphanBatch); err != nil && ctx.Err() == nil {
		r.logger.Error("orphan retry failed", "error", err)
	}
	if err := r.RecomputeAll(ctx); err != nil && ctx.Err() == nil {
		r.logger.Error("storage recompute failed", "error", err)
	}
}
