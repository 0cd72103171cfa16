// Package ingest drives archives through parsing and reconciliation
// into the store.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/nhle/bugzilla-recovery/internal/bugmail"
	"github.com/nhle/bugzilla-recovery/internal/model"
	"github.com/nhle/bugzilla-recovery/internal/reconcile"
	"github.com/nhle/bugzilla-recovery/internal/source"
	"github.com/nhle/bugzilla-recovery/internal/store"
)

// Driver ingests archives one message at a time, committing every
// batchSize messages.
type Driver struct {
	store      store.Store
	reconciler *reconcile.Reconciler
	logger     *zap.Logger
	batchSize  int
}

// NewDriver creates a Driver. A batchSize below 1 falls back to
// model.DefaultBatchSize.
func NewDriver(s store.Store, batchSize int, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize < 1 {
		batchSize = model.DefaultBatchSize
	}
	return &Driver{
		store:      s,
		reconciler: reconcile.New(logger),
		logger:     logger,
		batchSize:  batchSize,
	}
}

// Run ingests every message of archive. Per-message problems are logged
// and counted; only store failures end the run early, in which case the
// uncommitted batch is lost.
func (d *Driver) Run(ctx context.Context, archive source.Archive) (Stats, error) {
	stats := Stats{Archive: archive.Name()}
	log := d.logger.With(zap.String("archive", archive.Name()))

	run, err := d.store.StartRun(ctx, archive.Name())
	if err != nil {
		return stats, err
	}

	batch, err := d.store.Begin(ctx)
	if err != nil {
		return stats, err
	}

	pending := 0
	for {
		raw, err := archive.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			batch.Rollback()
			return stats, fmt.Errorf("reading %s: %w", archive.Name(), err)
		}
		stats.Messages++

		if err := d.process(ctx, batch, raw, stats.Messages, &stats, log); err != nil {
			batch.Rollback()
			return stats, err
		}

		pending++
		if pending < d.batchSize {
			continue
		}
		if err := batch.Commit(); err != nil {
			return stats, err
		}
		log.Debug("batch committed", zap.Int("messages", stats.Messages))
		pending = 0
		if batch, err = d.store.Begin(ctx); err != nil {
			return stats, err
		}
	}

	if err := batch.Commit(); err != nil {
		return stats, err
	}

	run.Messages = stats.Messages
	run.IssuesInserted = stats.IssuesInserted
	run.IssuesUpdated = stats.IssuesUpdated
	run.CommentsInserted = stats.CommentsInserted
	if err := d.store.FinishRun(ctx, run); err != nil {
		return stats, err
	}

	log.Info("archive ingested",
		zap.String("run", run.ID),
		zap.Int("messages", stats.Messages),
		zap.Int("issues_inserted", stats.IssuesInserted),
		zap.Int("issues_updated", stats.IssuesUpdated),
		zap.Int("comments_inserted", stats.CommentsInserted),
	)
	return stats, nil
}

// RunAll ingests archives in order, closing each once it is done. It
// stops at the first failing archive.
func (d *Driver) RunAll(ctx context.Context, archives []source.Archive) ([]Stats, error) {
	var all []Stats
	for i, a := range archives {
		stats, err := d.Run(ctx, a)
		all = append(all, stats)
		if closeErr := a.Close(); closeErr != nil {
			d.logger.Warn("closing archive", zap.String("archive", a.Name()), zap.Error(closeErr))
		}
		if err != nil {
			for _, rest := range archives[i+1:] {
				_ = rest.Close()
			}
			return all, err
		}
	}
	return all, nil
}

// process handles one raw message. The returned error is always a store
// failure.
func (d *Driver) process(
	ctx context.Context,
	batch *store.Batch,
	raw []byte,
	n int,
	stats *Stats,
	log *zap.Logger,
) error {
	msg, err := bugmail.ParseMessage(raw)
	if err != nil {
		stats.UnreadableHeader++
		log.Warn("skipping unreadable message", zap.Int("message", n), zap.Error(err))
		return nil
	}

	if msg.Eligibility == bugmail.Ineligible {
		stats.SkippedCategory++
		log.Debug("skipping message", zap.Int("message", n), zap.String("category", msg.Category.Label()))
		return nil
	}
	if msg.SubjectErr != nil {
		stats.MalformedSubject++
		log.Warn("skipping message", zap.Int("message", n), zap.Error(msg.SubjectErr))
		return nil
	}
	if msg.DateErr != nil {
		stats.UndatedMessages++
		log.Warn("message has no usable date",
			zap.Int("message", n),
			zap.Int64("issue_id", msg.Subject.IssueID),
			zap.Error(msg.DateErr),
		)
	}
	stats.UnreadableParts += msg.UnreadableParts

	res, err := d.reconciler.Apply(ctx, batch, msg)
	if err != nil {
		return fmt.Errorf("message %d: %w", n, err)
	}
	stats.record(res)
	return nil
}
