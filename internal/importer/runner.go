package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/slice/discord-package-exporter/internal/export"
	"github.com/slice/discord-package-exporter/internal/hermes"
	"github.com/slice/discord-package-exporter/internal/progress"
	"github.com/slice/discord-package-exporter/internal/store"
)

// Publisher announces import events. hermes.Client satisfies it.
type Publisher interface {
	Publish(subject string, data any) error
}

// Summary describes a finished run.
type Summary struct {
	RunID      uuid.UUID
	Channels   int
	Messages   int
	StoredRows int64
	Duration   time.Duration
}

// Runner copies every channel of a package into a store, one transaction per
// channel.
type Runner struct {
	pkg      *export.Package
	store    store.Store
	progress progress.Reporter
	events   Publisher
	logger   *slog.Logger
	runID    uuid.UUID
}

// NewRunner creates a runner. events may be nil.
func NewRunner(pkg *export.Package, s store.Store, reporter progress.Reporter, events Publisher, logger *slog.Logger) *Runner {
	return &Runner{
		pkg:      pkg,
		store:    s,
		progress: reporter,
		events:   events,
		logger:   logger,
		runID:    uuid.New(),
	}
}

// RunID identifies this run in logs, events and the status endpoint.
func (r *Runner) RunID() uuid.UUID {
	return r.runID
}

// Run creates the messages table if needed and exports every channel. A
// failure aborts the run; channels committed before it stay committed.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: r.runID}

	if err := r.store.EnsureSchema(ctx); err != nil {
		return sum, fmt.Errorf("prepare: %w", err)
	}

	r.logger.Info("export started", "run_id", r.runID, "package", r.pkg.Root)

	err := r.pkg.WalkChannels(func(ch *export.Channel) error {
		n, err := r.exportChannel(ctx, ch)
		if err != nil {
			return fmt.Errorf("channel %s: %w", ch.Label, err)
		}
		sum.Channels++
		sum.Messages += n

		r.publish(hermes.SubjectChannelCommitted, hermes.ChannelCommitted{
			RunID:     r.runID.String(),
			ChannelID: ch.ID,
			Channel:   ch.Label,
			Messages:  n,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return nil
	})
	r.progress.Done()
	if err != nil {
		return sum, err
	}

	stored, err := r.store.Count(ctx)
	if err != nil {
		return sum, err
	}
	sum.StoredRows = stored
	sum.Duration = time.Since(start)

	r.logger.Info("export complete",
		"run_id", r.runID,
		"channels", sum.Channels,
		"messages", sum.Messages,
		"stored_rows", sum.StoredRows,
		"duration", sum.Duration.String(),
	)
	r.publish(hermes.SubjectImportCompleted, hermes.ImportCompleted{
		RunID:      r.runID.String(),
		Channels:   sum.Channels,
		Messages:   sum.Messages,
		StoredRows: sum.StoredRows,
		Seconds:    sum.Duration.Seconds(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})

	return sum, nil
}

func (r *Runner) exportChannel(ctx context.Context, ch *export.Channel) (int, error) {
	total, err := ch.CountMessages()
	if err != nil {
		return 0, err
	}

	reader, err := ch.OpenMessages()
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	r.progress.Channel(ch.Label, total)

	n := 0
	for {
		msg, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if err := tx.Upsert(ctx, store.NewMessageRow(ch, msg)); err != nil {
			return 0, err
		}
		r.progress.Row(ch.Label, n, total)
		n++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	r.logger.Debug("channel committed", "channel", ch.Label, "channel_id", ch.ID, "messages", n)
	return n, nil
}

// publish is best effort; the database is the source of truth.
func (r *Runner) publish(subject string, data any) {
	if r.events == nil {
		return
	}
	if err := r.events.Publish(subject, data); err != nil {
		r.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
