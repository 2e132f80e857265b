package syncer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"financeflow/internal/models"
	"financeflow/internal/query"
)

var ErrRemoteUnavailable = errors.New("remote authority unavailable")

// Ack confirms the remote accepted a transaction at exactly this revision.
type Ack struct {
	ID        string           `json:"id"`
	UpdatedAt models.Timestamp `json:"updated_at"`
}

//go:generate mockgen -source=syncer.go -destination=mock_authority_test.go -package=syncer_test Authority
type Authority interface {
	Push(ctx context.Context, txs []models.Transaction) ([]Ack, error)
}

// Unavailable is the authority used until a remote exists.
type Unavailable struct{}

func (Unavailable) Push(context.Context, []models.Transaction) ([]Ack, error) {
	return nil, ErrRemoteUnavailable
}

type Store interface {
	query.Source
	CompareAndPatch(ctx context.Context, c models.Collection, id, field string, expected any, fields map[string]any) (bool, error)
}

type Leader interface {
	IsLeader() bool
}

type Runner struct {
	store     Store
	leader    Leader
	authority Authority
	interval  time.Duration
	logger    *slog.Logger
}

// NewRunner builds a runner. A nil leader means this is the only instance.
func NewRunner(store Store, leader Leader, authority Authority, interval time.Duration, logger *slog.Logger) *Runner {
	return &Runner{
		store:     store,
		leader:    leader,
		authority: authority,
		interval:  interval,
		logger:    logger,
	}
}

// Run pushes on every tick while this instance leads, until ctx ends.
func (r *Runner) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if r.leader != nil && !r.leader.IsLeader() {
				continue
			}
			if _, err := r.Push(ctx); err != nil && !errors.Is(err, ErrRemoteUnavailable) {
				r.logger.Error("Failed to push pending transactions", slog.Any("err", err))
			}
		}
	}
}

// Push sends every pending transaction and marks the acknowledged revisions synced.
// A transaction edited after it was pushed keeps its pending status.
func (r *Runner) Push(ctx context.Context) (int, error) {
	pending, err := query.PendingTransactions().Exec(ctx, r.store)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	acks, err := r.authority.Push(ctx, pending)
	if err != nil {
		r.logger.Debug("Push skipped", slog.Int("pending", len(pending)), slog.Any("err", err))
		return 0, err
	}

	synced := 0
	for _, ack := range acks {
		ok, err := r.store.CompareAndPatch(ctx, models.CollectionTransactions, ack.ID,
			"updated_at", ack.UpdatedAt.String(),
			map[string]any{"sync_status": string(models.SyncSynced)},
		)
		if err != nil {
			r.logger.Warn("Failed to apply ack",
				slog.String("id", ack.ID),
				slog.Any("err", err),
			)
			continue
		}
		if ok {
			synced++
		}
	}
	r.logger.Info("Pushed pending transactions",
		slog.Int("pending", len(pending)),
		slog.Int("synced", synced),
	)
	return synced, nil
}
