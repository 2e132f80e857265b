package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Elector holds an advisory lease in the shared database. At most one live instance holds it;
// when the holder releases it or stops renewing, the next instance to tick takes over.
// Leadership never gates reads or writes.
type Elector struct {
	db     *sql.DB
	id     string
	ttl    time.Duration
	renew  time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu     sync.Mutex
	leader bool
	subs   []chan bool

	quit chan struct{}
	done chan struct{}
	once sync.Once
}

func newElector(db *sql.DB, ttl, renew time.Duration, logger *slog.Logger) *Elector {
	if renew <= 0 || renew >= ttl {
		renew = ttl / 3
	}
	return &Elector{
		db:     db,
		id:     uuid.NewString(),
		ttl:    ttl,
		renew:  renew,
		logger: logger,
		now:    time.Now,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (e *Elector) ID() string {
	return e.id
}

func (e *Elector) IsLeader() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.leader
}

// Leadership returns a channel carrying the current state and then every change.
// Only the latest state is buffered.
func (e *Elector) Leadership() <-chan bool {
	ch := make(chan bool, 1)
	e.mu.Lock()
	ch <- e.leader
	e.subs = append(e.subs, ch)
	e.mu.Unlock()
	return ch
}

func (e *Elector) set(leader bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.leader == leader {
		return
	}
	e.leader = leader
	if leader {
		e.logger.Info("Acquired leadership", slog.String("instance", e.id))
	} else {
		e.logger.Info("Lost leadership", slog.String("instance", e.id))
	}
	for _, ch := range e.subs {
		select {
		case <-ch:
		default:
		}
		ch <- leader
	}
}

func (e *Elector) start() {
	e.tick(context.Background())
	go func() {
		defer close(e.done)
		ticker := time.NewTicker(e.renew)
		defer ticker.Stop()
		for {
			select {
			case <-e.quit:
				return
			case <-ticker.C:
				e.tick(context.Background())
			}
		}
	}()
}

// tick takes the lease when it is free, expired or already ours, and extends it.
func (e *Elector) tick(ctx context.Context) {
	leader, err := e.acquire(ctx)
	if err != nil {
		e.logger.Warn("Leader lease check failed",
			slog.String("instance", e.id),
			slog.Any("err", err),
		)
		leader = false
	}
	e.set(leader)
}

func (e *Elector) acquire(ctx context.Context) (bool, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return false, classify(err)
	}
	defer tx.Rollback()

	now := e.now().UnixMilli()
	var (
		holder  string
		expires int64
	)
	err = tx.QueryRowContext(ctx, `SELECT holder, expires_at FROM _leader WHERE id = 1`).Scan(&holder, &expires)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return false, classify(err)
	case holder != e.id && expires > now:
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO _leader (id, holder, expires_at) VALUES (1, ?, ?)`,
		e.id, now+e.ttl.Milliseconds()); err != nil {
		return false, classify(err)
	}
	if err := tx.Commit(); err != nil {
		return false, classify(err)
	}
	return true, nil
}

// Release gives up the lease if held. The elector keeps ticking and may win it back later.
func (e *Elector) Release(ctx context.Context) error {
	_, err := e.db.ExecContext(ctx, `DELETE FROM _leader WHERE id = 1 AND holder = ?`, e.id)
	e.set(false)
	return classify(err)
}

func (e *Elector) stop() {
	e.once.Do(func() {
		close(e.quit)
		<-e.done
		if err := e.Release(context.Background()); err != nil {
			e.logger.Warn("Failed to release leadership", slog.Any("err", err))
		}
		e.mu.Lock()
		for _, ch := range e.subs {
			close(ch)
		}
		e.subs = nil
		e.mu.Unlock()
	})
}
