package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"financeflow/internal/models"
)

type ChangeOp string

const (
	ChangeInsert ChangeOp = "insert"
	ChangePatch  ChangeOp = "patch"
	ChangeRemove ChangeOp = "remove"
	// ChangeExternal means another process committed to the same database.
	// Collection, ID, Before and After are empty.
	ChangeExternal ChangeOp = "external"
)

type ChangeEvent struct {
	Collection models.Collection
	ID         string
	Op         ChangeOp
	Before     Document
	After      Document
}

// subscriber buffers events without bound so a slow reader never blocks a write.
type subscriber struct {
	mu      sync.Mutex
	pending []ChangeEvent
	notify  chan struct{}
}

func (s *subscriber) push(ev ChangeEvent) {
	s.mu.Lock()
	s.pending = append(s.pending, ev)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *subscriber) take() []ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

type feed struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed chan struct{}
	once   sync.Once
}

func newFeed() *feed {
	return &feed{
		subs:   make(map[*subscriber]struct{}),
		closed: make(chan struct{}),
	}
}

func (f *feed) publish(ev ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for s := range f.subs {
		s.push(ev)
	}
}

func (f *feed) close() {
	f.once.Do(func() { close(f.closed) })
}

// subscribe returns a channel of events that is closed when ctx ends or the feed closes.
func (f *feed) subscribe(ctx context.Context) <-chan ChangeEvent {
	out := make(chan ChangeEvent)
	s := &subscriber{notify: make(chan struct{}, 1)}

	f.mu.Lock()
	f.subs[s] = struct{}{}
	f.mu.Unlock()

	go func() {
		defer close(out)
		defer func() {
			f.mu.Lock()
			delete(f.subs, s)
			f.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-f.closed:
				return
			case <-s.notify:
			}
			for _, ev := range s.take() {
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				case <-f.closed:
					return
				}
			}
		}
	}()
	return out
}

// watchExternal polls PRAGMA data_version on the writer connection. The value only moves when
// a different connection commits, and every local write goes through this one connection.
func (s *Store) watchExternal(interval time.Duration) {
	defer close(s.watchDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last int64
	if err := s.writer.QueryRow("PRAGMA data_version").Scan(&last); err != nil {
		s.logger.Error("Failed to read data_version", slog.Any("err", err))
	}
	for {
		select {
		case <-s.feed.closed:
			return
		case <-ticker.C:
		}
		var v int64
		err := s.writer.QueryRow("PRAGMA data_version").Scan(&v)
		if err == sql.ErrConnDone {
			return
		}
		if err != nil {
			s.logger.Warn("Failed to poll data_version", slog.Any("err", err))
			continue
		}
		if v != last {
			last = v
			s.logger.Debug("External change detected", slog.String("path", s.path))
			s.feed.publish(ChangeEvent{Op: ChangeExternal})
		}
	}
}
