package session

import (
	"context"
	"log/slog"
	"sync"
)

// Session is an authenticated identity. UserID is the identity provider's subject.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type Provider interface {
	// Current returns the active session, nil when signed out, and whether the
	// provider is still resolving it.
	Current() (*Session, bool)
	// Subscribe emits the current session and then every change until ctx ends.
	Subscribe(ctx context.Context) <-chan *Session
}

// Listener is told about every session change, nil meaning signed out.
type Listener interface {
	SessionChanged(ctx context.Context, s *Session) error
}

// Bind forwards provider changes to l until ctx ends. Listener errors are logged; the
// binding keeps running.
func Bind(ctx context.Context, p Provider, l Listener, logger *slog.Logger) {
	for s := range p.Subscribe(ctx) {
		if err := l.SessionChanged(ctx, s); err != nil {
			attrs := []any{slog.Any("err", err)}
			if s != nil {
				attrs = append(attrs, slog.String("user_id", s.UserID))
			}
			logger.Error("Failed to apply session change", attrs...)
		}
	}
}

// MemoryProvider keeps the session in process. Subscribers only ever see the latest value.
type MemoryProvider struct {
	mu      sync.Mutex
	current *Session
	loading bool
	subs    map[chan *Session]struct{}
}

func NewMemoryProvider(initial *Session) *MemoryProvider {
	return &MemoryProvider{
		current: clone(initial),
		subs:    make(map[chan *Session]struct{}),
	}
}

func clone(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func (p *MemoryProvider) Current() (*Session, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return clone(p.current), p.loading
}

// SetLoading marks the provider as resolving, e.g. while a token refresh is in flight.
func (p *MemoryProvider) SetLoading(loading bool) {
	p.mu.Lock()
	p.loading = loading
	p.mu.Unlock()
}

func (p *MemoryProvider) SignIn(s Session) {
	p.set(&s)
}

func (p *MemoryProvider) SignOut() {
	p.set(nil)
}

func (p *MemoryProvider) set(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = clone(s)
	p.loading = false
	for ch := range p.subs {
		select {
		case <-ch:
		default:
		}
		ch <- clone(s)
	}
}

func (p *MemoryProvider) Subscribe(ctx context.Context) <-chan *Session {
	in := make(chan *Session, 1)
	p.mu.Lock()
	in <- clone(p.current)
	p.subs[in] = struct{}{}
	p.mu.Unlock()

	out := make(chan *Session)
	go func() {
		defer close(out)
		defer func() {
			p.mu.Lock()
			delete(p.subs, in)
			p.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-in:
				select {
				case out <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
