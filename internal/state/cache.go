package state

import (
	"context"
	"log/slog"
	"sync"

	"financeflow/internal/models"
	"financeflow/internal/query"

	"golang.org/x/sync/errgroup"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

const themeKey = "theme_mode"

// Source is where the cache reads collections from and keeps the theme.
type Source interface {
	query.Source
	Preference(ctx context.Context, key string) (string, bool, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Snapshot is an immutable view of the cache. Slices are replaced on fetch, never mutated,
// so holders may keep them.
type Snapshot struct {
	UserID       *string              `json:"user_id"`
	Loading      bool                 `json:"loading"`
	Theme        Theme                `json:"theme"`
	Transactions []models.Transaction `json:"transactions"`
	Wallets      []models.Wallet      `json:"wallets"`
	Categories   []models.Category    `json:"categories"`
}

type model struct {
	userID       *string
	inflight     int
	started      map[string]uint64 // last fetch sequence issued per collection
	applied      map[string]uint64 // sequence of the result currently held
	theme        Theme
	transactions []models.Transaction
	wallets      []models.Wallet
	categories   []models.Category
}

func (m *model) snapshot() Snapshot {
	s := Snapshot{
		Loading:      m.inflight > 0,
		Theme:        m.theme,
		Transactions: m.transactions,
		Wallets:      m.wallets,
		Categories:   m.categories,
	}
	if m.userID != nil {
		id := *m.userID
		s.UserID = &id
	}
	return s
}

func (m *model) clear() {
	m.transactions = []models.Transaction{}
	m.wallets = []models.Wallet{}
	m.categories = []models.Category{}
}

type action struct {
	apply func(*model)
	reply chan Snapshot
}

// Cache owns the application state on a single goroutine. Every read and write is an action
// sent to it.
type Cache struct {
	src     Source
	logger  *slog.Logger
	actions chan action
	quit    chan struct{}
	done    chan struct{}
	themeMu sync.Mutex
}

// NewCache starts the owning goroutine with the saved theme, or light when none was saved.
func NewCache(src Source, logger *slog.Logger) *Cache {
	c := &Cache{
		src:     src,
		logger:  logger,
		actions: make(chan action),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.run(c.loadTheme())
	return c
}

func (c *Cache) loadTheme() Theme {
	v, ok, err := c.src.Preference(context.Background(), themeKey)
	if err != nil {
		c.logger.Warn("Failed to load theme, using light", slog.Any("err", err))
		return ThemeLight
	}
	if !ok || !Theme(v).Valid() {
		return ThemeLight
	}
	return Theme(v)
}

func (c *Cache) run(theme Theme) {
	defer close(c.done)
	m := &model{
		theme:   theme,
		started: map[string]uint64{},
		applied: map[string]uint64{},
	}
	m.clear()
	for {
		select {
		case <-c.quit:
			return
		case a := <-c.actions:
			a.apply(m)
			a.reply <- m.snapshot()
		}
	}
}

func (c *Cache) dispatch(apply func(*model)) Snapshot {
	a := action{apply: apply, reply: make(chan Snapshot, 1)}
	select {
	case c.actions <- a:
		return <-a.reply
	case <-c.done:
		return Snapshot{}
	}
}

// Close stops the owning goroutine. Later calls return empty snapshots.
func (c *Cache) Close() {
	select {
	case <-c.quit:
	default:
		close(c.quit)
	}
	<-c.done
}

func (c *Cache) Snapshot() Snapshot {
	return c.dispatch(func(*model) {})
}

// SetUserID switches the owning identity. Any change of owner, including logout, drops the
// cached collections.
func (c *Cache) SetUserID(userID *string) Snapshot {
	return c.dispatch(func(m *model) {
		if sameOwner(m.userID, userID) {
			return
		}
		if userID == nil {
			m.userID = nil
		} else {
			id := *userID
			m.userID = &id
		}
		m.clear()
	})
}

// SetTheme applies and saves the theme. A failed save is logged and the theme still applies
// for this run.
func (c *Cache) SetTheme(theme Theme) Snapshot {
	c.themeMu.Lock()
	defer c.themeMu.Unlock()
	if err := c.src.SetPreference(context.Background(), themeKey, string(theme)); err != nil {
		c.logger.Error("Failed to save theme", slog.String("theme", string(theme)), slog.Any("err", err))
	}
	return c.dispatch(func(m *model) { m.theme = theme })
}

// Reset drops identity and data but keeps the theme.
func (c *Cache) Reset() Snapshot {
	return c.dispatch(func(m *model) {
		m.userID = nil
		m.clear()
	})
}

func (c *Cache) FetchTransactions(ctx context.Context) (Snapshot, error) {
	return fetch(ctx, c, "transactions", query.Transactions, func(m *model, items []models.Transaction) {
		m.transactions = items
	})
}

func (c *Cache) FetchWallets(ctx context.Context) (Snapshot, error) {
	return fetch(ctx, c, "wallets", query.Wallets, func(m *model, items []models.Wallet) {
		m.wallets = items
	})
}

func (c *Cache) FetchCategories(ctx context.Context) (Snapshot, error) {
	return fetch(ctx, c, "categories", query.Categories, func(m *model, items []models.Category) {
		m.categories = items
	})
}

// FetchAll refreshes the three collections in parallel. Without an identity it does nothing.
func (c *Cache) FetchAll(ctx context.Context) (Snapshot, error) {
	if c.Snapshot().UserID == nil {
		return c.Snapshot(), nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { _, err := c.FetchTransactions(gctx); return err })
	g.Go(func() error { _, err := c.FetchWallets(gctx); return err })
	g.Go(func() error { _, err := c.FetchCategories(gctx); return err })
	err := g.Wait()
	return c.Snapshot(), err
}

// fetch runs the query off the owning goroutine and applies the result only if the owner
// did not change in the meantime and no later-started fetch of the same collection landed first.
func fetch[T any](
	ctx context.Context,
	c *Cache,
	name string,
	build func(userID string) query.Typed[T],
	assign func(*model, []T),
) (Snapshot, error) {
	var (
		owner *string
		seq   uint64
	)
	snap := c.dispatch(func(m *model) {
		owner = m.userID
		if owner != nil {
			m.inflight++
			m.started[name]++
			seq = m.started[name]
		}
	})
	if owner == nil {
		return snap, nil
	}

	items, err := build(*owner).Exec(ctx, c.src)
	snap = c.dispatch(func(m *model) {
		m.inflight--
		if err != nil {
			return
		}
		if !sameOwner(m.userID, owner) {
			c.logger.Debug("Discarding stale fetch",
				slog.String("collection", name),
				slog.String("user_id", *owner),
			)
			return
		}
		if seq < m.applied[name] {
			return
		}
		m.applied[name] = seq
		assign(m, items)
	})
	if err != nil {
		c.logger.Error("Failed to fetch "+name,
			slog.String("user_id", *owner),
			slog.Any("err", err),
		)
		return snap, err
	}
	return snap, nil
}

func sameOwner(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
