package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"financeflow/internal/models"
	"financeflow/internal/schema"

	_ "modernc.org/sqlite"
)

type Config struct {
	Path          string
	BusyTimeout   time.Duration
	PollInterval  time.Duration // zero disables the external change watcher
	LeaseTTL      time.Duration // zero disables leader election
	RenewInterval time.Duration
	Registry      *schema.Registry
}

type Store struct {
	path     string
	reader   *sql.DB
	writer   *sql.DB
	registry *schema.Registry
	logger   *slog.Logger
	feed     *feed
	elector  *Elector

	watchDone chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
	onClose   func()
}

func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Set("_txlock", "immediate")
	return "file:" + path + "?" + q.Encode()
}

// New opens an independent instance on cfg.Path, the way a second process would.
// Most callers want Open, which shares one instance per path.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Registry == nil {
		cfg.Registry = schema.Default()
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%w: create data dir: %w", ErrStorage, err)
		}
	}

	writer, err := sql.Open("sqlite", dsn(cfg.Path, cfg.BusyTimeout))
	if err != nil {
		return nil, classify(err)
	}
	// A single writer connection: local commits never move its data_version.
	writer.SetMaxOpenConns(1)
	writer.SetConnMaxLifetime(0)

	reader, err := sql.Open("sqlite", dsn(cfg.Path, cfg.BusyTimeout))
	if err != nil {
		writer.Close()
		return nil, classify(err)
	}

	s := &Store{
		path:      cfg.Path,
		reader:    reader,
		writer:    writer,
		registry:  cfg.Registry,
		logger:    logger,
		feed:      newFeed(),
		watchDone: make(chan struct{}),
	}
	if err := s.declare(ctx); err != nil {
		logger.Error("Failed to initialize store",
			slog.String("path", cfg.Path),
			slog.Any("err", err),
		)
		reader.Close()
		writer.Close()
		return nil, err
	}

	if cfg.PollInterval > 0 {
		go s.watchExternal(cfg.PollInterval)
	} else {
		close(s.watchDone)
	}
	if cfg.LeaseTTL > 0 {
		s.elector = newElector(s.writer, cfg.LeaseTTL, cfg.RenewInterval, logger)
		s.elector.start()
	}
	logger.Info("Store ready", slog.String("path", cfg.Path))
	return s, nil
}

func (s *Store) declare(ctx context.Context) error {
	if _, err := s.writer.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _collections (
			name TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL
		)`); err != nil {
		return classify(err)
	}
	if _, err := s.writer.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _leader (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			holder TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		)`); err != nil {
		return classify(err)
	}
	if _, err := s.writer.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _preferences (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`); err != nil {
		return classify(err)
	}
	for _, d := range s.registry.Definitions() {
		if err := s.declareCollection(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) declareCollection(ctx context.Context, d *schema.Definition) error {
	table := quote(string(d.Collection))
	if _, err := s.writer.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS `+table+` (id TEXT PRIMARY KEY, doc TEXT NOT NULL)`); err != nil {
		return classify(err)
	}
	for _, field := range d.Indexes {
		name := quote("idx_" + string(d.Collection) + "_" + field)
		if _, err := s.writer.ExecContext(ctx,
			`CREATE INDEX IF NOT EXISTS `+name+` ON `+table+` (`+jsonPath(field)+`)`); err != nil {
			return classify(err)
		}
	}

	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO _collections (name, schema_version) VALUES (?, ?)`, string(d.Collection), d.Version)
	err = classify(err)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrConflict) {
		return err
	}
	s.logger.Warn("Collection already declared",
		slog.String("collection", string(d.Collection)),
	)

	var stored int
	if err := s.writer.QueryRowContext(ctx,
		`SELECT schema_version FROM _collections WHERE name = ?`, string(d.Collection)).Scan(&stored); err != nil {
		return classify(err)
	}
	if stored == d.Version {
		return nil
	}
	return s.migrate(ctx, d, stored)
}

// migrate rewrites every document of d from version `stored` up to d.Version using the
// registry's migration steps. Without a complete path the store refuses to open.
func (s *Store) migrate(ctx context.Context, d *schema.Definition, stored int) error {
	if stored > d.Version {
		return fmt.Errorf("%w: %s is at version %d, newer than %d",
			ErrMigrationRequired, d.Collection, stored, d.Version)
	}
	steps := make([]schema.Migration, 0, d.Version-stored)
	for v := stored; v < d.Version; v++ {
		m, ok := s.registry.Migration(d.Collection, v)
		if !ok {
			return fmt.Errorf("%w: no migration for %s from version %d", ErrMigrationRequired, d.Collection, v)
		}
		steps = append(steps, m)
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	table := quote(string(d.Collection))
	rows, err := tx.QueryContext(ctx, `SELECT doc FROM `+table)
	if err != nil {
		return classify(err)
	}
	var docs []Document
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			rows.Close()
			return classify(err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			rows.Close()
			return err
		}
		docs = append(docs, doc)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return classify(err)
	}

	for _, doc := range docs {
		out := map[string]any(doc)
		for _, m := range steps {
			if out, err = m(out); err != nil {
				return fmt.Errorf("%w: migrate %s/%s: %w", ErrStorage, d.Collection, doc.ID(), err)
			}
		}
		raw, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrStorage, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET doc = ? WHERE id = ?`, string(raw), doc.ID()); err != nil {
			return classify(err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE _collections SET schema_version = ? WHERE name = ?`, d.Version, string(d.Collection)); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	s.logger.Info("Collection migrated",
		slog.String("collection", string(d.Collection)),
		slog.Int("from", stored),
		slog.Int("to", d.Version),
	)
	return nil
}

func quote(ident string) string {
	return `"` + ident + `"`
}

func decodeDocument(raw string) (Document, error) {
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: corrupt document: %w", ErrStorage, err)
	}
	return doc, nil
}

// ToDocument converts a record into its stored JSON shape.
func ToDocument(rec models.Record) (Document, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return decodeDocument(string(b))
}

// Decode converts a stored document into a typed record.
func Decode[T any](doc Document) (T, error) {
	var out T
	b, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("%w: decode document: %w", ErrStorage, err)
	}
	return out, nil
}

func (s *Store) table(c models.Collection) (string, error) {
	if s.closed.Load() {
		return "", ErrClosed
	}
	if _, ok := s.registry.Definition(c); !ok {
		return "", fmt.Errorf("%w: unknown collection %q", ErrValidation, c)
	}
	return quote(string(c)), nil
}

// validate canonicalizes doc in place and then checks it.
func (s *Store) validate(c models.Collection, doc Document) error {
	s.registry.Normalize(c, doc)
	if err := s.registry.Validate(c, doc); err != nil {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, rec models.Record) (Document, error) {
	doc, err := ToDocument(rec)
	if err != nil {
		return nil, err
	}
	return s.InsertDocument(ctx, rec.Collection(), doc)
}

func (s *Store) InsertDocument(ctx context.Context, c models.Collection, doc Document) (Document, error) {
	table, err := s.table(c)
	if err != nil {
		return nil, err
	}
	if doc.ID() == "" {
		return nil, fmt.Errorf("%w: %s document without id", ErrValidation, c)
	}
	doc = doc.Clone()
	if err := s.validate(c, doc); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if _, err := s.writer.ExecContext(ctx,
		`INSERT INTO `+table+` (id, doc) VALUES (?, ?)`, doc.ID(), string(raw)); err != nil {
		err = classify(err)
		if !errors.Is(err, ErrConflict) {
			s.logger.Error("Failed to insert document",
				slog.String("collection", string(c)),
				slog.String("id", doc.ID()),
				slog.Any("err", err),
			)
		}
		return nil, err
	}
	after := doc.Clone()
	s.feed.publish(ChangeEvent{Collection: c, ID: doc.ID(), Op: ChangeInsert, After: after})
	return after, nil
}

// FindByID reports absence with false, never with an error.
func (s *Store) FindByID(ctx context.Context, c models.Collection, id string) (Document, bool, error) {
	table, err := s.table(c)
	if err != nil {
		return nil, false, err
	}
	var raw string
	err = s.reader.QueryRowContext(ctx, `SELECT doc FROM `+table+` WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, classify(err)
	}
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

func (s *Store) Find(ctx context.Context, c models.Collection, sel Selector, sort ...SortField) ([]Document, error) {
	table, err := s.table(c)
	if err != nil {
		return nil, err
	}
	where, args, err := sel.where()
	if err != nil {
		return nil, err
	}
	order, err := orderBy(sort)
	if err != nil {
		return nil, err
	}
	rows, err := s.reader.QueryContext(ctx, `SELECT doc FROM `+table+` WHERE `+where+` ORDER BY `+order, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	docs := []Document{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, classify(err)
		}
		doc, err := decodeDocument(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return docs, nil
}

// Patch merges fields into the stored document. Last write wins.
func (s *Store) Patch(ctx context.Context, c models.Collection, id string, fields map[string]any) (Document, error) {
	doc, _, err := s.patch(ctx, c, id, fields, nil)
	return doc, err
}

// CompareAndPatch applies fields only while the stored field still equals expected.
// It reports false, with no error, when the guard fails.
func (s *Store) CompareAndPatch(
	ctx context.Context,
	c models.Collection,
	id string,
	field string,
	expected any,
	fields map[string]any,
) (bool, error) {
	want := normalize(expected)
	_, ok, err := s.patch(ctx, c, id, fields, func(before Document) bool {
		return equal(before[field], want)
	})
	return ok, err
}

func (s *Store) patch(
	ctx context.Context,
	c models.Collection,
	id string,
	fields map[string]any,
	guard func(Document) bool,
) (Document, bool, error) {
	table, err := s.table(c)
	if err != nil {
		return nil, false, err
	}
	if v, ok := fields["id"]; ok && v != id {
		return nil, false, fmt.Errorf("%w: primary key of %s/%s cannot change", ErrValidation, c, id)
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, classify(err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM `+table+` WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
	}
	if err != nil {
		return nil, false, classify(err)
	}
	before, err := decodeDocument(raw)
	if err != nil {
		return nil, false, err
	}
	if guard != nil && !guard(before) {
		return before, false, nil
	}

	after := before.Clone()
	for k, v := range fields {
		after[k] = normalize(v)
	}
	if err := s.validate(c, after); err != nil {
		return nil, false, err
	}
	b, err := json.Marshal(after)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE `+table+` SET doc = ? WHERE id = ?`, string(b), id); err != nil {
		return nil, false, classify(err)
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("Failed to commit patch",
			slog.String("collection", string(c)),
			slog.String("id", id),
			slog.Any("err", err),
		)
		return nil, false, classify(err)
	}
	s.feed.publish(ChangeEvent{Collection: c, ID: id, Op: ChangePatch, Before: before, After: after.Clone()})
	return after, true, nil
}

// Remove hard-deletes a document.
func (s *Store) Remove(ctx context.Context, c models.Collection, id string) error {
	table, err := s.table(c)
	if err != nil {
		return err
	}
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return classify(err)
	}
	defer tx.Rollback()

	var raw string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM `+table+` WHERE id = ?`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, c, id)
	}
	if err != nil {
		return classify(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id); err != nil {
		return classify(err)
	}
	if err := tx.Commit(); err != nil {
		return classify(err)
	}
	before, err := decodeDocument(raw)
	if err != nil {
		before = nil
	}
	s.feed.publish(ChangeEvent{Collection: c, ID: id, Op: ChangeRemove, Before: before})
	return nil
}

// Watch streams every change committed after the call. The channel closes with ctx or the store.
func (s *Store) Watch(ctx context.Context) <-chan ChangeEvent {
	return s.feed.subscribe(ctx)
}

// Elector is nil when leader election is disabled.
func (s *Store) Elector() *Elector {
	return s.elector
}

func (s *Store) Registry() *schema.Registry {
	return s.registry
}

func (s *Store) Path() string {
	return s.path
}

// Close releases leadership, stops the watcher and closes the database. Safe to call twice.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		if s.elector != nil {
			s.elector.stop()
		}
		s.feed.close()
		<-s.watchDone
		err = errors.Join(s.reader.Close(), s.writer.Close())
		if s.onClose != nil {
			s.onClose()
		}
		s.logger.Info("Store closed", slog.String("path", s.path))
	})
	return err
}

// Get returns the typed record stored under id.
func Get[T any](ctx context.Context, s *Store, c models.Collection, id string) (T, bool, error) {
	var zero T
	doc, ok, err := s.FindByID(ctx, c, id)
	if err != nil || !ok {
		return zero, ok, err
	}
	rec, err := Decode[T](doc)
	if err != nil {
		return zero, false, err
	}
	return rec, true, nil
}

// List returns the typed records matching sel.
func List[T any](ctx context.Context, s *Store, c models.Collection, sel Selector, sort ...SortField) ([]T, error) {
	docs, err := s.Find(ctx, c, sel, sort...)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := Decode[T](doc)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}
