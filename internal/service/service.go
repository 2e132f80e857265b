package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"financeflow/internal/models"
	"financeflow/internal/query"
	"financeflow/internal/repository"
	"financeflow/internal/session"
	"financeflow/internal/state"
	"financeflow/internal/stats"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=mock_store_test.go -package=service Store,Cache

type Store interface {
	Insert(ctx context.Context, rec models.Record) (repository.Document, error)
	FindByID(ctx context.Context, c models.Collection, id string) (repository.Document, bool, error)
	Find(ctx context.Context, c models.Collection, sel repository.Selector, sort ...repository.SortField) ([]repository.Document, error)
	Patch(ctx context.Context, c models.Collection, id string, fields map[string]any) (repository.Document, error)
	Remove(ctx context.Context, c models.Collection, id string) error
}

type Cache interface {
	Snapshot() state.Snapshot
	SetUserID(userID *string) state.Snapshot
	SetTheme(theme state.Theme) state.Snapshot
	FetchTransactions(ctx context.Context) (state.Snapshot, error)
	FetchWallets(ctx context.Context) (state.Snapshot, error)
	FetchCategories(ctx context.Context) (state.Snapshot, error)
	FetchAll(ctx context.Context) (state.Snapshot, error)
}

// FinanceService is the only write path for financial records. Every successful write
// refreshes the cached collection it belongs to.
type FinanceService struct {
	store  Store
	cache  Cache
	logger *slog.Logger
	now    func() time.Time
}

func NewFinanceService(store Store, cache Cache, logger *slog.Logger) *FinanceService {
	return &FinanceService{
		store:  store,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// stamp returns the current time, forced strictly after prev so that updated_at always advances.
func (s *FinanceService) stamp(prev any) models.Timestamp {
	now := models.NewTimestamp(s.now())
	raw, ok := prev.(string)
	if !ok {
		return now
	}
	p, err := models.ParseTimestamp(raw)
	if err != nil || now.After(p.Time) {
		return now
	}
	return models.NewTimestamp(p.Add(time.Millisecond))
}

func (s *FinanceService) fail(op string, err error, attrs ...any) error {
	attrs = append(attrs, slog.Any("err", err))
	switch {
	case errors.Is(err, repository.ErrValidation):
		s.logger.Warn(op+" failed: invalid document", attrs...)
	case errors.Is(err, repository.ErrNotFound):
		s.logger.Warn(op+" failed: not found", attrs...)
	case errors.Is(err, repository.ErrConflict):
		s.logger.Warn(op+" failed: already exists", attrs...)
	case errors.Is(err, repository.ErrForbidden):
		s.logger.Warn(op+" failed: not the owner", attrs...)
	default:
		s.logger.Error(op+" failed: storage error", attrs...)
	}
	return err
}

// refetch runs after a successful write. Its failure does not fail the write.
func (s *FinanceService) refetch(ctx context.Context, name string, fetch func(context.Context) (state.Snapshot, error)) {
	if _, err := fetch(ctx); err != nil {
		s.logger.Warn("Refetch after write failed",
			slog.String("collection", name),
			slog.Any("err", err),
		)
	}
}

func (s *FinanceService) AddTransaction(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	rec := *tx
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := s.stamp(nil)
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Date.IsZero() {
		rec.Date = now
	}
	if rec.Type != "" {
		rec.Amount = models.SignedAmount(rec.Type, rec.Amount)
	} else {
		rec.Type = models.TypeForAmount(rec.Amount)
	}
	rec.IsDeleted = false
	rec.SyncStatus = models.SyncPending

	if _, err := s.store.Insert(ctx, &rec); err != nil {
		return nil, s.fail("AddTransaction", err,
			slog.String("transaction_id", rec.ID),
			slog.String("user_id", rec.UserID),
		)
	}
	s.refetch(ctx, "transactions", s.cache.FetchTransactions)
	return &rec, nil
}

func (s *FinanceService) AddWallet(ctx context.Context, w *models.Wallet) (*models.Wallet, error) {
	rec := *w
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UpdatedAt = s.stamp(nil)
	if _, err := s.store.Insert(ctx, &rec); err != nil {
		return nil, s.fail("AddWallet", err, slog.String("wallet_id", rec.ID))
	}
	s.refetch(ctx, "wallets", s.cache.FetchWallets)
	return &rec, nil
}

func (s *FinanceService) AddCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	rec := *c
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UpdatedAt = s.stamp(nil)
	if _, err := s.store.Insert(ctx, &rec); err != nil {
		return nil, s.fail("AddCategory", err, slog.String("category_id", rec.ID))
	}
	s.refetch(ctx, "categories", s.cache.FetchCategories)
	return &rec, nil
}

// checkOwner rejects a document that userID does not own. A profile is owned through its id;
// a global category has no owner and is read-only.
func checkOwner(c models.Collection, doc repository.Document, userID string) error {
	field := "user_id"
	if c == models.CollectionProfiles {
		field = "id"
	}
	if owner, _ := doc[field].(string); owner == "" || owner != userID {
		return fmt.Errorf("%w: %s/%s", repository.ErrForbidden, c, doc.ID())
	}
	return nil
}

// update applies fields to an existing document owned by userID. A missing document is a
// benign race with a concurrent delete: it is logged and the call succeeds without writing.
func (s *FinanceService) update(
	ctx context.Context,
	op string,
	c models.Collection,
	userID, id string,
	fields map[string]any,
	adjust func(current repository.Document, fields map[string]any),
) (bool, error) {
	current, ok, err := s.store.FindByID(ctx, c, id)
	if err != nil {
		return false, s.fail(op, err, slog.String("id", id))
	}
	if !ok {
		s.logger.Warn(op+": document not found, skipping",
			slog.String("collection", string(c)),
			slog.String("id", id),
		)
		return false, nil
	}
	if err := checkOwner(c, current, userID); err != nil {
		return false, s.fail(op, err, slog.String("id", id), slog.String("user_id", userID))
	}
	if adjust != nil {
		adjust(current, fields)
	}
	fields["updated_at"] = s.stamp(current["updated_at"]).String()
	if _, err := s.store.Patch(ctx, c, id, fields); err != nil {
		return false, s.fail(op, err, slog.String("id", id))
	}
	return true, nil
}

// alignTypeAndSign keeps type and the sign of amount consistent. A supplied type decides the
// sign; otherwise the amount decides the type.
func alignTypeAndSign(current repository.Document, fields map[string]any) {
	amount, hasAmount := fields["amount"].(float64)
	typ, hasType := fields["type"].(string)
	switch {
	case hasType:
		if !hasAmount {
			amount, _ = current["amount"].(float64)
		}
		fields["amount"] = models.SignedAmount(models.CategoryType(typ), amount)
	case hasAmount:
		fields["type"] = string(models.TypeForAmount(amount))
	}
}

func (s *FinanceService) UpdateTransaction(ctx context.Context, userID, id string, patch models.TransactionPatch) error {
	fields, err := patch.Fields()
	if err != nil {
		return s.fail("UpdateTransaction", fmt.Errorf("%w: %w", repository.ErrValidation, err))
	}
	fields["sync_status"] = string(models.SyncPending)
	written, err := s.update(ctx, "UpdateTransaction", models.CollectionTransactions, userID, id, fields, alignTypeAndSign)
	if err != nil || !written {
		return err
	}
	s.refetch(ctx, "transactions", s.cache.FetchTransactions)
	return nil
}

func (s *FinanceService) UpdateWallet(ctx context.Context, userID, id string, patch models.WalletPatch) error {
	fields, err := patch.Fields()
	if err != nil {
		return s.fail("UpdateWallet", fmt.Errorf("%w: %w", repository.ErrValidation, err))
	}
	written, err := s.update(ctx, "UpdateWallet", models.CollectionWallets, userID, id, fields, nil)
	if err != nil || !written {
		return err
	}
	s.refetch(ctx, "wallets", s.cache.FetchWallets)
	return nil
}

func (s *FinanceService) UpdateCategory(ctx context.Context, userID, id string, patch models.CategoryPatch) error {
	fields, err := patch.Fields()
	if err != nil {
		return s.fail("UpdateCategory", fmt.Errorf("%w: %w", repository.ErrValidation, err))
	}
	written, err := s.update(ctx, "UpdateCategory", models.CollectionCategories, userID, id, fields, nil)
	if err != nil || !written {
		return err
	}
	s.refetch(ctx, "categories", s.cache.FetchCategories)
	return nil
}

// owned loads a document and checks that userID may change it. Absence is ErrNotFound.
func (s *FinanceService) owned(ctx context.Context, c models.Collection, userID, id string) (repository.Document, error) {
	doc, ok, err := s.store.FindByID(ctx, c, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", repository.ErrNotFound, c, id)
	}
	if err := checkOwner(c, doc, userID); err != nil {
		return nil, err
	}
	return doc, nil
}

// DeleteTransaction leaves a tombstone so the deletion can be synced later.
func (s *FinanceService) DeleteTransaction(ctx context.Context, userID, id string) error {
	current, err := s.owned(ctx, models.CollectionTransactions, userID, id)
	if err != nil {
		return s.fail("DeleteTransaction", err, slog.String("transaction_id", id), slog.String("user_id", userID))
	}
	fields := map[string]any{
		"is_deleted":  true,
		"sync_status": string(models.SyncPending),
		"updated_at":  s.stamp(current["updated_at"]).String(),
	}
	if _, err := s.store.Patch(ctx, models.CollectionTransactions, id, fields); err != nil {
		return s.fail("DeleteTransaction", err, slog.String("transaction_id", id))
	}
	s.refetch(ctx, "transactions", s.cache.FetchTransactions)
	return nil
}

func (s *FinanceService) DeleteWallet(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, models.CollectionWallets, userID, id); err != nil {
		return s.fail("DeleteWallet", err, slog.String("wallet_id", id), slog.String("user_id", userID))
	}
	if err := s.store.Remove(ctx, models.CollectionWallets, id); err != nil {
		return s.fail("DeleteWallet", err, slog.String("wallet_id", id))
	}
	s.refetch(ctx, "wallets", s.cache.FetchWallets)
	return nil
}

func (s *FinanceService) DeleteCategory(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, models.CollectionCategories, userID, id); err != nil {
		return s.fail("DeleteCategory", err, slog.String("category_id", id), slog.String("user_id", userID))
	}
	if err := s.store.Remove(ctx, models.CollectionCategories, id); err != nil {
		return s.fail("DeleteCategory", err, slog.String("category_id", id))
	}
	s.refetch(ctx, "categories", s.cache.FetchCategories)
	return nil
}

// EnsureProfile creates the signed-in user's profile on first sign-in.
func (s *FinanceService) EnsureProfile(ctx context.Context, sess *session.Session) error {
	_, ok, err := s.store.FindByID(ctx, models.CollectionProfiles, sess.UserID)
	if err != nil {
		return s.fail("EnsureProfile", err, slog.String("user_id", sess.UserID))
	}
	if ok {
		return nil
	}
	p := &models.Profile{ID: sess.UserID, Email: sess.Email, UpdatedAt: s.stamp(nil)}
	_, err = s.store.Insert(ctx, p)
	if errors.Is(err, repository.ErrConflict) {
		// Created concurrently by another instance.
		return nil
	}
	if err != nil {
		return s.fail("EnsureProfile", err, slog.String("user_id", sess.UserID))
	}
	s.logger.Info("Profile created", slog.String("user_id", sess.UserID))
	return nil
}

func (s *FinanceService) Profile(ctx context.Context, userID string) (models.Profile, bool, error) {
	doc, ok, err := s.store.FindByID(ctx, models.CollectionProfiles, userID)
	if err != nil || !ok {
		return models.Profile{}, ok, err
	}
	p, err := repository.Decode[models.Profile](doc)
	return p, err == nil, err
}

func (s *FinanceService) UpdateProfile(ctx context.Context, userID string, patch models.ProfilePatch) error {
	fields, err := patch.Fields()
	if err != nil {
		return s.fail("UpdateProfile", fmt.Errorf("%w: %w", repository.ErrValidation, err))
	}
	_, err = s.update(ctx, "UpdateProfile", models.CollectionProfiles, userID, userID, fields, nil)
	return err
}

// RecomputeWalletBalance persists current_balance from the initial balance and the wallet's
// live transactions.
func (s *FinanceService) RecomputeWalletBalance(ctx context.Context, userID, walletID string) (decimal.Decimal, error) {
	doc, err := s.owned(ctx, models.CollectionWallets, userID, walletID)
	if err != nil {
		return decimal.Zero, s.fail("RecomputeWalletBalance", err, slog.String("wallet_id", walletID), slog.String("user_id", userID))
	}
	wallet, err := repository.Decode[models.Wallet](doc)
	if err != nil {
		return decimal.Zero, s.fail("RecomputeWalletBalance", err, slog.String("wallet_id", walletID))
	}

	q := query.WalletTransactions(walletID).Query
	docs, err := s.store.Find(ctx, q.Collection, q.Selector, q.Sort...)
	if err != nil {
		return decimal.Zero, s.fail("RecomputeWalletBalance", err, slog.String("wallet_id", walletID))
	}
	txs := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		tx, err := repository.Decode[models.Transaction](d)
		if err != nil {
			return decimal.Zero, s.fail("RecomputeWalletBalance", err, slog.String("wallet_id", walletID))
		}
		txs = append(txs, tx)
	}

	balance := stats.WalletBalance(wallet, txs)
	fields := map[string]any{
		"current_balance": balance.InexactFloat64(),
		"updated_at":      s.stamp(doc["updated_at"]).String(),
	}
	if _, err := s.store.Patch(ctx, models.CollectionWallets, walletID, fields); err != nil {
		return decimal.Zero, s.fail("RecomputeWalletBalance", err, slog.String("wallet_id", walletID))
	}
	s.refetch(ctx, "wallets", s.cache.FetchWallets)
	return balance, nil
}

// SessionChanged points the cache at the new owner. Sign-in also ensures the profile and
// loads everything; sign-out clears the cache.
func (s *FinanceService) SessionChanged(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		s.cache.SetUserID(nil)
		return nil
	}
	userID := sess.UserID
	s.cache.SetUserID(&userID)
	if err := s.EnsureProfile(ctx, sess); err != nil {
		return err
	}
	_, err := s.cache.FetchAll(ctx)
	return err
}

func (s *FinanceService) Snapshot() state.Snapshot {
	return s.cache.Snapshot()
}

func (s *FinanceService) SetTheme(theme state.Theme) state.Snapshot {
	return s.cache.SetTheme(theme)
}

func (s *FinanceService) FetchTransactions(ctx context.Context) (state.Snapshot, error) {
	return s.cache.FetchTransactions(ctx)
}

func (s *FinanceService) FetchWallets(ctx context.Context) (state.Snapshot, error) {
	return s.cache.FetchWallets(ctx)
}

func (s *FinanceService) FetchCategories(ctx context.Context) (state.Snapshot, error) {
	return s.cache.FetchCategories(ctx)
}
