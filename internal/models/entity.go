package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Collection names one persisted set of documents.
type Collection string

const (
	CollectionProfiles     Collection = "profiles"
	CollectionWallets      Collection = "wallets"
	CollectionCategories   Collection = "categories"
	CollectionTransactions Collection = "transactions"
)

// Collections lists every collection in declaration order.
var Collections = []Collection{
	CollectionProfiles,
	CollectionWallets,
	CollectionCategories,
	CollectionTransactions,
}

type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

func (t CategoryType) Valid() bool {
	return t == CategoryIncome || t == CategoryExpense
}

type SyncStatus string

const (
	SyncPending SyncStatus = "pending"
	SyncSynced  SyncStatus = "synced"
)

func (s SyncStatus) Valid() bool {
	return s == SyncPending || s == SyncSynced
}

// TimestampLayout is the persisted form of every timestamp. Fixed width in UTC,
// so string order matches time order inside the store.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a millisecond-precision UTC instant.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Millisecond)}
}

func Now() Timestamp {
	return NewTimestamp(time.Now())
}

func ParseTimestamp(s string) (Timestamp, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Timestamp{}, err
	}
	return NewTimestamp(t), nil
}

func (t Timestamp) String() string {
	return t.UTC().Format(TimestampLayout)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Record is implemented by the four document types and nothing else.
type Record interface {
	Collection() Collection
	Key() string
	Validate() error
}

type Profile struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	AvatarURL         *string   `json:"avatar_url,omitempty"`
	PreferredCurrency *string   `json:"preferred_currency,omitempty"`
	Language          *string   `json:"language,omitempty"`
	UpdatedAt         Timestamp `json:"updated_at"`
}

func (p *Profile) Collection() Collection { return CollectionProfiles }
func (p *Profile) Key() string            { return p.ID }

func (p *Profile) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.New("id is required")
	}
	if !strings.Contains(p.Email, "@") {
		return fmt.Errorf("email %q is not an address", p.Email)
	}
	return nil
}

type Wallet struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	InitialBalance float64   `json:"initial_balance"`
	// CurrentBalance is denormalized; see service.RecomputeWalletBalance.
	CurrentBalance *float64  `json:"current_balance,omitempty"`
	UpdatedAt      Timestamp `json:"updated_at"`
}

func (w *Wallet) Collection() Collection { return CollectionWallets }
func (w *Wallet) Key() string            { return w.ID }

func (w *Wallet) Validate() error {
	if strings.TrimSpace(w.UserID) == "" {
		return errors.New("user_id is required")
	}
	if strings.TrimSpace(w.Name) == "" {
		return errors.New("name is required")
	}
	return nil
}

type Category struct {
	ID string `json:"id"`
	// UserID is nil for global categories shared by every user.
	UserID    *string      `json:"user_id"`
	Name      string       `json:"name"`
	Icon      string       `json:"icon"`
	Type      CategoryType `json:"type"`
	UpdatedAt Timestamp    `json:"updated_at"`
}

func (c *Category) Collection() Collection { return CollectionCategories }
func (c *Category) Key() string            { return c.ID }

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("name is required")
	}
	if !c.Type.Valid() {
		return fmt.Errorf("type %q must be income or expense", c.Type)
	}
	return nil
}

// IsGlobal reports whether the category is a shared default.
func (c *Category) IsGlobal() bool {
	return c.UserID == nil
}

type Transaction struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	WalletID      string       `json:"wallet_id"`
	CategoryID    string       `json:"category_id"`
	Amount        float64      `json:"amount"`
	Type          CategoryType `json:"type,omitempty"` // mirrors the sign of Amount
	Date          Timestamp    `json:"date"`
	Note          *string      `json:"note,omitempty"`
	AttachmentURL *string      `json:"attachment_url,omitempty"`
	LocalFilePath *string      `json:"local_file_path,omitempty"`
	CreatedAt     Timestamp    `json:"created_at"`
	UpdatedAt     Timestamp    `json:"updated_at"`
	IsDeleted     bool         `json:"is_deleted"`
	SyncStatus    SyncStatus   `json:"sync_status"`
}

func (t *Transaction) Collection() Collection { return CollectionTransactions }
func (t *Transaction) Key() string            { return t.ID }

func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.UserID) == "" {
		return errors.New("user_id is required")
	}
	// zero carries no direction and agrees with either type
	if t.Type != "" && t.Amount != 0 && t.Type != TypeForAmount(t.Amount) {
		return fmt.Errorf("type %q disagrees with amount %v", t.Type, t.Amount)
	}
	if !t.SyncStatus.Valid() {
		return fmt.Errorf("sync_status %q must be pending or synced", t.SyncStatus)
	}
	return nil
}

// TypeForAmount maps an amount's sign to its direction: negative is an expense.
func TypeForAmount(amount float64) CategoryType {
	if amount < 0 {
		return CategoryExpense
	}
	return CategoryIncome
}

// SignedAmount applies the direction of t to the magnitude of amount.
func SignedAmount(t CategoryType, amount float64) float64 {
	if amount < 0 {
		amount = -amount
	}
	if t == CategoryExpense && amount != 0 {
		return -amount
	}
	return amount
}

// NewRecord returns an empty record for the collection.
func NewRecord(c Collection) (Record, error) {
	switch c {
	case CollectionProfiles:
		return &Profile{}, nil
	case CollectionWallets:
		return &Wallet{}, nil
	case CollectionCategories:
		return &Category{}, nil
	case CollectionTransactions:
		return &Transaction{}, nil
	}
	return nil, fmt.Errorf("unknown collection %q", c)
}
