package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Patches carry only the fields a caller wants to change; nil pointers are left alone.

type TransactionPatch struct {
	WalletID      *string       `json:"wallet_id,omitempty"`
	CategoryID    *string       `json:"category_id,omitempty"`
	Amount        *float64      `json:"amount,omitempty"`
	Type          *CategoryType `json:"type,omitempty"`
	Date          *Timestamp    `json:"date,omitempty"`
	Note          *string       `json:"note,omitempty"`
	AttachmentURL *string       `json:"attachment_url,omitempty"`
	LocalFilePath *string       `json:"local_file_path,omitempty"`
}

type WalletPatch struct {
	Name           *string  `json:"name,omitempty"`
	Type           *string  `json:"type,omitempty"`
	InitialBalance *float64 `json:"initial_balance,omitempty"`
}

type CategoryPatch struct {
	Name *string       `json:"name,omitempty"`
	Icon *string       `json:"icon,omitempty"`
	Type *CategoryType `json:"type,omitempty"`
}

type ProfilePatch struct {
	Email             *string `json:"email,omitempty"`
	AvatarURL         *string `json:"avatar_url,omitempty"`
	PreferredCurrency *string `json:"preferred_currency,omitempty"`
	Language          *string `json:"language,omitempty"`
}

func (p TransactionPatch) Fields() (map[string]any, error) { return fieldsOf(p) }
func (p WalletPatch) Fields() (map[string]any, error)      { return fieldsOf(p) }
func (p CategoryPatch) Fields() (map[string]any, error)    { return fieldsOf(p) }
func (p ProfilePatch) Fields() (map[string]any, error)     { return fieldsOf(p) }

// fieldsOf flattens a patch into the JSON shape stored in documents.
func fieldsOf(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal patch: %w", err)
	}
	fields := map[string]any{}
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("unmarshal patch: %w", err)
	}
	return fields, nil
}

type SessionRequest struct {
	UserID string `json:"userId" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
}

type CreateTransactionRequest struct {
	WalletID   string          `json:"walletId" binding:"required"`
	CategoryID string          `json:"categoryId" binding:"required"`
	Amount     decimal.Decimal `json:"amount"`
	Type       CategoryType    `json:"type" binding:"omitempty,oneof=income expense"`
	Date       *Timestamp      `json:"date"`
	Note       *string         `json:"note" binding:"omitempty,max=500"`
}

// ToTransaction builds the record for userID. An explicit type wins over the sign of Amount.
func (r CreateTransactionRequest) ToTransaction(userID string) *Transaction {
	amount := r.Amount.InexactFloat64()
	if r.Type != "" {
		amount = SignedAmount(r.Type, amount)
	}
	t := &Transaction{
		UserID:     userID,
		WalletID:   r.WalletID,
		CategoryID: r.CategoryID,
		Amount:     amount,
		Note:       r.Note,
	}
	if r.Date != nil {
		t.Date = *r.Date
	}
	return t
}

type UpdateTransactionRequest struct {
	WalletID   *string          `json:"walletId"`
	CategoryID *string          `json:"categoryId"`
	Amount     *decimal.Decimal `json:"amount"`
	Type       *CategoryType    `json:"type" binding:"omitempty,oneof=income expense"`
	Date       *Timestamp       `json:"date"`
	Note       *string          `json:"note" binding:"omitempty,max=500"`
}

func (r UpdateTransactionRequest) ToPatch() TransactionPatch {
	p := TransactionPatch{
		WalletID:   r.WalletID,
		CategoryID: r.CategoryID,
		Type:       r.Type,
		Date:       r.Date,
		Note:       r.Note,
	}
	if r.Amount != nil {
		f := r.Amount.InexactFloat64()
		p.Amount = &f
	}
	return p
}

type CreateWalletRequest struct {
	Name           string          `json:"name" binding:"required,max=100"`
	Type           string          `json:"type" binding:"max=50"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

func (r CreateWalletRequest) ToWallet(userID string) *Wallet {
	return &Wallet{
		UserID:         userID,
		Name:           r.Name,
		Type:           r.Type,
		InitialBalance: r.InitialBalance.InexactFloat64(),
	}
}

type UpdateWalletRequest struct {
	Name           *string          `json:"name" binding:"omitempty,max=100"`
	Type           *string          `json:"type" binding:"omitempty,max=50"`
	InitialBalance *decimal.Decimal `json:"initialBalance"`
}

func (r UpdateWalletRequest) ToPatch() WalletPatch {
	p := WalletPatch{Name: r.Name, Type: r.Type}
	if r.InitialBalance != nil {
		f := r.InitialBalance.InexactFloat64()
		p.InitialBalance = &f
	}
	return p
}

type CreateCategoryRequest struct {
	Name string       `json:"name" binding:"required,max=100"`
	Icon string       `json:"icon" binding:"max=50"`
	Type CategoryType `json:"type" binding:"required,oneof=income expense"`
}

func (r CreateCategoryRequest) ToCategory(userID string) *Category {
	return &Category{
		UserID: &userID,
		Name:   r.Name,
		Icon:   r.Icon,
		Type:   r.Type,
	}
}

type UpdateCategoryRequest struct {
	Name *string       `json:"name" binding:"omitempty,max=100"`
	Icon *string       `json:"icon" binding:"omitempty,max=50"`
	Type *CategoryType `json:"type" binding:"omitempty,oneof=income expense"`
}

func (r UpdateCategoryRequest) ToPatch() CategoryPatch {
	return CategoryPatch{Name: r.Name, Icon: r.Icon, Type: r.Type}
}

type UpdateProfileRequest struct {
	AvatarURL         *string `json:"avatarUrl" binding:"omitempty,max=255"`
	PreferredCurrency *string `json:"preferredCurrency" binding:"omitempty,max=10"`
	Language          *string `json:"language" binding:"omitempty,max=10"`
}

func (r UpdateProfileRequest) ToPatch() ProfilePatch {
	return ProfilePatch{
		AvatarURL:         r.AvatarURL,
		PreferredCurrency: r.PreferredCurrency,
		Language:          r.Language,
	}
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark"`
}
