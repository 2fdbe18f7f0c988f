package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/rahulmenon/freshkart-backend/pkg/db"
	"github.com/rahulmenon/freshkart-backend/pkg/db/models"
	"github.com/rahulmenon/freshkart-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
)

// Ledger is the wallet mutation surface used by checkout and order
// lifecycle. All mutations run inside the caller's transaction so wallet
// changes commit atomically with the order change that caused them.
type Ledger interface {
	DebitTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID uuid.UUID, amount decimal.Decimal) (*models.UserWallet, error)
	CreditTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, entryType enums.WalletEntryType, amount decimal.Decimal, note string) (*models.UserWallet, bool, error)
}

// Service exposes wallet reads plus the transactional Ledger surface.
type Service interface {
	Ledger
	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error)
	ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletEntry, error)
}

type service struct {
	repo LedgerRepository
}

// NewService builds the wallet service.
func NewService(repo LedgerRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	if userID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	wallet, err := s.repo.Find(ctx, userID)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	return wallet.Balance, nil
}

func (s *service) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletEntry, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListEntries(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet entries")
	}
	return rows, nil
}

// DebitTx draws points from the wallet under the row lock. The balance can
// never go negative; callers must have capped the amount at the current
// balance when pricing.
func (s *service) DebitTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID uuid.UUID, amount decimal.Decimal) (*models.UserWallet, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "debit amount cannot be negative")
	}
	repo := s.repo.WithTx(tx)

	wallet, err := repo.FindForUpdate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock wallet")
	}

	if amount.IsZero() {
		return wallet, nil
	}
	if wallet.Balance.LessThan(amount) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "wallet balance is insufficient").
			WithDetails(map[string]any{"balance": wallet.Balance, "requested": amount})
	}

	wallet.Balance = wallet.Balance.Sub(amount)
	if err := repo.UpdateBalance(ctx, wallet); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wallet balance")
	}

	entry := &models.WalletEntry{
		UserID:  userID,
		OrderID: &orderID,
		Type:    enums.WalletEntryTypeRedemption,
		Amount:  amount,
	}
	if err := repo.InsertEntry(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert wallet entry")
	}
	return wallet, nil
}

// CreditTx adds points to the wallet under the row lock. When orderID is set
// the (order, type) unique index makes the credit exactly-once: a repeat
// credit reports applied=false and leaves the balance untouched.
func (s *service) CreditTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, entryType enums.WalletEntryType, amount decimal.Decimal, note string) (*models.UserWallet, bool, error) {
	if tx == nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	if !entryType.IsCredit() {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "entry type is not a credit")
	}
	if amount.IsNegative() {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "credit amount cannot be negative")
	}
	repo := s.repo.WithTx(tx)

	wallet, err := repo.FindForUpdate(ctx, userID)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock wallet")
	}

	if orderID != nil {
		exists, err := repo.EntryExists(ctx, *orderID, entryType.String())
		if err != nil {
			return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check wallet entry")
		}
		if exists {
			return wallet, false, nil
		}
	}

	entry := &models.WalletEntry{
		UserID:  userID,
		OrderID: orderID,
		Type:    entryType,
		Amount:  amount,
	}
	if note != "" {
		entry.Note = &note
	}
	if err := repo.InsertEntry(ctx, entry); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_wallet_entries_order_type") {
			return wallet, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert wallet entry")
	}

	wallet.Balance = wallet.Balance.Add(amount)
	if err := repo.UpdateBalance(ctx, wallet); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update wallet balance")
	}
	return wallet, true, nil
}
