package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rahulmenon/freshkart-backend/pkg/db/models"
	"github.com/rahulmenon/freshkart-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
)

type memLedgerRepo struct {
	wallets map[uuid.UUID]*models.UserWallet
	entries []models.WalletEntry
}

func newMemLedgerRepo() *memLedgerRepo {
	return &memLedgerRepo{wallets: map[uuid.UUID]*models.UserWallet{}}
}

func (m *memLedgerRepo) WithTx(tx *gorm.DB) LedgerRepository { return m }

func (m *memLedgerRepo) FindForUpdate(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error) {
	if wallet, ok := m.wallets[userID]; ok {
		return wallet, nil
	}
	wallet := &models.UserWallet{UserID: userID, Balance: decimal.Zero}
	m.wallets[userID] = wallet
	return wallet, nil
}

func (m *memLedgerRepo) Find(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error) {
	if wallet, ok := m.wallets[userID]; ok {
		return wallet, nil
	}
	return &models.UserWallet{UserID: userID, Balance: decimal.Zero}, nil
}

func (m *memLedgerRepo) UpdateBalance(ctx context.Context, wallet *models.UserWallet) error {
	m.wallets[wallet.UserID] = wallet
	return nil
}

func (m *memLedgerRepo) InsertEntry(ctx context.Context, entry *models.WalletEntry) error {
	entry.ID = uuid.New()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memLedgerRepo) EntryExists(ctx context.Context, orderID uuid.UUID, entryType string) (bool, error) {
	for _, entry := range m.entries {
		if entry.OrderID != nil && *entry.OrderID == orderID && entry.Type.String() == entryType {
			return true, nil
		}
	}
	return false, nil
}

func (m *memLedgerRepo) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletEntry, error) {
	var rows []models.WalletEntry
	for _, entry := range m.entries {
		if entry.UserID == userID {
			rows = append(rows, entry)
		}
	}
	return rows, nil
}

func (m *memLedgerRepo) seed(userID uuid.UUID, balance string) {
	m.wallets[userID] = &models.UserWallet{UserID: userID, Balance: decimal.RequireFromString(balance)}
}

func newWalletService(t *testing.T, repo LedgerRepository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestDebitDrawsExactAmount(t *testing.T) {
	t.Parallel()

	repo := newMemLedgerRepo()
	userID := uuid.New()
	repo.seed(userID, "120.00")
	svc := newWalletService(t, repo)

	wallet, err := svc.DebitTx(context.Background(), &gorm.DB{}, userID, uuid.New(), decimal.RequireFromString("45.50"))
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if !wallet.Balance.Equal(decimal.RequireFromString("74.50")) {
		t.Fatalf("expected balance 74.50, got %s", wallet.Balance)
	}
	if len(repo.entries) != 1 || repo.entries[0].Type != enums.WalletEntryTypeRedemption {
		t.Fatalf("expected one redemption entry, got %+v", repo.entries)
	}
}

func TestDebitNeverDrivesBalanceNegative(t *testing.T) {
	t.Parallel()

	repo := newMemLedgerRepo()
	userID := uuid.New()
	repo.seed(userID, "30.00")
	svc := newWalletService(t, repo)

	_, err := svc.DebitTx(context.Background(), &gorm.DB{}, userID, uuid.New(), decimal.RequireFromString("31.00"))
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for overdraw, got %v", err)
	}
	if !repo.wallets[userID].Balance.Equal(decimal.RequireFromString("30.00")) {
		t.Fatalf("balance must be unchanged after rejected debit")
	}
}

func TestDebitZeroIsNoOp(t *testing.T) {
	t.Parallel()

	repo := newMemLedgerRepo()
	userID := uuid.New()
	repo.seed(userID, "10.00")
	svc := newWalletService(t, repo)

	if _, err := svc.DebitTx(context.Background(), &gorm.DB{}, userID, uuid.New(), decimal.Zero); err != nil {
		t.Fatalf("zero debit should succeed: %v", err)
	}
	if len(repo.entries) != 0 {
		t.Fatal("zero debit must not write a ledger entry")
	}
}

func TestCashbackCreditIsExactlyOncePerOrder(t *testing.T) {
	t.Parallel()

	repo := newMemLedgerRepo()
	userID := uuid.New()
	orderID := uuid.New()
	svc := newWalletService(t, repo)
	amount := decimal.RequireFromString("27.00")

	wallet, applied, err := svc.CreditTx(context.Background(), &gorm.DB{}, userID, &orderID, enums.WalletEntryTypeCashback, amount, "delivery cashback")
	if err != nil {
		t.Fatalf("first credit: %v", err)
	}
	if !applied {
		t.Fatal("first credit should apply")
	}
	if !wallet.Balance.Equal(amount) {
		t.Fatalf("expected balance 27.00, got %s", wallet.Balance)
	}

	wallet, applied, err = svc.CreditTx(context.Background(), &gorm.DB{}, userID, &orderID, enums.WalletEntryTypeCashback, amount, "delivery cashback")
	if err != nil {
		t.Fatalf("repeat credit: %v", err)
	}
	if applied {
		t.Fatal("repeat credit must not apply")
	}
	if !wallet.Balance.Equal(amount) {
		t.Fatalf("balance must not double-credit, got %s", wallet.Balance)
	}
}

func TestRefundAndCashbackAreIndependentCredits(t *testing.T) {
	t.Parallel()

	repo := newMemLedgerRepo()
	userID := uuid.New()
	orderID := uuid.New()
	svc := newWalletService(t, repo)

	if _, _, err := svc.CreditTx(context.Background(), &gorm.DB{}, userID, &orderID, enums.WalletEntryTypeRefund, decimal.RequireFromString("50"), "cancellation refund"); err != nil {
		t.Fatalf("refund: %v", err)
	}
	_, applied, err := svc.CreditTx(context.Background(), &gorm.DB{}, userID, &orderID, enums.WalletEntryTypeCashback, decimal.RequireFromString("10"), "")
	if err != nil {
		t.Fatalf("cashback: %v", err)
	}
	if !applied {
		t.Fatal("different entry types for the same order are distinct")
	}
}

func TestCreditRejectsDebitType(t *testing.T) {
	t.Parallel()

	svc := newWalletService(t, newMemLedgerRepo())
	_, _, err := svc.CreditTx(context.Background(), &gorm.DB{}, uuid.New(), nil, enums.WalletEntryTypeRedemption, decimal.NewFromInt(5), "")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetBalanceDefaultsToZero(t *testing.T) {
	t.Parallel()

	svc := newWalletService(t, newMemLedgerRepo())
	balance, err := svc.GetBalance(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get balance: %v", err)
	}
	if !balance.IsZero() {
		t.Fatalf("fresh wallet should read zero, got %s", balance)
	}
}
