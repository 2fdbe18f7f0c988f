package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rahulmenon/freshkart-backend/pkg/db/models"
)

// LedgerRepository is the persistence surface the wallet service needs.
type LedgerRepository interface {
	WithTx(tx *gorm.DB) LedgerRepository
	FindForUpdate(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error)
	Find(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error)
	UpdateBalance(ctx context.Context, wallet *models.UserWallet) error
	InsertEntry(ctx context.Context, entry *models.WalletEntry) error
	EntryExists(ctx context.Context, orderID uuid.UUID, entryType string) (bool, error)
	ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletEntry, error)
}

// Repository exposes persistence for wallets and their ledger entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) LedgerRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindForUpdate loads the wallet row under a row lock, creating it with a
// zero balance on first touch. Both checkout debits and delivery credits go
// through this lock so concurrent mutations serialize on the same row.
func (r *Repository) FindForUpdate(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error) {
	var wallet models.UserWallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err == nil {
		return &wallet, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	wallet = models.UserWallet{UserID: userID}
	if createErr := r.db.WithContext(ctx).Create(&wallet).Error; createErr != nil {
		return nil, createErr
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

// Find loads the wallet without locking; missing wallets read as zero.
func (r *Repository) Find(ctx context.Context, userID uuid.UUID) (*models.UserWallet, error) {
	var wallet models.UserWallet
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.UserWallet{UserID: userID}, nil
		}
		return nil, err
	}
	return &wallet, nil
}

// UpdateBalance persists the new balance for the locked wallet row.
func (r *Repository) UpdateBalance(ctx context.Context, wallet *models.UserWallet) error {
	return r.db.WithContext(ctx).
		Model(&models.UserWallet{}).
		Where("user_id = ?", wallet.UserID).
		Update("balance", wallet.Balance).Error
}

// InsertEntry appends a ledger entry.
func (r *Repository) InsertEntry(ctx context.Context, entry *models.WalletEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// EntryExists reports whether an entry of the given type already exists for
// the order.
func (r *Repository) EntryExists(ctx context.Context, orderID uuid.UUID, entryType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WalletEntry{}).
		Where("order_id = ? AND type = ?", orderID, entryType).
		Count(&count).Error
	return count > 0, err
}

// ListEntries returns the newest ledger entries for a user.
func (r *Repository) ListEntries(ctx context.Context, userID uuid.UUID, limit int) ([]models.WalletEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var rows []models.WalletEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
