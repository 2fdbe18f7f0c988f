package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahulmenon/freshkart-backend/pkg/db/models"
)

// LineRepository exposes persistence operations for cart lines.
type LineRepository interface {
	WithTx(tx *gorm.DB) LineRepository
	FindLine(ctx context.Context, userID, productID uuid.UUID, unit string) (*models.CartLine, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error)
	Create(ctx context.Context, line *models.CartLine) error
	UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, productID uuid.UUID, unit string) (int64, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
}

// Repository is the GORM-backed cart line repository.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) LineRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindLine loads the line matching the (user, product, unit label) identity.
func (r *Repository) FindLine(ctx context.Context, userID, productID uuid.UUID, unit string) (*models.CartLine, error) {
	var line models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND selected_unit = ?", userID, productID, unit).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// ListByUser returns the user's cart lines in insertion order.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartLine, error) {
	var rows []models.CartLine
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// Create inserts a new cart line.
func (r *Repository) Create(ctx context.Context, line *models.CartLine) error {
	return r.db.WithContext(ctx).Create(line).Error
}

// UpdateQuantity sets the quantity on an existing line.
func (r *Repository) UpdateQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartLine{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

// Delete removes the line matching the identity and reports affected rows so
// callers can treat repeat removals as no-ops.
func (r *Repository) Delete(ctx context.Context, userID, productID uuid.UUID, unit string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND selected_unit = ?", userID, productID, unit).
		Delete(&models.CartLine{})
	return res.RowsAffected, res.Error
}

// DeleteByUser clears the entire cart.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartLine{}).Error
}
