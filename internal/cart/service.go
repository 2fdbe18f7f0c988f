package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	dbpkg "github.com/rahulmenon/freshkart-backend/pkg/db"
	"github.com/rahulmenon/freshkart-backend/pkg/db/models"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// View is the assembled cart returned to clients. Subtotal is the sum of
// frozen line prices, not a fresh catalog lookup.
type View struct {
	Lines    []models.CartLine `json:"lines"`
	Subtotal decimal.Decimal   `json:"subtotal"`
}

// AddItemInput captures a request to add a product to the cart.
// SelectedUnit is the quantity label the shopper picked ("500g", "2pc"),
// resolved against the product's sale-unit table.
type AddItemInput struct {
	ProductID    uuid.UUID
	SelectedUnit string
	Quantity     int
}

// Service exposes cart operations keyed by user.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, unit string, quantity int) (*View, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID, unit string) (*View, error)
	GetCart(ctx context.Context, userID uuid.UUID) (*View, error)
	ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type service struct {
	repo     LineRepository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo LineRepository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// AddItem inserts a new line or merges quantity into the line with the same
// (product, unit label) identity. The label's price is resolved from the
// catalog and frozen at first add.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if strings.TrimSpace(input.SelectedUnit) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selected unit is required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.InStock() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is out of stock")
	}
	unitPrice, ok := product.UnitPriceFor(input.SelectedUnit)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not sold in the selected unit").
			WithDetails(map[string]any{"selected_unit": input.SelectedUnit})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.FindLine(ctx, userID, input.ProductID, input.SelectedUnit)
		switch {
		case err == nil:
			return repo.UpdateQuantity(ctx, existing.ID, existing.Quantity+input.Quantity)
		case errors.Is(err, gorm.ErrRecordNotFound):
			line := &models.CartLine{
				UserID:       userID,
				ProductID:    input.ProductID,
				SelectedUnit: input.SelectedUnit,
				Quantity:     input.Quantity,
				UnitPrice:    unitPrice,
				ProductName:  product.Name,
			}
			if createErr := repo.Create(ctx, line); createErr != nil {
				// Concurrent add of the same identity lands on the unique
				// index; fold the quantity in instead of failing.
				if dbpkg.IsUniqueViolation(createErr, "ux_cart_lines_identity") {
					merged, findErr := repo.FindLine(ctx, userID, input.ProductID, input.SelectedUnit)
					if findErr != nil {
						return findErr
					}
					return repo.UpdateQuantity(ctx, merged.ID, merged.Quantity+input.Quantity)
				}
				return createErr
			}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		return nil, mapCartError(err, "add cart item")
	}

	return s.GetCart(ctx, userID)
}

// UpdateQuantity replaces the quantity on an existing line. Quantities below
// one are rejected; removal is a separate operation.
func (s *service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, unit string, quantity int) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selected unit is required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		line, err := repo.FindLine(ctx, userID, productID, unit)
		if err != nil {
			return err
		}
		return repo.UpdateQuantity(ctx, line.ID, quantity)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
		}
		return nil, mapCartError(err, "update cart quantity")
	}

	return s.GetCart(ctx, userID)
}

// RemoveItem deletes the line if present. Removing an absent line is a no-op
// so retries and double-clicks converge on the same cart.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID, unit string) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if strings.TrimSpace(unit) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "selected unit is required")
	}

	if _, err := s.repo.Delete(ctx, userID, productID, unit); err != nil {
		return nil, mapCartError(err, "remove cart item")
	}

	return s.GetCart(ctx, userID)
}

// GetCart assembles the cart view with the frozen-price subtotal.
func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*View, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, mapCartError(err, "load cart")
	}
	return assembleView(lines), nil
}

// ClearTx empties the cart inside the caller's transaction. Checkout uses
// this so the cart clears atomically with order creation.
func (s *service) ClearTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "transaction required")
	}
	return s.repo.WithTx(tx).DeleteByUser(ctx, userID)
}

func assembleView(lines []models.CartLine) *View {
	view := &View{Lines: lines, Subtotal: decimal.Zero}
	for _, line := range lines {
		view.Subtotal = view.Subtotal.Add(line.LineSubtotal())
	}
	return view
}

func mapCartError(err error, op string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
