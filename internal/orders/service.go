package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rahulmenon/freshkart-backend/internal/pricing"
	"github.com/rahulmenon/freshkart-backend/internal/wallet"
	"github.com/rahulmenon/freshkart-backend/pkg/db/models"
	"github.com/rahulmenon/freshkart-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
	"github.com/rahulmenon/freshkart-backend/pkg/logger"
	"github.com/rahulmenon/freshkart-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service drives the order lifecycle after checkout.
type Service interface {
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, limit int) ([]models.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
}

type service struct {
	repo   OrderRepository
	tx     txRunner
	ledger wallet.Ledger
	events eventEmitter
	logg   *logger.Logger
}

// NewService builds the order lifecycle service.
func NewService(repo OrderRepository, tx txRunner, ledger wallet.Ledger, events eventEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("wallet ledger required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{repo: repo, tx: tx, ledger: ledger, events: events, logg: logg}, nil
}

func (s *service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id are required")
	}
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID, limit int) ([]models.Order, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

// UpdateStatus advances the fulfillment state machine one step. Only the
// adjacent forward transition is permitted; skipping states or moving
// backward fails with a state conflict. Cancellation goes through Cancel.
//
// Transitioning into delivered credits the wallet cashback exactly once,
// inside the same transaction as the status change.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}
	if next == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "use the cancel operation to cancel an order")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
		}

		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition is not allowed").
				WithDetails(map[string]any{"from": order.Status, "to": next})
		}

		fields := map[string]any{"status": next}
		now := time.Now()

		if next == enums.OrderStatusDelivered {
			fields["delivered_at"] = now

			if !order.CashbackGranted {
				cashback := pricing.Cashback(order.Total)
				if cashback.IsPositive() {
					balanceAfter, applied, err := s.ledger.CreditTx(ctx, tx, order.UserID, &order.ID, enums.WalletEntryTypeCashback, cashback, "delivery cashback")
					if err != nil {
						return err
					}
					if applied {
						if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
							EventType:     enums.EventWalletCredited,
							AggregateType: enums.AggregateWallet,
							AggregateID:   order.UserID,
							Data: outbox.WalletCreditedPayload{
								UserID:    order.UserID,
								OrderID:   &order.ID,
								EntryType: enums.WalletEntryTypeCashback,
								Amount:    cashback,
								Balance:   balanceAfter.Balance,
							},
						}); err != nil {
							return err
						}
					}
				}
				fields["cashback_granted"] = true
			}
		}

		if err := repo.UpdateFields(ctx, order.ID, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: outbox.OrderStatusChangedPayload{
				OrderID:    order.ID,
				UserID:     order.UserID,
				FromStatus: order.Status,
				ToStatus:   next,
			},
		}); err != nil {
			return err
		}

		order.Status = next
		if next == enums.OrderStatusDelivered {
			order.DeliveredAt = &now
			order.CashbackGranted = true
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, updated.ID.String()), "order status updated")
	}
	return updated, nil
}

// Cancel stops an order that has not left the warehouse. Wallet points
// redeemed at checkout are refunded in the same transaction.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id and order id are required")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock order")
		}
		if order.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		if !order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order can no longer be cancelled").
				WithDetails(map[string]any{"status": order.Status})
		}

		if order.WalletApplied.IsPositive() {
			if _, _, err := s.ledger.CreditTx(ctx, tx, order.UserID, &order.ID, enums.WalletEntryTypeRefund, order.WalletApplied, "cancellation refund"); err != nil {
				return err
			}
		}

		now := time.Now()
		fields := map[string]any{
			"status":       enums.OrderStatusCancelled,
			"cancelled_at": now,
		}
		if err := repo.UpdateFields(ctx, order.ID, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}

		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: userID},
			Data: outbox.OrderCancelledPayload{
				OrderID:        order.ID,
				UserID:         order.UserID,
				RefundedAmount: order.WalletApplied,
			},
		}); err != nil {
			return err
		}

		order.Status = enums.OrderStatusCancelled
		order.CancelledAt = &now
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, updated.ID.String()), "order cancelled")
	}
	return updated, nil
}
