package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rahulmenon/freshkart-backend/pkg/db/models"
	"github.com/rahulmenon/freshkart-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
	"github.com/rahulmenon/freshkart-backend/pkg/outbox"
)

type memOrderRepo struct {
	orders map[uuid.UUID]*models.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: map[uuid.UUID]*models.Order{}}
}

func (m *memOrderRepo) WithTx(tx *gorm.DB) OrderRepository { return m }

func (m *memOrderRepo) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	m.orders[order.ID] = order
	return nil
}

func (m *memOrderRepo) FindForUpdate(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if order, ok := m.orders[orderID]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrderRepo) FindByIDAndUser(ctx context.Context, orderID, userID uuid.UUID) (*models.Order, error) {
	if order, ok := m.orders[orderID]; ok && order.UserID == userID {
		copied := *order
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.Order, error) {
	var rows []models.Order
	for _, order := range m.orders {
		if order.UserID == userID {
			rows = append(rows, *order)
		}
	}
	return rows, nil
}

func (m *memOrderRepo) UpdateFields(ctx context.Context, orderID uuid.UUID, fields map[string]any) error {
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := fields["status"]; ok {
		order.Status = status.(enums.OrderStatus)
	}
	if _, ok := fields["cashback_granted"]; ok {
		order.CashbackGranted = true
	}
	return nil
}

type recordingLedger struct {
	credits []creditCall
	debits  []decimal.Decimal
	applied map[string]bool
}

type creditCall struct {
	orderID   *uuid.UUID
	entryType enums.WalletEntryType
	amount    decimal.Decimal
}

func newRecordingLedger() *recordingLedger {
	return &recordingLedger{applied: map[string]bool{}}
}

func (r *recordingLedger) DebitTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID uuid.UUID, amount decimal.Decimal) (*models.UserWallet, error) {
	r.debits = append(r.debits, amount)
	return &models.UserWallet{UserID: userID}, nil
}

func (r *recordingLedger) CreditTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, orderID *uuid.UUID, entryType enums.WalletEntryType, amount decimal.Decimal, note string) (*models.UserWallet, bool, error) {
	key := ""
	if orderID != nil {
		key = orderID.String() + "|" + entryType.String()
		if r.applied[key] {
			return &models.UserWallet{UserID: userID}, false, nil
		}
		r.applied[key] = true
	}
	r.credits = append(r.credits, creditCall{orderID: orderID, entryType: entryType, amount: amount})
	return &models.UserWallet{UserID: userID, Balance: amount}, true, nil
}

type recordingEmitter struct {
	events []outbox.DomainEvent
}

func (r *recordingEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	r.events = append(r.events, event)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

func newOrderService(t *testing.T, repo OrderRepository, ledger *recordingLedger, emitter *recordingEmitter) Service {
	t.Helper()
	svc, err := NewService(repo, passthroughTx{}, ledger, emitter, nil)
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func seedOrder(repo *memOrderRepo, status enums.OrderStatus, total, walletApplied string) *models.Order {
	order := &models.Order{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		Status:        status,
		Total:         decimal.RequireFromString(total),
		WalletApplied: decimal.RequireFromString(walletApplied),
	}
	repo.orders[order.ID] = order
	return order
}

func TestUpdateStatusForwardStep(t *testing.T) {
	t.Parallel()

	repo := newMemOrderRepo()
	ledger := newRecordingLedger()
	emitter := &recordingEmitter{}
	svc := newOrderService(t, repo, ledger, emitter)
	order := seedOrder(repo, enums.OrderStatusProcessing, "270", "0")

	updated, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPacked)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.Status != enums.OrderStatusPacked {
		t.Fatalf("expected packed, got %s", updated.Status)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderStatusChanged {
		t.Fatalf("expected one status event, got %+v", emitter.events)
	}
}

func TestUpdateStatusRejectsSkipAndBackward(t *testing.T) {
	t.Parallel()

	repo := newMemOrderRepo()
	svc := newOrderService(t, repo, newRecordingLedger(), &recordingEmitter{})
	order := seedOrder(repo, enums.OrderStatusProcessing, "270", "0")

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("skip to delivered must be rejected, got %v", err)
	}

	packed := seedOrder(repo, enums.OrderStatusPacked, "270", "0")
	_, err = svc.UpdateStatus(context.Background(), packed.ID, enums.OrderStatusProcessing)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("backward transition must be rejected, got %v", err)
	}
}

func TestUpdateStatusRejectsCancelledTarget(t *testing.T) {
	t.Parallel()

	repo := newMemOrderRepo()
	svc := newOrderService(t, repo, newRecordingLedger(), &recordingEmitter{})
	order := seedOrder(repo, enums.OrderStatusProcessing, "270", "0")

	_, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusCancelled)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("cancel via status update must be rejected, got %v", err)
	}
}

func TestDeliveredCreditsCashbackOnce(t *testing.T) {
	t.Parallel()

	repo := newMemOrderRepo()
	ledger := newRecordingLedger()
	emitter := &recordingEmitter{}
	svc := newOrderService(t, repo, ledger, emitter)
	order := seedOrder(repo, enums.OrderStatusOutForDelivery, "270", "0")

	updated, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if !updated.CashbackGranted {
		t.Fatal("cashback_granted should be set")
	}
	if len(ledger.credits) != 1 {
		t.Fatalf("expected one cashback credit, got %d", len(ledger.credits))
	}
	if !ledger.credits[0].amount.Equal(decimal.RequireFromString("27")) {
		t.Fatalf("expected cashback 27, got %s", ledger.credits[0].amount)
	}
	if ledger.credits[0].entryType != enums.WalletEntryTypeCashback {
		t.Fatalf("expected cashback entry, got %s", ledger.credits[0].entryType)
	}

	// wallet.credited plus order.status_changed
	if len(emitter.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(emitter.events))
	}

	// Re-delivering is rejected and must not credit again.
	_, err = svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("re-deliver must be rejected, got %v", err)
	}
	if len(ledger.credits) != 1 {
		t.Fatalf("cashback must not double-credit, got %d credits", len(ledger.credits))
	}
}

func TestCashbackRoundsToTwoDecimals(t *testing.T) {
	t.Parallel()

	repo := newMemOrderRepo()
	ledger := newRecordingLedger()
	svc := newOrderService(t, repo, ledger, &recordingEmitter{})
	order := seedOrder(repo, enums.OrderStatusOutForDelivery, "133.33", "0")

	if _, err := svc.UpdateStatus(context.Background(), order.ID, enums.OrderStatusDelivered); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if !ledger.credits[0].amount.Equal(decimal.RequireFromString("13.33")) {
		t.Fatalf("expected cashback 13.33, got %s", ledger.credits[0].amount)
	}
}

func TestCancelRefundsRedeemedPoints(t *testing.T) {
	t.Parallel()

	repo := newMemOrderRepo()
	ledger := newRecordingLedger()
	emitter := &recordingEmitter{}
	svc := newOrderService(t, repo, ledger, emitter)
	order := seedOrder(repo, enums.OrderStatusPacked, "270", "50")

	updated, err := svc.Cancel(context.Background(), order.UserID, order.ID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if updated.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", updated.Status)
	}
	if len(ledger.credits) != 1 || ledger.credits[0].entryType != enums.WalletEntryTypeRefund {
		t.Fatalf("expected one refund credit, got %+v", ledger.credits)
	}
	if !ledger.credits[0].amount.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("refund should equal wallet applied, got %s", ledger.credits[0].amount)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventOrderCancelled {
		t.Fatalf("expected cancellation event, got %+v", emitter.events)
	}
}

func TestCancelWithoutRedemptionSkipsRefund(t *testing.T) {
	t.Parallel()

	repo := newMemOrderRepo()
	ledger := newRecordingLedger()
	svc := newOrderService(t, repo, ledger, &recordingEmitter{})
	order := seedOrder(repo, enums.OrderStatusProcessing, "270", "0")

	if _, err := svc.Cancel(context.Background(), order.UserID, order.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(ledger.credits) != 0 {
		t.Fatalf("no refund expected, got %+v", ledger.credits)
	}
}

func TestCancelRejectedOnceOutForDelivery(t *testing.T) {
	t.Parallel()

	repo := newMemOrderRepo()
	svc := newOrderService(t, repo, newRecordingLedger(), &recordingEmitter{})
	order := seedOrder(repo, enums.OrderStatusOutForDelivery, "270", "0")

	_, err := svc.Cancel(context.Background(), order.UserID, order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("cancel after dispatch must be rejected, got %v", err)
	}
}

func TestCancelByNonOwnerReadsAsMissing(t *testing.T) {
	t.Parallel()

	repo := newMemOrderRepo()
	svc := newOrderService(t, repo, newRecordingLedger(), &recordingEmitter{})
	order := seedOrder(repo, enums.OrderStatusProcessing, "270", "0")

	_, err := svc.Cancel(context.Background(), uuid.New(), order.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("foreign order must read as missing, got %v", err)
	}
}
