package controllers

import (
	"net/http"
	"time"

	"github.com/rahulmenon/freshkart-backend/api/responses"
	"github.com/rahulmenon/freshkart-backend/api/validators"
	"github.com/rahulmenon/freshkart-backend/internal/checkout"
	"github.com/rahulmenon/freshkart-backend/internal/pricing"
	"github.com/rahulmenon/freshkart-backend/pkg/enums"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
	"github.com/rahulmenon/freshkart-backend/pkg/logger"
	"github.com/rahulmenon/freshkart-backend/pkg/types"
)

type quoteRequest struct {
	CouponCode   string `json:"couponCode"`
	RedeemWallet bool   `json:"redeemWallet"`
}

type placeOrderRequest struct {
	CouponCode     string        `json:"couponCode"`
	RedeemWallet   bool          `json:"redeemWallet"`
	Address        types.Address `json:"address" validate:"required"`
	DeliveryDate   string        `json:"deliveryDate" validate:"required"`
	DeliveryWindow string        `json:"deliveryWindow" validate:"required"`
	PaymentMethod  string        `json:"paymentMethod" validate:"required"`
}

type confirmPaymentRequest struct {
	placeOrderRequest
	GatewayOrderID string `json:"gatewayOrderId" validate:"required"`
	PaymentID      string `json:"paymentId" validate:"required"`
	Signature      string `json:"signature" validate:"required"`
}

func (p placeOrderRequest) toInput() (checkout.PlaceOrderInput, error) {
	method, err := enums.ParsePaymentMethod(p.PaymentMethod)
	if err != nil {
		return checkout.PlaceOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	return checkout.PlaceOrderInput{
		CouponCode:    p.CouponCode,
		RedeemWallet:  p.RedeemWallet,
		Address:       p.Address,
		Slot:          pricing.Slot{Date: p.DeliveryDate, Window: p.DeliveryWindow},
		PaymentMethod: method,
	}, nil
}

// CheckoutQuote prices the current cart without creating anything.
func CheckoutQuote(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload quoteRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), userID, checkout.QuoteRequest{
			CouponCode:   payload.CouponCode,
			RedeemWallet: payload.RedeemWallet,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quote)
	}
}

// CheckoutPlace starts checkout. COD submissions return the created order;
// online submissions return a payment intent for the client to complete.
func CheckoutPlace(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload placeOrderRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PlaceOrder(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusOK
		if result.Order != nil {
			status = http.StatusCreated
		}
		responses.WriteSuccessStatus(w, status, result)
	}
}

// CheckoutConfirm completes an online payment and creates the order.
func CheckoutConfirm(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		userID, err := authenticatedUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload confirmPaymentRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmPayment(r.Context(), userID, checkout.ConfirmPaymentInput{
			PlaceOrderInput: input,
			GatewayOrderID:  payload.GatewayOrderID,
			PaymentID:       payload.PaymentID,
			Signature:       payload.Signature,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// DeliverySlots lists the bookable delivery dates and windows.
func DeliverySlots(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{
			"dates":   pricing.AvailableDates(time.Now()),
			"windows": enums.DeliveryWindows(),
		})
	}
}
