package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	rzpsdk "github.com/razorpay/razorpay-go"

	"github.com/rahulmenon/freshkart-backend/pkg/config"
	pkgerrors "github.com/rahulmenon/freshkart-backend/pkg/errors"
	"github.com/rahulmenon/freshkart-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errKeyIDRequired  = errors.New("razorpay key id is required")
	errSecretRequired = errors.New("razorpay key secret is required")
	errInvalidEnv     = fmt.Errorf("razorpay environment must be %q or %q", testEnv, liveEnv)
	errLoggerRequired = errors.New("razorpay logger is required")
)

// Client wraps the Razorpay SDK with centralized logging, signature
// verification, and error mapping.
type Client struct {
	sdk         *rzpsdk.Client
	keyID       string
	keySecret   string
	environment string
	currency    string
	logger      *logger.Logger
}

// NewClient initializes the gateway wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	keySecret := strings.TrimSpace(cfg.KeySecret)
	if keySecret == "" {
		return nil, errSecretRequired
	}

	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	c := &Client{
		sdk:         rzpsdk.NewClient(keyID, keySecret),
		keyID:       keyID,
		keySecret:   keySecret,
		environment: env,
		currency:    currency,
		logger:      logg,
	}

	logg.Info(ctx, "razorpay client initialized")
	return c, nil
}

func normalizeEnv(env string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(env))
	switch normalized {
	case testEnv, liveEnv:
		return normalized, nil
	case "":
		return testEnv, nil
	default:
		return "", errInvalidEnv
	}
}

// KeyID returns the configured public key id.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// Environment reports the normalized gateway environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// Currency reports the configured settlement currency.
func (c *Client) Currency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateOrder registers a payable order with the gateway. Amounts are in
// minor currency units (paise for INR).
func (c *Client) CreateOrder(ctx context.Context, params OrderCreateParams) (*GatewayOrder, error) {
	if err := params.validate(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid gateway order params")
	}

	data := params.toRequestData(c.currency)
	c.log(ctx, "request", "create_order", map[string]any{
		"receipt":      params.Receipt,
		"amount_minor": params.AmountMinor,
		"currency":     c.currency,
	})

	resp, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay create order failed")
	}

	order := gatewayOrderFromResponse(resp)
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay returned order without id")
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"gateway_order_id": order.ID,
		"status":           order.Status,
	})
	return order, nil
}

// FetchOrder retrieves the gateway's record of an order, including the
// amount it was registered for. Checkout confirmation uses it to make sure
// the authorized amount still covers the payable total.
func (c *Client) FetchOrder(ctx context.Context, gatewayOrderID string) (*GatewayOrder, error) {
	if strings.TrimSpace(gatewayOrderID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id is required")
	}

	c.log(ctx, "request", "fetch_order", map[string]any{"gateway_order_id": gatewayOrderID})

	resp, err := c.sdk.Order.Fetch(gatewayOrderID, nil, nil)
	if err != nil {
		c.log(ctx, "error", "fetch_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "razorpay fetch order failed")
	}

	order := gatewayOrderFromResponse(resp)
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "razorpay returned order without id")
	}

	c.log(ctx, "response", "fetch_order", map[string]any{
		"gateway_order_id": order.ID,
		"status":           order.Status,
	})
	return order, nil
}

// VerifyPaymentSignature checks the HMAC-SHA256 signature Razorpay sends
// after a successful client-side payment. The signed message is
// "<order_id>|<payment_id>" keyed with the key secret.
func (c *Client) VerifyPaymentSignature(ctx context.Context, gatewayOrderID, paymentID, signature string) error {
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id, payment id, and signature are required")
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		c.log(ctx, "error", "verify_signature", map[string]any{
			"gateway_order_id": gatewayOrderID,
			"payment_id":       paymentID,
			"error":            "signature mismatch",
		})
		return pkgerrors.New(pkgerrors.CodePaymentFailed, "payment signature verification failed")
	}

	c.log(ctx, "response", "verify_signature", map[string]any{
		"gateway_order_id": gatewayOrderID,
		"payment_id":       paymentID,
	})
	return nil
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("razorpay %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("razorpay %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lowered := strings.ToLower(key)
	if strings.Contains(lowered, "secret") || strings.Contains(lowered, "signature") || strings.Contains(lowered, "token") {
		return "[REDACTED]"
	}
	return value
}
