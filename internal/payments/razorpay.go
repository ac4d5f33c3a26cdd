// Package payments collects customer balances through Razorpay orders.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"
	"github.com/shopspring/decimal"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/aggregate"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/timeutil"
)

var (
	ErrNotConfigured    = errors.New("razorpay client not configured")
	ErrNothingDue       = errors.New("customer has no outstanding balance")
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrNotPaid          = errors.New("order is not paid")
)

const currency = "INR"

// Orders is the part of the Razorpay order API the service uses.
type Orders interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
	Fetch(orderID string, queryParams map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// Order is what the checkout widget needs to open.
type Order struct {
	ID          string          `json:"orderId"`
	KeyID       string          `json:"keyId"`
	AmountPaise int64           `json:"amount"`
	Currency    string          `json:"currency"`
	Receipt     string          `json:"receipt"`
	Balance     decimal.Decimal `json:"balance"`
	CustomerID  string          `json:"customerId"`
}

// Payment is a verified checkout result.
type Payment struct {
	OrderID      string
	PaymentID    string
	CustomerID   string
	CustomerName string
	Amount       decimal.Decimal
}

type Service struct {
	orders    Orders
	keyID     string
	keySecret string
	now       func() time.Time
}

// NewService returns a service backed by the Razorpay API. Without
// credentials every call returns ErrNotConfigured.
func NewService(keyID, keySecret string) *Service {
	s := &Service{keyID: keyID, keySecret: keySecret, now: timeutil.Now}
	if keyID != "" && keySecret != "" {
		s.orders = razorpay.NewClient(keyID, keySecret).Order
	}
	return s
}

func newWithOrders(orders Orders, keyID, keySecret string) *Service {
	return &Service{orders: orders, keyID: keyID, keySecret: keySecret, now: timeutil.Now}
}

// Enabled reports whether orders can be created.
func (s *Service) Enabled() bool {
	return s != nil && s.orders != nil
}

// CreateOrder opens an order for the customer's full outstanding balance.
func (s *Service) CreateOrder(ctx context.Context, customer models.Customer) (Order, error) {
	if !s.Enabled() {
		return Order{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}

	balance := aggregate.OutstandingBalance(customer)
	if !balance.IsPositive() {
		return Order{}, ErrNothingDue
	}
	paise := balance.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	receipt := fmt.Sprintf("rcpt_%s_%d", customer.ID, s.now().Unix())

	orderData := map[string]interface{}{
		"amount":   paise,
		"currency": currency,
		"receipt":  receipt,
		"notes": map[string]interface{}{
			"customer_id":    customer.ID,
			"customer_name":  customer.Name,
			"customer_phone": customer.Phone,
		},
	}
	resp, err := s.orders.Create(orderData, nil)
	if err != nil {
		return Order{}, fmt.Errorf("failed to create razorpay order: %w", err)
	}
	id, _ := resp["id"].(string)
	if id == "" {
		return Order{}, errors.New("razorpay order response has no id")
	}

	return Order{
		ID:          id,
		KeyID:       s.keyID,
		AmountPaise: paise,
		Currency:    currency,
		Receipt:     receipt,
		Balance:     balance,
		CustomerID:  customer.ID,
	}, nil
}

// Verify checks the checkout signature and that the gateway reports the
// order paid, and returns the payment.
func (s *Service) Verify(ctx context.Context, orderID, paymentID, signature string) (Payment, error) {
	if !s.Enabled() {
		return Payment{}, ErrNotConfigured
	}
	if !s.validSignature(orderID, paymentID, signature) {
		return Payment{}, ErrInvalidSignature
	}
	if err := ctx.Err(); err != nil {
		return Payment{}, err
	}

	order, err := s.orders.Fetch(orderID, nil, nil)
	if err != nil {
		return Payment{}, fmt.Errorf("failed to fetch razorpay order: %w", err)
	}
	if status, _ := order["status"].(string); status != "paid" {
		return Payment{}, fmt.Errorf("%w: order %s is %q", ErrNotPaid, orderID, status)
	}
	p := Payment{OrderID: orderID, PaymentID: paymentID}
	if amount, ok := order["amount"].(float64); ok {
		p.Amount = decimal.NewFromFloat(amount).Div(decimal.NewFromInt(100))
	}
	if notes, ok := order["notes"].(map[string]interface{}); ok {
		p.CustomerID, _ = notes["customer_id"].(string)
		p.CustomerName, _ = notes["customer_name"].(string)
	}
	return p, nil
}

func (s *Service) validSignature(orderID, paymentID, signature string) bool {
	if s.keySecret == "" {
		return false
	}
	h := hmac.New(sha256.New, []byte(s.keySecret))
	h.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(h.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// IncomeEntry is the revenue line recorded for a verified payment.
func (p Payment) IncomeEntry() map[string]any {
	amount, _ := p.Amount.Float64()
	desc := "Online payment " + p.PaymentID
	if p.CustomerName != "" {
		desc += " - " + p.CustomerName
	}
	return map[string]any{
		"desc":     desc,
		"amount":   amount,
		"date":     timeutil.Today(),
		"category": "Customer Payment",
	}
}
