package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
	"time"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
)

type fakeOrders struct {
	created []map[string]interface{}
	order   map[string]interface{}
	err     error
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, data)
	return map[string]interface{}{"id": "order_123", "amount": data["amount"]}, nil
}

func (f *fakeOrders) Fetch(orderID string, _ map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func sign(secret, orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

func TestCreateOrder(t *testing.T) {
	orders := &fakeOrders{}
	s := newWithOrders(orders, "rzp_test_key", "secret")
	s.now = func() time.Time { return time.Unix(1700000000, 0) }

	c := models.Customer{Name: "Ravi", Phone: "9876543210", PaymentType: models.PaymentCash, TotalPrice: 150000.5, AdvanceAmount: 50000}
	c.ID = "c1"
	order, err := s.CreateOrder(context.Background(), c)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != "order_123" || order.KeyID != "rzp_test_key" || order.Currency != "INR" {
		t.Errorf("unexpected order %+v", order)
	}
	if order.AmountPaise != 10000050 {
		t.Errorf("amount = %d paise, want 10000050", order.AmountPaise)
	}
	if order.Receipt != "rcpt_c1_1700000000" {
		t.Errorf("receipt = %q", order.Receipt)
	}
	notes := orders.created[0]["notes"].(map[string]interface{})
	if notes["customer_id"] != "c1" {
		t.Errorf("notes = %v", notes)
	}
}

func TestCreateOrderErrors(t *testing.T) {
	paid := models.Customer{TotalPrice: 1000, AdvanceAmount: 1000}
	owing := models.Customer{TotalPrice: 1000}

	if _, err := NewService("", "").CreateOrder(context.Background(), owing); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("unconfigured: %v", err)
	}
	s := newWithOrders(&fakeOrders{}, "k", "s")
	if _, err := s.CreateOrder(context.Background(), paid); !errors.Is(err, ErrNothingDue) {
		t.Errorf("paid customer: %v", err)
	}
	failing := newWithOrders(&fakeOrders{err: errors.New("bad request")}, "k", "s")
	if _, err := failing.CreateOrder(context.Background(), owing); err == nil {
		t.Error("expected gateway error")
	}
}

func TestVerify(t *testing.T) {
	orders := &fakeOrders{order: map[string]interface{}{
		"id":     "order_123",
		"amount": 2500000.0,
		"status": "paid",
		"notes":  map[string]interface{}{"customer_id": "c1", "customer_name": "Ravi"},
	}}
	s := newWithOrders(orders, "k", "secret")

	if _, err := s.Verify(context.Background(), "order_123", "pay_1", "deadbeef"); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("bad signature: %v", err)
	}

	p, err := s.Verify(context.Background(), "order_123", "pay_1", sign("secret", "order_123", "pay_1"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if p.CustomerID != "c1" || p.Amount.IntPart() != 25000 {
		t.Errorf("payment = %+v", p)
	}
	entry := p.IncomeEntry()
	if entry["amount"] != 25000.0 || entry["desc"] != "Online payment pay_1 - Ravi" {
		t.Errorf("income entry = %v", entry)
	}
}

func TestVerifyRequiresPaidOrder(t *testing.T) {
	for _, status := range []string{"created", "attempted", ""} {
		orders := &fakeOrders{order: map[string]interface{}{"id": "order_9", "amount": 100.0, "status": status}}
		s := newWithOrders(orders, "k", "secret")
		_, err := s.Verify(context.Background(), "order_9", "pay_9", sign("secret", "order_9", "pay_9"))
		if !errors.Is(err, ErrNotPaid) {
			t.Errorf("status %q: err = %v, want ErrNotPaid", status, err)
		}
	}
}
