package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/middleware"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/payments"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/toast"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
	"github.com/VyasaPraveen/Pragathi-CRM/pkg/utils"
)

// Gateway opens and verifies online payments. *payments.Service satisfies it.
type Gateway interface {
	CreateOrder(ctx context.Context, customer models.Customer) (payments.Order, error)
	Verify(ctx context.Context, orderID, paymentID, signature string) (payments.Payment, error)
}

type PaymentHandler struct {
	Views   *views.Service
	Gateway Gateway
}

func NewPaymentHandler(v *views.Service, gw Gateway) *PaymentHandler {
	return &PaymentHandler{Views: v, Gateway: gw}
}

// CreateOrder handles POST /api/customers/{id}/payment-order
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	customer, err := h.Views.Customer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	order, err := h.Gateway.CreateOrder(r.Context(), customer)
	if err != nil {
		if utils.StatusFor(err) == http.StatusInternalServerError {
			log.Printf("[Payments] CreateOrder for %s failed: %v", customer.ID, err)
			ws.Toasts.Push(err.Error(), toast.Error)
		}
		utils.ErrorFrom(w, err)
		return
	}
	utils.JSON(w, http.StatusOK, order)
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// Verify handles POST /api/payments/verify and records the income line.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	ws, ok := middleware.GetWorkspaceFromContext(r.Context())
	if !ok {
		utils.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.Gateway.Verify(r.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		if errors.Is(err, payments.ErrInvalidSignature) {
			log.Printf("[Payments] invalid signature for order %s", req.OrderID)
		}
		utils.ErrorFrom(w, err)
		return
	}
	res, recorded, err := h.Views.RecordPayment(r.Context(), ws, p.PaymentID, p.IncomeEntry())
	if err != nil {
		utils.ErrorFrom(w, err)
		return
	}
	if recorded {
		log.Printf("[Payments] payment %s already recorded as income %s", p.PaymentID, res.ID)
	}
	utils.JSON(w, http.StatusOK, map[string]any{"incomeId": res.ID, "paymentId": p.PaymentID, "alreadyRecorded": recorded})
}
