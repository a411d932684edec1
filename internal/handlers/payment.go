package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"quizclash-backend/internal/database"
	"quizclash-backend/internal/models"
	"quizclash-backend/internal/payment"
)

type createPaymentRequest struct {
	PackageID int `json:"package_id"`
}

var orderSeq atomic.Int64

// newOrderCode builds a numeric gateway order code: a second-resolution
// timestamp widened with a process-local sequence so concurrent checkouts
// in the same second never collide. Stays inside the gateway's
// safe-integer range.
func newOrderCode() int64 {
	return time.Now().Unix()*1_000_000 + orderSeq.Add(1)%1_000_000
}

// CreatePayment opens a gateway checkout for a token package and records
// the pending payment.
func (a *API) CreatePayment(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	var req createPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pkg, found := catalogItem(req.PackageID)
	if !found || pkg.Tokens == 0 {
		writeError(w, http.StatusNotFound, "unknown token package")
		return
	}

	orderCode := newOrderCode()

	link, err := a.Pay.CreatePaymentLink(r.Context(), payment.LinkRequest{
		OrderCode:   orderCode,
		Amount:      pkg.Price,
		Description: fmt.Sprintf("tokens %d", pkg.Tokens),
		ReturnURL:   os.Getenv("PAYMENT_RETURN_URL"),
		CancelURL:   os.Getenv("PAYMENT_CANCEL_URL"),
	})
	if err != nil {
		a.Log.Errorf("payment link creation failed: %v", err)
		writeError(w, http.StatusBadGateway, "payment gateway unavailable")
		return
	}

	p := &models.Payment{
		UserID:      userID,
		OrderCode:   orderCode,
		PackageID:   pkg.ID,
		Amount:      pkg.Price,
		Tokens:      pkg.Tokens,
		CheckoutURL: link.CheckoutURL,
	}
	if err := database.CreatePayment(r.Context(), p); err != nil {
		a.Log.Errorf("payment insert failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to record payment")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"order_code":   orderCode,
		"checkout_url": link.CheckoutURL,
		"amount":       pkg.Price,
		"tokens":       pkg.Tokens,
	})
}

func (a *API) ListPayments(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	payments, err := database.ListPaymentsByUser(r.Context(), userID)
	if err != nil {
		a.Log.Errorf("payments read failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to read payments")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"data": payments})
}

func (a *API) CancelPayment(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := a.requireUser(w, r)
	if !ok {
		return
	}
	orderCode, err := strconv.ParseInt(r.PathValue("orderCode"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order code")
		return
	}

	p, err := database.GetPaymentByOrderCode(r.Context(), orderCode)
	if err != nil {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	if p.UserID != userID {
		writeError(w, http.StatusForbidden, "not your payment")
		return
	}
	if p.Status != models.PaymentPending {
		writeError(w, http.StatusConflict, "payment is not pending")
		return
	}

	if err := a.Pay.CancelPaymentLink(r.Context(), orderCode, "user cancelled"); err != nil {
		a.Log.Warnf("gateway cancel failed for %d: %v", orderCode, err)
	}
	if err := database.CancelPayment(r.Context(), orderCode); err != nil {
		a.Log.Errorf("payment cancel failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to cancel payment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

type webhookPayload struct {
	Code      string                 `json:"code"`
	Desc      string                 `json:"desc"`
	Data      map[string]interface{} `json:"data"`
	Signature string                 `json:"signature"`
}

// PaymentWebhook settles a payment when the gateway confirms it. The
// signature check rejects forged calls; settlement itself is idempotent, so
// gateway retries are harmless.
func (a *API) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid webhook body")
		return
	}
	if !a.Pay.VerifyWebhook(payload.Data, payload.Signature) {
		writeError(w, http.StatusForbidden, "invalid signature")
		return
	}

	rawOrder, ok := payload.Data["orderCode"].(float64)
	if !ok {
		writeError(w, http.StatusBadRequest, "missing order code")
		return
	}
	orderCode := int64(rawOrder)

	if payload.Code != "00" {
		a.Log.WithField("order_code", orderCode).Infof("payment not successful: %s", payload.Desc)
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	p, err := database.SettlePayment(r.Context(), orderCode)
	if err != nil {
		a.Log.Errorf("payment settle failed for %d: %v", orderCode, err)
		writeError(w, http.StatusInternalServerError, "failed to settle payment")
		return
	}

	a.Log.WithField("order_code", orderCode).Infof("payment settled, %d tokens credited", p.Tokens)
	writeJSON(w, http.StatusOK, map[string]string{"status": "settled"})
}
