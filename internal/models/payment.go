package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentPaid      PaymentStatus = "PAID"
	PaymentCancelled PaymentStatus = "CANCELLED"
	PaymentExpired   PaymentStatus = "EXPIRED"
)

// Payment is one token-package checkout with the external gateway.
// OrderCode is the gateway-facing identifier; Tokens is credited to the
// user exactly once, when the webhook flips the status to PAID.
type Payment struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user_id"`
	OrderCode   int64         `json:"order_code"`
	PackageID   int           `json:"package_id"`
	Amount      int           `json:"amount"`
	Tokens      int           `json:"tokens"`
	Status      PaymentStatus `json:"status"`
	CheckoutURL string        `json:"checkout_url"`
	CreatedAt   time.Time     `json:"created_at"`
	PaidAt      *time.Time    `json:"paid_at,omitempty"`
}
