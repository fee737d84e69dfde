package payments

import (
	"context"
	"strings"
)

// Status is the closed payment status taxonomy. Provider-specific strings are
// mapped into it; anything unrecognized falls back to StatusPending.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// MapStatus normalizes a provider status string into the closed taxonomy.
func MapStatus(providerStatus string) Status {
	switch strings.ToLower(providerStatus) {
	case "processing":
		return StatusProcessing
	case "completed", "success":
		return StatusSuccess
	case "failed":
		return StatusFailed
	case "cancelled":
		return StatusCancelled
	case "pending":
		return StatusPending
	default:
		return StatusPending
	}
}

// InitiateResponse is the normalized result of starting a payment. Provider
// errors are reported through Success/Error, never as a Go error.
type InitiateResponse struct {
	Success     bool        `json:"success"`
	PaymentID   string      `json:"payment_id,omitempty"`
	PaymentURL  string      `json:"payment_url,omitempty"`
	Error       string      `json:"error,omitempty"`
	RawResponse interface{} `json:"raw_response,omitempty"`
}

// VerifyResponse is the normalized result of verifying a payment.
type VerifyResponse struct {
	Success     bool        `json:"success"`
	Status      Status      `json:"status"`
	Amount      int64       `json:"amount,omitempty"`
	Currency    string      `json:"currency,omitempty"`
	Error       string      `json:"error,omitempty"`
	RawResponse interface{} `json:"raw_response,omitempty"`
}

// Strategy is a provider-specific adapter to one external payment gateway.
type Strategy interface {
	InitiatePayment(ctx context.Context, amount int64, currency string, metadata map[string]string) *InitiateResponse
	VerifyPayment(ctx context.Context, paymentID string) *VerifyResponse
}
