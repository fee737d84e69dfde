package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"dinemart/internal/common"
	"dinemart/internal/payments"

	"github.com/labstack/echo/v4"
)

// PaymentHandlers handles HTTP requests for payments
type PaymentHandlers struct {
	registry *payments.Registry
}

// NewPaymentHandlers creates a new payment handlers instance
func NewPaymentHandlers(registry *payments.Registry) *PaymentHandlers {
	return &PaymentHandlers{registry: registry}
}

type initiatePaymentRequest struct {
	Amount   int64             `json:"amount"`
	Provider string            `json:"provider"`
	Currency string            `json:"currency"`
	Language string            `json:"language"`
	Metadata map[string]string `json:"metadata"`
}

// InitiatePayment handles POST /payments/initiate
func (h *PaymentHandlers) InitiatePayment(c echo.Context) error {
	var req initiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	metadata := req.Metadata
	if req.Language != "" {
		if metadata == nil {
			metadata = map[string]string{}
		}
		metadata["language"] = req.Language
	}

	resp, err := h.registry.Initiate(c.Request().Context(), req.Amount, req.Provider, req.Currency, metadata)
	if err != nil {
		return common.SendDomainError(c, err)
	}
	if !resp.Success {
		return common.SendDomainError(c, common.GatewayFailuref("payment initiation failed: %s", resp.Error))
	}

	provider := req.Provider
	if provider == "" {
		provider = payments.DefaultProvider
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":    true,
		"paymentId":  resp.PaymentID,
		"paymentUrl": resp.PaymentURL,
		"provider":   provider,
	})
}

// VerifyPayment handles GET /payments/verify
func (h *PaymentHandlers) VerifyPayment(c echo.Context) error {
	paymentID := c.QueryParam("paymentId")
	if paymentID == "" {
		return common.SendValidationError(c, "paymentId", "paymentId is required")
	}

	resp, err := h.registry.Verify(c.Request().Context(), paymentID, c.QueryParam("provider"))
	if err != nil {
		return common.SendDomainError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":   resp.Success,
		"status":    resp.Status,
		"amount":    resp.Amount,
		"currency":  resp.Currency,
		"paymentId": paymentID,
	})
}

// GetProviders handles GET /payments/providers
func (h *PaymentHandlers) GetProviders(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"providers": h.registry.Providers(),
	})
}

// GuidiniWebhook handles POST /payments/webhook/guidini. The gateway's
// webhook is acknowledge-only: the payload is logged and no order state is
// touched; state changes go through the verify flow.
func (h *PaymentHandlers) GuidiniWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Failed to read request body")
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("GuidiniPay webhook received non-JSON payload (%d bytes)", len(body))
	} else {
		log.Printf("GuidiniPay webhook received: %v", payload)
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
