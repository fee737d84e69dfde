package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const guidiniTimeout = 30 * time.Second

// GuidiniStrategy talks to the GuidiniPay gateway.
type GuidiniStrategy struct {
	baseURL   string
	appKey    string
	appSecret string
	http      *http.Client
}

// NewGuidiniStrategy creates the GuidiniPay adapter. Credentials are required.
func NewGuidiniStrategy(baseURL, appKey, appSecret string) (*GuidiniStrategy, error) {
	if appKey == "" || appSecret == "" {
		return nil, fmt.Errorf("guidini credentials are not configured")
	}
	return &GuidiniStrategy{
		baseURL:   baseURL,
		appKey:    appKey,
		appSecret: appSecret,
		http:      &http.Client{Timeout: guidiniTimeout},
	}, nil
}

type guidiniInitiatePayload struct {
	Amount   string `json:"amount"`
	Language string `json:"language"`
}

type guidiniInitiateResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			FormURL string `json:"form_url"`
		} `json:"attributes"`
	} `json:"data"`
	Message string `json:"message"`
}

type guidiniVerifyResponse struct {
	Status   string `json:"status"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Message  string `json:"message"`
}

// InitiatePayment starts a payment and returns the hosted form URL. Gateway
// and transport errors come back as a failed response, never as a panic or a
// raw error escaping the adapter.
func (s *GuidiniStrategy) InitiatePayment(ctx context.Context, amount int64, currency string, metadata map[string]string) *InitiateResponse {
	language := "fr"
	if metadata != nil && metadata["language"] != "" {
		language = metadata["language"]
	}

	payload := guidiniInitiatePayload{
		Amount:   strconv.FormatInt(amount, 10),
		Language: language,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return &InitiateResponse{Success: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/payment/initiate", bytes.NewReader(body))
	if err != nil {
		return &InitiateResponse{Success: false, Error: err.Error()}
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return &InitiateResponse{Success: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &InitiateResponse{Success: false, Error: err.Error()}
	}

	var parsed guidiniInitiateResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &InitiateResponse{Success: false, Error: "unexpected gateway response", RawResponse: string(raw)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return &InitiateResponse{Success: false, Error: msg, RawResponse: string(raw)}
	}

	return &InitiateResponse{
		Success:     true,
		PaymentID:   parsed.Data.ID,
		PaymentURL:  parsed.Data.Attributes.FormURL,
		RawResponse: string(raw),
	}
}

// VerifyPayment fetches the payment state and maps the provider status into
// the closed taxonomy.
func (s *GuidiniStrategy) VerifyPayment(ctx context.Context, paymentID string) *VerifyResponse {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/payment/verify/"+paymentID, nil)
	if err != nil {
		return &VerifyResponse{Success: false, Status: StatusFailed, Error: err.Error()}
	}
	s.setHeaders(req)

	resp, err := s.http.Do(req)
	if err != nil {
		return &VerifyResponse{Success: false, Status: StatusFailed, Error: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &VerifyResponse{Success: false, Status: StatusFailed, Error: err.Error()}
	}

	var parsed guidiniVerifyResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &VerifyResponse{Success: false, Status: StatusFailed, Error: "unexpected gateway response", RawResponse: string(raw)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = fmt.Sprintf("gateway returned status %d", resp.StatusCode)
		}
		return &VerifyResponse{Success: false, Status: StatusFailed, Error: msg, RawResponse: string(raw)}
	}

	status := MapStatus(parsed.Status)
	currency := parsed.Currency
	if currency == "" {
		currency = "DZD"
	}

	return &VerifyResponse{
		Success:     status == StatusSuccess,
		Status:      status,
		Amount:      parsed.Amount,
		Currency:    currency,
		RawResponse: string(raw),
	}
}

func (s *GuidiniStrategy) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-app-key", s.appKey)
	req.Header.Set("x-app-secret", s.appSecret)
}
