package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"biblio-circulate/internal/config"
)

// GatewayService talks to the hosted payment provider over HTTP
type GatewayService struct {
	cfg    config.GatewayConfig
	client *http.Client
}

// NewGatewayService creates a new gateway client
func NewGatewayService(cfg config.GatewayConfig) *GatewayService {
	return &GatewayService{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// checkoutRequest is the provider's initialize payload
type checkoutRequest struct {
	TxRef     string `json:"tx_ref"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	ReturnURL string `json:"return_url"`
}

// checkoutResponse is the provider's initialize response
type checkoutResponse struct {
	Status string `json:"status"`
	Data   struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
	Message string `json:"message"`
}

// InitializeCheckout creates a hosted checkout session and returns the URL
// the borrower is redirected to
func (s *GatewayService) InitializeCheckout(ctx context.Context, txRef string, amount int64, fullName, email string) (string, error) {
	payload := checkoutRequest{
		TxRef:     txRef,
		Amount:    amount,
		Currency:  "ETB",
		FullName:  fullName,
		Email:     email,
		ReturnURL: s.cfg.ReturnURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/transaction/initialize", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.SecretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gateway initialize error: %s", string(respBody))
	}

	var checkout checkoutResponse
	if err := json.Unmarshal(respBody, &checkout); err != nil {
		return "", err
	}
	if checkout.Status != "success" || checkout.Data.CheckoutURL == "" {
		return "", fmt.Errorf("gateway initialize rejected: %s", checkout.Message)
	}

	return checkout.Data.CheckoutURL, nil
}
