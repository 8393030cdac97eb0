package momo

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"github.com/lipago/voucher-payments/internal/core"
	"github.com/lipago/voucher-payments/internal/port/output"
)

var nonDigits = regexp.MustCompile(`\D`)

// Config carries the MoMo collection API credentials and environment
type Config struct {
	BaseURL         string
	SubscriptionKey string
	APIUser         string
	APIKey          string
	TargetEnv       string
}

// Client is a secondary adapter that implements the MomoGateway output
// port against the MTN MoMo collection API. It holds no state beyond the
// configured credentials; a fresh token is fetched per operation.
type Client struct {
	cfg     Config
	http    *resty.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a new MoMo client
func NewClient(cfg Config) output.MomoGateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://sandbox.momodeveloper.mtn.com"
	}
	if cfg.TargetEnv == "" {
		cfg.TargetEnv = "sandbox"
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "momo",
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
	})

	return &Client{
		cfg:     cfg,
		http:    resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(30 * time.Second),
		breaker: breaker,
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Reason   string `json:"reason"`
}

// Authenticate exchanges the configured credentials for a short-lived
// bearer token
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var token tokenResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetBasicAuth(c.cfg.APIUser, c.cfg.APIKey).
			SetHeader("Content-Type", "application/x-www-form-urlencoded").
			SetHeader("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey).
			SetFormData(map[string]string{"grant_type": "client_credentials"}).
			SetResult(&token).
			Post("/collection/token/")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("token request returned %s", resp.Status())
		}
		return token.AccessToken, nil
	})
	if err != nil {
		return "", fmt.Errorf("momo authentication failed: %w", err)
	}
	return result.(string), nil
}

// RequestToPay validates phone and amount, then submits a request-to-pay.
// A nil error means the provider accepted the request, not that the payer
// has approved it; the returned reference id correlates the later status
// checks and webhooks.
func (c *Client) RequestToPay(ctx context.Context, phone string, amount float64, currency core.Currency, externalID, payeeNote, payerMessage string) (string, error) {
	msisdn, err := NormalizePhone(phone)
	if err != nil {
		return "", err
	}
	amountStr, err := FormatAmount(amount)
	if err != nil {
		return "", err
	}

	token, err := c.Authenticate(ctx)
	if err != nil {
		return "", err
	}
	referenceID := uuid.NewString()

	body := map[string]interface{}{
		"amount":     amountStr,
		"currency":   string(currency),
		"externalId": externalID,
		"payer": map[string]string{
			"partyIdType": "MSISDN",
			"partyId":     msisdn,
		},
		"payerMessage": payerMessage,
		"payeeNote":    payeeNote,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	_, err = c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("X-Reference-Id", referenceID).
			SetHeader("X-Target-Environment", c.cfg.TargetEnv).
			SetHeader("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey).
			SetHeader("Content-Type", "application/json").
			SetBody(payload).
			Post("/collection/v1_0/requesttopay")
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("request-to-pay returned %s", resp.Status())
		}
		return nil, nil
	})
	if err != nil {
		return "", fmt.Errorf("momo request-to-pay failed: %w", err)
	}
	return referenceID, nil
}

// CheckStatus returns the provider's current status string for a
// reference id
func (c *Client) CheckStatus(ctx context.Context, referenceID string) (string, error) {
	token, err := c.Authenticate(ctx)
	if err != nil {
		return "", err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var status statusResponse
		resp, err := c.http.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetHeader("X-Target-Environment", c.cfg.TargetEnv).
			SetHeader("Ocp-Apim-Subscription-Key", c.cfg.SubscriptionKey).
			SetResult(&status).
			Get("/collection/v1_0/requesttopay/" + referenceID)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("status check returned %s", resp.Status())
		}
		return status.Status, nil
	})
	if err != nil {
		return "", fmt.Errorf("momo status check failed: %w", err)
	}
	return result.(string), nil
}

// NormalizePhone strips everything but digits and requires a 9 to 12
// digit MSISDN
func NormalizePhone(phone string) (string, error) {
	digits := nonDigits.ReplaceAllString(phone, "")
	if len(digits) < 9 || len(digits) > 12 {
		return "", fmt.Errorf("%w: invalid phone number length", core.ErrValidation)
	}
	return digits, nil
}

// FormatAmount renders a positive amount with exactly two decimals
func FormatAmount(amount float64) (string, error) {
	if amount <= 0 {
		return "", fmt.Errorf("%w: invalid amount", core.ErrValidation)
	}
	return fmt.Sprintf("%.2f", amount), nil
}
