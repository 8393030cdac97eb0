package momo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"

	"github.com/lipago/voucher-payments/internal/core"
)

func newTestServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/collection/token/":
			user, key, ok := r.BasicAuth()
			if !ok || user != "api-user" || key != "api-key" {
				t.Errorf("token request basic auth = %q/%q", user, key)
			}
			if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "sub-key" {
				t.Errorf("token subscription key = %q", got)
			}
			if err := r.ParseForm(); err != nil || r.PostFormValue("grant_type") != "client_credentials" {
				t.Errorf("token grant_type = %q", r.PostFormValue("grant_type"))
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token": "test-token",
				"token_type":   "Bearer",
				"expires_in":   3600,
			})

		case r.Method == http.MethodPost && r.URL.Path == "/collection/v1_0/requesttopay":
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("request-to-pay authorization = %q", got)
			}
			if got := r.Header.Get("X-Target-Environment"); got != "sandbox" {
				t.Errorf("target environment = %q", got)
			}
			if got := r.Header.Get("Ocp-Apim-Subscription-Key"); got != "sub-key" {
				t.Errorf("subscription key = %q", got)
			}
			if _, err := uuid.Parse(r.Header.Get("X-Reference-Id")); err != nil {
				t.Errorf("X-Reference-Id %q is not a uuid", r.Header.Get("X-Reference-Id"))
			}
			var body struct {
				Amount   string `json:"amount"`
				Currency string `json:"currency"`
				Payer    struct {
					PartyIDType string `json:"partyIdType"`
					PartyID     string `json:"partyId"`
				} `json:"payer"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode request-to-pay body: %v", err)
			}
			if body.Amount != "10.00" || body.Currency != "EUR" {
				t.Errorf("body amount/currency = %q/%q", body.Amount, body.Currency)
			}
			if body.Payer.PartyIDType != "MSISDN" || body.Payer.PartyID != "250780000000" {
				t.Errorf("payer = %+v", body.Payer)
			}
			w.WriteHeader(http.StatusAccepted)

		case r.Method == http.MethodGet && r.URL.Path == "/collection/v1_0/requesttopay/known-ref":
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				t.Errorf("status check authorization = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"status": "SUCCESSFUL"})

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testClient(serverURL string) *Client {
	return NewClient(Config{
		BaseURL:         serverURL,
		SubscriptionKey: "sub-key",
		APIUser:         "api-user",
		APIKey:          "api-key",
		TargetEnv:       "sandbox",
	}).(*Client)
}

func TestAuthenticate(t *testing.T) {
	var hits int32
	server := newTestServer(t, &hits)
	defer server.Close()

	token, err := testClient(server.URL).Authenticate(context.Background())
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if token != "test-token" {
		t.Errorf("token = %q", token)
	}
}

func TestRequestToPay(t *testing.T) {
	var hits int32
	server := newTestServer(t, &hits)
	defer server.Close()

	referenceID, err := testClient(server.URL).RequestToPay(
		context.Background(),
		"+250 780 000 000",
		10.0,
		core.CurrencyEUR,
		"payment_1",
		"Payment for order 1",
		"Please pay 10.00 for your order",
	)
	if err != nil {
		t.Fatalf("RequestToPay: %v", err)
	}
	if _, err := uuid.Parse(referenceID); err != nil {
		t.Errorf("reference id %q is not a uuid", referenceID)
	}
	// One token exchange plus the request-to-pay itself
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Errorf("server hits = %d, want 2", n)
	}
}

func TestRequestToPay_ValidatesBeforeDialing(t *testing.T) {
	var hits int32
	server := newTestServer(t, &hits)
	defer server.Close()
	client := testClient(server.URL)

	cases := []struct {
		name   string
		phone  string
		amount float64
	}{
		{"phone too short", "12345678", 10},
		{"phone too long", "1234567890123", 10},
		{"zero amount", "+250780000000", 0},
		{"negative amount", "+250780000000", -5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.RequestToPay(context.Background(), tc.phone, tc.amount, core.CurrencyEUR, "x", "y", "z")
			if !errors.Is(err, core.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("validation failures must not reach the network, server hits = %d", n)
	}
}

func TestCheckStatus(t *testing.T) {
	var hits int32
	server := newTestServer(t, &hits)
	defer server.Close()

	status, err := testClient(server.URL).CheckStatus(context.Background(), "known-ref")
	if err != nil {
		t.Fatalf("CheckStatus: %v", err)
	}
	if status != "SUCCESSFUL" {
		t.Errorf("status = %q, want SUCCESSFUL", status)
	}
}

func TestNormalizePhone(t *testing.T) {
	got, err := NormalizePhone("+250 (780) 000-000")
	if err != nil {
		t.Fatalf("NormalizePhone: %v", err)
	}
	if got != "250780000000" {
		t.Errorf("normalized = %q", got)
	}
}

func TestFormatAmount(t *testing.T) {
	got, err := FormatAmount(10)
	if err != nil {
		t.Fatalf("FormatAmount: %v", err)
	}
	if got != "10.00" {
		t.Errorf("formatted = %q", got)
	}
	if _, err := FormatAmount(0); !errors.Is(err, core.ErrValidation) {
		t.Errorf("expected validation error for zero amount, got %v", err)
	}
}
