package bankdata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "client-id", "secret", 5*time.Second)
}

func TestGetAccounts(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/get" {
			t.Errorf("path = %s, want /accounts/get", r.URL.Path)
		}
		if r.Header.Get("PLAID-CLIENT-ID") != "client-id" {
			t.Errorf("missing client id header")
		}

		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if payload["access_token"] != "token-1" {
			t.Errorf("access_token = %v, want token-1", payload["access_token"])
		}

		json.NewEncoder(w).Encode(map[string]any{
			"accounts": []map[string]any{
				{
					"account_id": "ext-1",
					"name":       "Checking",
					"balances":   map[string]any{"available": 95.5, "current": 100},
					"type":       "depository",
					"subtype":    "checking",
				},
			},
			"item": map[string]any{"item_id": "item-1", "institution_id": "ins_1"},
		})
	})

	resp, err := client.GetAccounts(context.Background(), "token-1")
	if err != nil {
		t.Fatalf("GetAccounts() unexpected error: %v", err)
	}

	if len(resp.Accounts) != 1 {
		t.Fatalf("len(Accounts) = %d, want 1", len(resp.Accounts))
	}
	acct := resp.Accounts[0]
	if acct.AccountID != "ext-1" {
		t.Errorf("AccountID = %s, want ext-1", acct.AccountID)
	}
	if acct.Balances.Current == nil || acct.Balances.Current.String() != "100" {
		t.Errorf("Current balance = %v, want 100", acct.Balances.Current)
	}
	if resp.Item.InstitutionID != "ins_1" {
		t.Errorf("InstitutionID = %s, want ins_1", resp.Item.InstitutionID)
	}
}

func TestSyncTransactionsCursor(t *testing.T) {
	var gotCursor any
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		gotCursor = payload["cursor"]

		json.NewEncoder(w).Encode(map[string]any{
			"added": []map[string]any{
				{
					"transaction_id":  "t1",
					"account_id":      "ext-1",
					"name":            "Coffee",
					"amount":          4.5,
					"payment_channel": "in store",
					"category":        []string{"Food and Drink"},
					"date":            "2026-02-14",
					"pending":         false,
				},
			},
			"next_cursor": "c1",
			"has_more":    true,
		})
	})

	// First page carries no cursor.
	page, err := client.SyncTransactions(context.Background(), "token-1", "")
	if err != nil {
		t.Fatalf("SyncTransactions() unexpected error: %v", err)
	}
	if gotCursor != nil {
		t.Errorf("first request sent cursor %v, want none", gotCursor)
	}
	if !page.HasMore || page.NextCursor != "c1" {
		t.Errorf("page = {HasMore: %v, NextCursor: %s}, want {true, c1}", page.HasMore, page.NextCursor)
	}

	date, err := page.Added[0].GetDate()
	if err != nil {
		t.Fatalf("GetDate() unexpected error: %v", err)
	}
	if date.Format("2006-01-02") != "2026-02-14" {
		t.Errorf("date = %s, want 2026-02-14", date.Format("2006-01-02"))
	}

	// Subsequent pages pass the cursor back.
	if _, err := client.SyncTransactions(context.Background(), "token-1", "c1"); err != nil {
		t.Fatalf("SyncTransactions() unexpected error: %v", err)
	}
	if gotCursor != "c1" {
		t.Errorf("second request cursor = %v, want c1", gotCursor)
	}
}

func TestErrorEnvelope(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error_code":    "INVALID_ACCESS_TOKEN",
			"error_type":    "INVALID_INPUT",
			"error_message": "could not find matching access token",
		})
	})

	_, err := client.GetAccounts(context.Background(), "bad-token")
	if err == nil {
		t.Fatal("GetAccounts() expected error, got nil")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error %v is not an APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", apiErr.StatusCode)
	}
	if apiErr.ErrorCode != "INVALID_ACCESS_TOKEN" {
		t.Errorf("ErrorCode = %s, want INVALID_ACCESS_TOKEN", apiErr.ErrorCode)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"rate limit", &APIError{StatusCode: 429}, true},
		{"server error", &APIError{StatusCode: 502}, true},
		{"bad request", &APIError{StatusCode: 400}, false},
		{"unauthorized", &APIError{StatusCode: 401}, false},
		{"network failure", errors.New("connection reset"), true},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestCreateProcessorToken(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/processor/token/create" {
			t.Errorf("path = %s, want /processor/token/create", r.URL.Path)
		}
		var payload map[string]any
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["processor"] != "dwolla" {
			t.Errorf("processor = %v, want dwolla", payload["processor"])
		}
		json.NewEncoder(w).Encode(map[string]string{"processor_token": "processor-abc"})
	})

	token, err := client.CreateProcessorToken(context.Background(), "token-1", "ext-1", "dwolla")
	if err != nil {
		t.Fatalf("CreateProcessorToken() unexpected error: %v", err)
	}
	if token != "processor-abc" {
		t.Errorf("token = %s, want processor-abc", token)
	}
}
