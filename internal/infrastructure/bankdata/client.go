// Package bankdata is the HTTP client for the account-aggregation provider.
package bankdata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultTimeout = 30 * time.Second

	accountsPath       = "/accounts/get"
	institutionPath    = "/institutions/get_by_id"
	transactionsPath   = "/transactions/sync"
	linkTokenPath      = "/link/token/create"
	tokenExchangePath  = "/item/public_token/exchange"
	processorTokenPath = "/processor/token/create"
)

// Client handles communication with the aggregation provider API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	clientID   string
	secret     string
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a new aggregation provider client.
func NewClient(baseURL, clientID, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
	}
}

// Balances holds the provider balance pair. Either field may be absent.
type Balances struct {
	Available *decimal.Decimal `json:"available"`
	Current   *decimal.Decimal `json:"current"`
}

// Account is a bank account as reported by the provider.
type Account struct {
	AccountID    string   `json:"account_id"`
	Balances     Balances `json:"balances"`
	Name         string   `json:"name"`
	OfficialName *string  `json:"official_name"`
	Mask         string   `json:"mask"`
	Type         string   `json:"type"`
	Subtype      string   `json:"subtype"`
}

// Item identifies one bank connection.
type Item struct {
	ItemID        string `json:"item_id"`
	InstitutionID string `json:"institution_id"`
}

// AccountsResponse is the envelope for an accounts fetch.
type AccountsResponse struct {
	Accounts []Account `json:"accounts"`
	Item     Item      `json:"item"`
}

// Institution is provider metadata for a financial institution.
type Institution struct {
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
}

type institutionResponse struct {
	Institution Institution `json:"institution"`
}

// SyncedTransaction is one transaction record from the paginated sync feed.
type SyncedTransaction struct {
	TransactionID  string          `json:"transaction_id"`
	AccountID      string          `json:"account_id"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	PaymentChannel string          `json:"payment_channel"`
	Category       []string        `json:"category"`
	DateString     string          `json:"date"` // "2006-01-02"
	Pending        bool            `json:"pending"`
	LogoURL        *string         `json:"logo_url"`
}

// GetDate parses the transaction date.
func (t *SyncedTransaction) GetDate() (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", t.DateString)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse date '%s': %w", t.DateString, err)
	}
	return parsed, nil
}

// TransactionSyncPage is one page of the sync feed. The caller keeps
// requesting pages while HasMore is true, passing NextCursor back in.
type TransactionSyncPage struct {
	Added      []SyncedTransaction `json:"added"`
	NextCursor string              `json:"next_cursor"`
	HasMore    bool                `json:"has_more"`
}

// LinkTokenResponse carries a short-lived link token.
type LinkTokenResponse struct {
	LinkToken  string `json:"link_token"`
	Expiration string `json:"expiration"`
}

// ExchangeResult is the access credential issued for a linked item.
type ExchangeResult struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

type processorTokenResponse struct {
	ProcessorToken string `json:"processor_token"`
}

// APIError is a non-2xx response decoded from the provider error envelope.
type APIError struct {
	StatusCode int
	ErrorCode  string `json:"error_code"`
	ErrorType  string `json:"error_type"`
	Message    string `json:"error_message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s - %s", e.StatusCode, e.ErrorCode, e.Message)
}

// IsTransient reports whether err is worth retrying: rate limits, provider
// 5xx responses, and transport-level failures.
func IsTransient(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	// Network-level errors carry no status code.
	return err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// GetAccounts fetches the accounts and item for one access credential.
func (c *Client) GetAccounts(ctx context.Context, accessToken string) (*AccountsResponse, error) {
	var resp AccountsResponse
	payload := map[string]any{"access_token": accessToken}
	if err := c.post(ctx, accountsPath, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	return &resp, nil
}

// GetInstitution fetches institution metadata by identifier.
func (c *Client) GetInstitution(ctx context.Context, institutionID string) (*Institution, error) {
	var resp institutionResponse
	payload := map[string]any{
		"institution_id": institutionID,
		"country_codes":  []string{"US"},
	}
	if err := c.post(ctx, institutionPath, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch institution %s: %w", institutionID, err)
	}
	return &resp.Institution, nil
}

// SyncTransactions fetches one page of the transaction sync feed. An empty
// cursor starts from the beginning of the item's history.
func (c *Client) SyncTransactions(ctx context.Context, accessToken, cursor string) (*TransactionSyncPage, error) {
	var resp TransactionSyncPage
	payload := map[string]any{"access_token": accessToken}
	if cursor != "" {
		payload["cursor"] = cursor
	}
	if err := c.post(ctx, transactionsPath, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to sync transactions: %w", err)
	}
	return &resp, nil
}

// CreateLinkToken creates a short-lived token that the client-side link flow
// consumes.
func (c *Client) CreateLinkToken(ctx context.Context, clientUserID, clientName string) (*LinkTokenResponse, error) {
	var resp LinkTokenResponse
	payload := map[string]any{
		"user":          map[string]string{"client_user_id": clientUserID},
		"client_name":   clientName,
		"products":      []string{"auth"},
		"language":      "en",
		"country_codes": []string{"US"},
	}
	if err := c.post(ctx, linkTokenPath, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to create link token: %w", err)
	}
	return &resp, nil
}

// ExchangePublicToken exchanges the public token from a completed link flow
// for the long-lived access credential.
func (c *Client) ExchangePublicToken(ctx context.Context, publicToken string) (*ExchangeResult, error) {
	var resp ExchangeResult
	payload := map[string]any{"public_token": publicToken}
	if err := c.post(ctx, tokenExchangePath, payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to exchange public token: %w", err)
	}
	return &resp, nil
}

// CreateProcessorToken creates a token that the payments provider accepts as
// a funding-source reference.
func (c *Client) CreateProcessorToken(ctx context.Context, accessToken, accountID, processor string) (string, error) {
	var resp processorTokenResponse
	payload := map[string]any{
		"access_token": accessToken,
		"account_id":   accountID,
		"processor":    processor,
	}
	if err := c.post(ctx, processorTokenPath, payload, &resp); err != nil {
		return "", fmt.Errorf("failed to create processor token: %w", err)
	}
	return resp.ProcessorToken, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("PLAID-CLIENT-ID", c.clientID)
	req.Header.Set("PLAID-SECRET", c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, apiErr); err != nil {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
		}
		return apiErr
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}
