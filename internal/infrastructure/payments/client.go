// Package payments is the HTTP client for the payments/transfer provider.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultTimeout = 30 * time.Second

	customersPath      = "/customers"
	fundingSourcesPath = "/funding-sources"
	authorizePath      = "/transfer/authorization/create"
	transferCreatePath = "/transfer/create"
)

// Client handles communication with the payments provider API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

var _ ClientInterface = (*Client)(nil)

// NewClient creates a new payments provider client.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// CustomerParams identifies a person on the payments side.
type CustomerParams struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Type      string `json:"type"` // "personal"
}

// Customer is the payments-side customer record reference.
type Customer struct {
	ID       string `json:"id"`
	Location string `json:"location"` // canonical customer URL
}

// FundingSourceParams registers a bank account as a transfer endpoint using a
// processor token minted by the aggregation provider.
type FundingSourceParams struct {
	CustomerURL    string `json:"customerUrl"`
	ProcessorToken string `json:"plaidToken"`
	Name           string `json:"name"`
}

type fundingSourceResponse struct {
	Location string `json:"location"`
}

// AuthorizeParams is the authorization request for a transfer. FundingAccountID
// references the destination funding source; LegalName is the payer's name.
type AuthorizeParams struct {
	AccountID        string          `json:"account_id"`
	FundingAccountID string          `json:"funding_account_id"`
	Type             string          `json:"type"`      // "credit" or "debit"
	Network          string          `json:"network"`   // "ach"
	ACHClass         string          `json:"ach_class"` // "ppd"
	Amount           decimal.Decimal `json:"amount"`
	LegalName        string          `json:"legal_name"`
}

// Authorization is the decision returned for an authorization request.
type Authorization struct {
	ID       string `json:"id"`
	Decision string `json:"decision"`
}

type authorizationResponse struct {
	Authorization Authorization `json:"authorization"`
}

// CreateParams creates the transfer previously authorized. AuthorizationID
// must come from a successful AuthorizeTransfer call.
type CreateParams struct {
	AccountID       string `json:"account_id"`
	AuthorizationID string `json:"authorization_id"`
	Description     string `json:"description"`
}

// Transfer is the created transfer as reported by the provider.
type Transfer struct {
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Amount  decimal.Decimal `json:"amount"`
	Created string          `json:"created"`
}

type transferResponse struct {
	Transfer Transfer `json:"transfer"`
}

// APIError is a non-2xx response from the payments provider.
type APIError struct {
	StatusCode int
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("payments error (status %d): %s - %s", e.StatusCode, e.Code, e.Message)
}

// CreateCustomer registers a customer and returns its reference.
func (c *Client) CreateCustomer(ctx context.Context, params CustomerParams) (*Customer, error) {
	var resp Customer
	if err := c.post(ctx, customersPath, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &resp, nil
}

// CreateFundingSource registers a funding source under a customer and returns
// its URL.
func (c *Client) CreateFundingSource(ctx context.Context, params FundingSourceParams) (string, error) {
	var resp fundingSourceResponse
	if err := c.post(ctx, fundingSourcesPath, params, &resp); err != nil {
		return "", fmt.Errorf("failed to create funding source: %w", err)
	}
	return resp.Location, nil
}

// AuthorizeTransfer requests authorization for a transfer.
func (c *Client) AuthorizeTransfer(ctx context.Context, params AuthorizeParams) (*Authorization, error) {
	var resp authorizationResponse
	if err := c.post(ctx, authorizePath, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to authorize transfer: %w", err)
	}
	return &resp.Authorization, nil
}

// CreateTransfer creates a previously authorized transfer.
func (c *Client) CreateTransfer(ctx context.Context, params CreateParams) (*Transfer, error) {
	var resp transferResponse
	if err := c.post(ctx, transferCreatePath, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to create transfer: %w", err)
	}
	return &resp.Transfer, nil
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
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
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
