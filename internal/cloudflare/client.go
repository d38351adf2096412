package cloudflare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dns_manager/internal/model"
)

const (
	apiBase        = "https://api.cloudflare.com/client/v4"
	requestTimeout = 10 * time.Second
	recordsPerPage = 1000
	zonesPerPage   = 50
)

// Client is a stateless wrapper over the Cloudflare v4 API scoped to one
// account credential. It performs no local caching; every call reflects
// remote truth at call time.
type Client struct {
	email    string
	apiKey   string
	base     string
	useToken bool
	client   *http.Client
}

// NewClient creates a client for the given account. Credentials longer than
// 40 characters paired with a non-email account field are treated as API
// Tokens (Bearer auth); anything else as a Global API Key (X-Auth headers).
func NewClient(account *model.CloudflareAccount) *Client {
	return &Client{
		email:    account.Email,
		apiKey:   account.APIKey,
		base:     apiBase,
		useToken: len(account.APIKey) > 40 && !strings.Contains(account.Email, "@"),
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Zone represents a Cloudflare zone (API response)
type Zone struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	NameServers []string `json:"name_servers"`
}

// Record represents a Cloudflare DNS record (API response).
// Name is fully qualified as the provider returns it.
type Record struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Content  string `json:"content"`
	TTL      int    `json:"ttl"`
	Priority *int   `json:"priority,omitempty"`
	Proxied  bool   `json:"proxied"`
}

// RecordInput is the payload for record create/update calls.
// Name must be fully qualified.
type RecordInput struct {
	Type     string
	Name     string
	Content  string
	TTL      int
	Priority *int
	Proxied  bool
}

// apiResponse is the Cloudflare API envelope
type apiResponse struct {
	Success bool            `json:"success"`
	Errors  []apiError      `json:"errors"`
	Result  json.RawMessage `json:"result"`
}

// apiError is one entry of the envelope's errors array
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Cloudflare error codes for "record does not exist"
const (
	codeRecordNotFound     = 81044
	codeRecordIDNotFound   = 81043
	codeInvalidCredentials = 9103
	codeInvalidToken       = 6003
	codeAuthenticationErr  = 10000
)

// ListZones lists all zones visible to the account credential
func (c *Client) ListZones(ctx context.Context) ([]Zone, error) {
	url := fmt.Sprintf("%s/zones?per_page=%d", c.base, zonesPerPage)

	var zones []Zone
	if err := c.get(ctx, url, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// ListRecords lists all DNS records for a zone
func (c *Client) ListRecords(ctx context.Context, zoneID string) ([]Record, error) {
	url := fmt.Sprintf("%s/zones/%s/dns_records?per_page=%d", c.base, zoneID, recordsPerPage)

	var records []Record
	if err := c.get(ctx, url, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CreateRecord creates a DNS record and returns the provider-assigned id
func (c *Client) CreateRecord(ctx context.Context, zoneID string, record RecordInput) (string, error) {
	url := fmt.Sprintf("%s/zones/%s/dns_records", c.base, zoneID)

	var created Record
	if err := c.send(ctx, http.MethodPost, url, recordPayload(record), &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// UpdateRecord updates an existing DNS record by its provider id
func (c *Client) UpdateRecord(ctx context.Context, zoneID, recordID string, record RecordInput) error {
	url := fmt.Sprintf("%s/zones/%s/dns_records/%s", c.base, zoneID, recordID)
	return c.send(ctx, http.MethodPut, url, recordPayload(record), nil)
}

// DeleteRecord deletes a DNS record by its provider id.
// Returns ErrRecordGone if the provider no longer has the record.
func (c *Client) DeleteRecord(ctx context.Context, zoneID, recordID string) error {
	url := fmt.Sprintf("%s/zones/%s/dns_records/%s", c.base, zoneID, recordID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrRecordGone
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	var cfResp apiResponse
	if err := json.Unmarshal(body, &cfResp); err != nil {
		return &ProviderError{StatusCode: resp.StatusCode, Message: "failed to parse response"}
	}

	if !cfResp.Success {
		for _, e := range cfResp.Errors {
			if e.Code == codeRecordNotFound || e.Code == codeRecordIDNotFound {
				return ErrRecordGone
			}
		}
		return classify(resp.StatusCode, cfResp.Errors)
	}

	return nil
}

// VerifyResult is the outcome of a credential check
type VerifyResult struct {
	OK    bool     `json:"ok"`
	Zones []string `json:"zones"`
}

// VerifyCredentials checks the account credential without mutating anything.
// The zone list is fetched as the probe; for token auth the token verify
// endpoint is consulted first for a precise auth failure message.
func (c *Client) VerifyCredentials(ctx context.Context) (*VerifyResult, error) {
	if c.useToken {
		url := fmt.Sprintf("%s/user/tokens/verify", c.base)
		if err := c.get(ctx, url, nil); err != nil {
			return nil, err
		}
	}

	zones, err := c.ListZones(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(zones))
	for _, z := range zones {
		names = append(names, z.Name)
	}
	return &VerifyResult{OK: true, Zones: names}, nil
}

// recordPayload builds the JSON body for create/update calls.
// Priority is included only when set (MX/SRV).
func recordPayload(record RecordInput) map[string]interface{} {
	payload := map[string]interface{}{
		"type":    record.Type,
		"name":    record.Name,
		"content": record.Content,
		"ttl":     record.TTL,
		"proxied": record.Proxied,
	}
	if record.Priority != nil {
		payload["priority"] = *record.Priority
	}
	return payload
}

// get performs a GET request and unmarshals the envelope result into out
func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	return c.send(ctx, http.MethodGet, url, nil, out)
}

// send performs one API call, validates the envelope and decodes the result
func (c *Client) send(ctx context.Context, method, url string, payload map[string]interface{}, out interface{}) error {
	var reqBody io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		reqBody = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Err: err}
	}

	var cfResp apiResponse
	if err := json.Unmarshal(body, &cfResp); err != nil {
		if resp.StatusCode >= 400 {
			return classify(resp.StatusCode, nil)
		}
		return &ProviderError{StatusCode: resp.StatusCode, Message: "failed to parse response"}
	}

	if !cfResp.Success {
		return classify(resp.StatusCode, cfResp.Errors)
	}

	if out != nil && cfResp.Result != nil {
		if err := json.Unmarshal(cfResp.Result, out); err != nil {
			return &ProviderError{StatusCode: resp.StatusCode, Message: "failed to parse result"}
		}
	}

	return nil
}

// setHeaders applies the account's auth headers
func (c *Client) setHeaders(req *http.Request) {
	if c.useToken {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	} else {
		req.Header.Set("X-Auth-Email", c.email)
		req.Header.Set("X-Auth-Key", c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")
}

// classify maps an HTTP status plus envelope errors to a typed failure
func classify(status int, errs []apiError) error {
	msg := formatErrors(errs)

	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return &AuthError{Message: msg}
	}
	for _, e := range errs {
		if e.Code == codeInvalidCredentials || e.Code == codeInvalidToken || e.Code == codeAuthenticationErr {
			return &AuthError{Message: msg}
		}
	}
	return &ProviderError{StatusCode: status, Message: msg}
}

// formatErrors formats envelope errors into a readable string
func formatErrors(errs []apiError) string {
	if len(errs) == 0 {
		return "unknown error"
	}

	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, fmt.Sprintf("[%d] %s", e.Code, e.Message))
	}
	return strings.Join(msgs, "; ")
}
