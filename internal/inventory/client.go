// Package inventory is a small REST client for the Stoqflow inventory platform.
package inventory

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrConfigInvalid = errors.New("inventory config invalid")
	ErrRequestFailed = errors.New("inventory request failed")
	ErrRateLimited   = errors.New("inventory rate limited")
	ErrHTTPStatus    = errors.New("inventory unexpected status")
)

const defaultTimeout = 15 * time.Second

// Config connection settings.
type Config struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// HTTPError a non-2xx response. Error() renders "HTTP {status}: {message}".
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Unwrap exposes ErrRateLimited for 429 responses.
func (e *HTTPError) Unwrap() error {
	if e.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return ErrHTTPStatus
}

// Shop a shop under a brand.
type Shop struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Brand a brand in the company hierarchy.
type Brand struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Shops []Shop `json:"shops"`
}

// Company the /company response.
type Company struct {
	ID     string  `json:"_id"`
	Name   string  `json:"name"`
	Brands []Brand `json:"brands"`
}

// Product a product record as returned by the platform.
type Product struct {
	ID          string   `json:"_id"`
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	RetailPrice *float64 `json:"retail_price,omitempty"`
	BrandID     string   `json:"brand_id,omitempty"`
}

// ProductInput create payload.
type ProductInput struct {
	Type        string   `json:"type"`
	SKU         string   `json:"sku"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	RetailPrice *float64 `json:"retail_price,omitempty"`
	BrandID     string   `json:"brand_id"`
}

// ProductUpdate update payload.
type ProductUpdate struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	RetailPrice *float64 `json:"retail_price,omitempty"`
}

// CustomField key/value pair attached after creation.
type CustomField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Client Basic-auth JSON client rooted at {BaseURL}/api/v2.
type Client struct {
	baseURL string
	auth    string
	http    *http.Client
}

// NewClient validates the config and builds a client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("%w: base url is invalid", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", ErrConfigInvalid)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: base + "/api/v2",
		auth:    BasicAuth(cfg.ClientID, cfg.ClientSecret),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// BasicAuth returns base64(client_id:client_secret).
func BasicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(strings.TrimSpace(clientID) + ":" + strings.TrimSpace(clientSecret)))
}

// GetCompany fetches the company, brand and shop hierarchy.
func (c *Client) GetCompany(ctx context.Context) (*Company, error) {
	var company Company
	if err := c.do(ctx, http.MethodGet, "/company", nil, &company); err != nil {
		return nil, err
	}
	return &company, nil
}

// FindProductBySKU returns nil when no product carries the SKU.
func (c *Client) FindProductBySKU(ctx context.Context, sku string) (*Product, error) {
	query := url.Values{}
	query.Set("sku", sku)
	query.Set("fields", "*")
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products?"+query.Encode(), nil, &products); err != nil {
		return nil, err
	}
	if len(products) == 0 || products[0].ID == "" {
		return nil, nil
	}
	return &products[0], nil
}

// CreateProduct creates a product and returns its id.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (string, error) {
	if input.Type == "" {
		input.Type = "basic"
	}
	var created Product
	if err := c.do(ctx, http.MethodPost, "/products", input, &created); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", fmt.Errorf("%w: create product returned no id", ErrRequestFailed)
	}
	return created.ID, nil
}

// UpdateProduct replaces name, description and retail price.
func (c *Client) UpdateProduct(ctx context.Context, id string, input ProductUpdate) error {
	return c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), input, nil)
}

// SetCustomFields attaches cross-reference fields to a product.
func (c *Client) SetCustomFields(ctx context.Context, id string, fields []CustomField) error {
	body := map[string]interface{}{"custom_fields": fields}
	return c.do(ctx, http.MethodPut, "/products/"+url.PathEscape(id), body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode body: %v", ErrRequestFailed, err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Basic "+c.auth)
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrRequestFailed, err)
	}
	return nil
}

// errorMessage prefers json.message, then json.error, then the raw body.
func errorMessage(body []byte) string {
	var parsed map[string]interface{}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if msg, ok := parsed["message"].(string); ok && msg != "" {
			return msg
		}
		if msg, ok := parsed["error"].(string); ok && msg != "" {
			return msg
		}
	}
	return strings.TrimSpace(string(body))
}
