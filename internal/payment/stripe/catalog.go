package stripe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Product catalog product; DefaultPrice is set when the API expanded it.
type Product struct {
	ID             string
	Name           string
	Description    string
	Active         bool
	DefaultPriceID string
	DefaultPrice   *Price
	Metadata       map[string]string
}

// Price a one-time price.
type Price struct {
	ID         string
	ProductID  string
	Currency   string
	UnitAmount int64
	Active     bool
}

// ProductPage one page of a product listing.
type ProductPage struct {
	Data    []Product
	HasMore bool
}

// ProductListParams listing filters.
type ProductListParams struct {
	Active        *bool
	Limit         int
	StartingAfter string
}

// ProductInput create or update fields; empty strings are not sent on update.
type ProductInput struct {
	Name           string
	Description    string
	DefaultPriceID string
	Metadata       map[string]string
}

// PriceInput new price fields.
type PriceInput struct {
	ProductID  string
	Currency   string
	UnitAmount int64
	Metadata   map[string]string
}

// ListProducts returns one page ordered by the API's default ordering.
func (c *Client) ListProducts(ctx context.Context, params ProductListParams) (*ProductPage, error) {
	form := url.Values{}
	limit := params.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	form.Set("limit", strconv.Itoa(limit))
	if params.Active != nil {
		form.Set("active", strconv.FormatBool(*params.Active))
	}
	if params.StartingAfter != "" {
		form.Set("starting_after", params.StartingAfter)
	}
	raw, err := c.doFormRequest(ctx, http.MethodGet, "/v1/products", form)
	if err != nil {
		return nil, err
	}
	page := &ProductPage{HasMore: readBool(raw, "has_more")}
	items, _ := raw["data"].([]interface{})
	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		page.Data = append(page.Data, parseProduct(obj))
	}
	return page, nil
}

// ListAllProducts walks every page.
func (c *Client) ListAllProducts(ctx context.Context, active *bool) ([]Product, error) {
	products := make([]Product, 0)
	params := ProductListParams{Active: active, Limit: 100}
	for {
		page, err := c.ListProducts(ctx, params)
		if err != nil {
			return nil, err
		}
		products = append(products, page.Data...)
		if !page.HasMore || len(page.Data) == 0 {
			return products, nil
		}
		params.StartingAfter = page.Data[len(page.Data)-1].ID
	}
}

// GetProduct retrieves a product by id.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrConfigInvalid)
	}
	raw, err := c.doFormRequest(ctx, http.MethodGet, "/v1/products/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	product := parseProduct(raw)
	return &product, nil
}

// GetPrice retrieves a price by id.
func (c *Client) GetPrice(ctx context.Context, id string) (*Price, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: price id is required", ErrConfigInvalid)
	}
	raw, err := c.doFormRequest(ctx, http.MethodGet, "/v1/prices/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	price := parsePrice(raw)
	return &price, nil
}

// CreateProduct creates a product.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (*Product, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: product name is required", ErrConfigInvalid)
	}
	raw, err := c.doFormRequest(ctx, http.MethodPost, "/v1/products", productForm(input))
	if err != nil {
		return nil, err
	}
	product := parseProduct(raw)
	return &product, nil
}

// UpdateProduct updates a product in place.
func (c *Client) UpdateProduct(ctx context.Context, id string, input ProductInput) (*Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrConfigInvalid)
	}
	raw, err := c.doFormRequest(ctx, http.MethodPost, "/v1/products/"+url.PathEscape(id), productForm(input))
	if err != nil {
		return nil, err
	}
	product := parseProduct(raw)
	return &product, nil
}

// CreatePrice creates a one-time price for a product.
func (c *Client) CreatePrice(ctx context.Context, input PriceInput) (*Price, error) {
	if strings.TrimSpace(input.ProductID) == "" {
		return nil, fmt.Errorf("%w: product id is required", ErrConfigInvalid)
	}
	if input.UnitAmount <= 0 {
		return nil, fmt.Errorf("%w: unit_amount must be positive", ErrConfigInvalid)
	}
	currency := strings.ToLower(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = "eur"
	}
	form := url.Values{}
	form.Set("product", input.ProductID)
	form.Set("currency", currency)
	form.Set("unit_amount", strconv.FormatInt(input.UnitAmount, 10))
	setMetadata(form, "metadata", input.Metadata)
	raw, err := c.doFormRequest(ctx, http.MethodPost, "/v1/prices", form)
	if err != nil {
		return nil, err
	}
	price := parsePrice(raw)
	return &price, nil
}

func productForm(input ProductInput) url.Values {
	form := url.Values{}
	if name := strings.TrimSpace(input.Name); name != "" {
		form.Set("name", name)
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		form.Set("description", desc)
	}
	if input.DefaultPriceID != "" {
		form.Set("default_price", input.DefaultPriceID)
	}
	setMetadata(form, "metadata", input.Metadata)
	return form
}

func parseProduct(raw map[string]interface{}) Product {
	product := Product{
		ID:          readString(raw, "id"),
		Name:        readString(raw, "name"),
		Description: readString(raw, "description"),
		Active:      readBool(raw, "active"),
		Metadata:    readStringMap(raw, "metadata"),
	}
	priceID, priceObj := readExpandable(raw, "default_price")
	product.DefaultPriceID = priceID
	if priceObj != nil {
		price := parsePrice(priceObj)
		product.DefaultPrice = &price
	}
	return product
}

func parsePrice(raw map[string]interface{}) Price {
	productID, _ := readExpandable(raw, "product")
	return Price{
		ID:         readString(raw, "id"),
		ProductID:  productID,
		Currency:   strings.ToUpper(readString(raw, "currency")),
		UnitAmount: readInt64(raw, "unit_amount"),
		Active:     readBool(raw, "active"),
	}
}
