// Package exchange wraps the exchange's conversion REST API. Every operation
// issues exactly one HTTP call and propagates failures to the caller; there
// are no retries and no backoff.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNoQuote is returned when the exchange answers a quote request without a
// quote id.
var ErrNoQuote = errors.New("exchange returned no quote id")

// APIError carries the upstream error payload of a non-2xx response.
type APIError struct {
	StatusCode int
	Code       int    `json:"code"`
	Message    string `json:"msg"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("exchange error %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("exchange returned HTTP %d", e.StatusCode)
}

// Quote is a time-bounded price offer. It is consumed immediately by
// AcceptQuote and never persisted.
type Quote struct {
	QuoteID    string  `json:"quoteId"`
	Price      float64 `json:"price,string"`
	ToAmount   float64 `json:"toAmount,string"`
	ValidUntil int64   `json:"validTimestamp"`
}

// OrderResult is the exchange's acknowledgement of a placed or settled order.
type OrderResult struct {
	OrderID string `json:"orderId"`
	Status  string `json:"orderStatus"`
}

type SymbolInfo struct {
	Symbol     string `json:"symbol"`
	BaseAsset  string `json:"baseAsset"`
	QuoteAsset string `json:"quoteAsset"`
	Status     string `json:"status"`
}

type Info struct {
	Symbols []SymbolInfo `json:"symbols"`
}

type AssetDetail struct {
	Asset     string `json:"asset"`
	Precision int    `json:"precision"`
	Enabled   bool   `json:"enabled"`
}

type OpenOrder struct {
	OrderID   string  `json:"orderId"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price,string"`
	Amount    float64 `json:"origQty,string"`
	CreatedAt int64   `json:"time"`
}

// Client is a stateless wrapper over the exchange REST endpoints.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		c.SetHeader("X-API-Key", apiKey)
	}
	return &Client{http: c}
}

// GetQuote requests a conversion quote. Fails fast with ErrNoQuote when the
// response carries no quote id.
func (c *Client) GetQuote(ctx context.Context, fromAsset, toAsset string, amount float64) (*Quote, error) {
	var quote Quote
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"fromAsset":  fromAsset,
			"toAsset":    toAsset,
			"fromAmount": amount,
		}).
		SetResult(&quote).
		SetError(&APIError{}).
		Post("/v1/convert/quote")
	if err := c.responseError(resp, err); err != nil {
		return nil, fmt.Errorf("get quote: %w", err)
	}
	if quote.QuoteID == "" {
		return nil, ErrNoQuote
	}
	return &quote, nil
}

// AcceptQuote converts at the quoted terms and returns the resulting order.
func (c *Client) AcceptQuote(ctx context.Context, quoteID string) (*OrderResult, error) {
	var result OrderResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"quoteId": quoteID}).
		SetResult(&result).
		SetError(&APIError{}).
		Post("/v1/convert/accept")
	if err := c.responseError(resp, err); err != nil {
		return nil, fmt.Errorf("accept quote: %w", err)
	}
	return &result, nil
}

// PlaceLimitOrder submits a conversion that executes only at the given price
// or better.
func (c *Client) PlaceLimitOrder(ctx context.Context, fromAsset, toAsset string, amount, price float64) (*OrderResult, error) {
	var result OrderResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"fromAsset": fromAsset,
			"toAsset":   toAsset,
			"amount":    amount,
			"price":     price,
			"type":      "LIMIT",
		}).
		SetResult(&result).
		SetError(&APIError{}).
		Post("/v1/orders")
	if err := c.responseError(resp, err); err != nil {
		return nil, fmt.Errorf("place limit order: %w", err)
	}
	return &result, nil
}

// CancelLimitOrder cancels an open limit order by exchange order id.
func (c *Client) CancelLimitOrder(ctx context.Context, orderID string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&APIError{}).
		Delete("/v1/orders/" + orderID)
	if err := c.responseError(resp, err); err != nil {
		return fmt.Errorf("cancel order: %w", err)
	}
	return nil
}

// ListOpenOrders returns the orders currently open on the exchange.
func (c *Client) ListOpenOrders(ctx context.Context) ([]OpenOrder, error) {
	var orders []OpenOrder
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&orders).
		SetError(&APIError{}).
		Get("/v1/orders/open")
	if err := c.responseError(resp, err); err != nil {
		return nil, fmt.Errorf("list open orders: %w", err)
	}
	return orders, nil
}

// ExchangeInfo returns the exchange's symbol metadata.
func (c *Client) ExchangeInfo(ctx context.Context) (*Info, error) {
	var info Info
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&info).
		SetError(&APIError{}).
		Get("/v1/exchangeInfo")
	if err := c.responseError(resp, err); err != nil {
		return nil, fmt.Errorf("exchange info: %w", err)
	}
	return &info, nil
}

// AssetInfo looks up one asset's precision metadata. One call per asset.
func (c *Client) AssetInfo(ctx context.Context, asset string) (*AssetDetail, error) {
	var detail AssetDetail
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&detail).
		SetError(&APIError{}).
		Get("/v1/assets/" + asset)
	if err := c.responseError(resp, err); err != nil {
		return nil, fmt.Errorf("asset info %s: %w", asset, err)
	}
	return &detail, nil
}

func (c *Client) responseError(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	if apiErr, ok := resp.Error().(*APIError); ok && (apiErr.Code != 0 || apiErr.Message != "") {
		apiErr.StatusCode = resp.StatusCode()
		return apiErr
	}
	return &APIError{StatusCode: resp.StatusCode()}
}
