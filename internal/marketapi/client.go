package marketapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/guttosm/b3view/internal/domain/models"
	"github.com/guttosm/b3view/internal/logger"
)

const (
	maxBodyBytes  = 32 << 20
	maxErrorBytes = 512
)

// Client talks to the market backend:
//
//	GET {baseURL}/ativos           -> {"ativos": [...]}
//	GET {baseURL}/ativos/{ticker}  -> [{"data_pregao": ..., "volume": ..., "fechamento": ...}]
//
// Responses are checked against that contract before they leave the package.
// There are no retries; the caller decides what a failure means.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a client for baseURL with the given per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP is NewClient with a caller supplied *http.Client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: hc,
		log:        logger.Component("marketapi"),
	}
}

// ListTickers returns the ticker directory. limit <= 0 lets the backend
// apply its own default.
func (c *Client) ListTickers(ctx context.Context, limit int) ([]string, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	body, err := c.get(ctx, "/ativos", q)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	tickers, err := decodeDirectory(body)
	if err != nil {
		return nil, fmt.Errorf("list tickers: %w", err)
	}
	return tickers, nil
}

// GetHistory returns every record of ticker in backend order.
func (c *Client) GetHistory(ctx context.Context, ticker string) ([]models.Record, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" {
		return nil, ErrEmptyTicker
	}
	body, err := c.get(ctx, "/ativos/"+url.PathEscape(ticker), nil)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", ticker, err)
	}
	records, err := decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", ticker, err)
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("url", u).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("market api request")

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}
