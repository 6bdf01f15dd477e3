// Copyright (c) 2025 BVK Chaitanya

// Package internal implements the BTSE futures REST and websocket protocol.
package internal

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type QuoteHandler func(context.Context, *QuoteUpdate)

type Client struct {
	lifeCtx    context.Context
	lifeCancel context.CancelCauseFunc

	wg sync.WaitGroup

	opts Options

	client http.Client

	key, secret string

	limiter *rate.Limiter

	// quoteHandler receives top-of-book updates from the websocket feed.
	// Set before the feed goroutine is started.
	quoteHandler QuoteHandler

	subscribeMutex sync.Mutex
	subscriptions  map[string]struct{}
	subscribeCh    chan string
}

// New returns a client for the BTSE futures API. The websocket feed is
// opened lazily on the first subscription.
func New(key, secret string, handler QuoteHandler, opts *Options) (*Client, error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}

	lifeCtx, lifeCancel := context.WithCancelCause(context.Background())
	c := &Client{
		lifeCtx:    lifeCtx,
		lifeCancel: lifeCancel,
		opts:       *opts,
		key:        key,
		secret:     secret,
		client: http.Client{
			Timeout: opts.HttpClientTimeout,
		},
		limiter:       rate.NewLimiter(rate.Limit(opts.MaxRequestsPerSecond), 1),
		quoteHandler:  handler,
		subscriptions: make(map[string]struct{}),
		subscribeCh:   make(chan string, 10),
	}

	c.wg.Add(1)
	go c.goGetMessages(c.lifeCtx)
	return c, nil
}

// Close releases resources and destroys the client instance.
func (c *Client) Close() error {
	c.lifeCancel(os.ErrClosed)
	c.wg.Wait()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-time.After(d):
		return nil
	}
}

// sign returns the request signature headers for a private endpoint. BTSE
// signs the endpoint path (without the query string), the nonce and the raw
// body with HMAC-SHA384.
func (c *Client) sign(endpoint string, body []byte) http.Header {
	nonce := strconv.FormatInt(time.Now().UnixMilli(), 10)
	mac := hmac.New(sha512.New384, []byte(c.secret))
	mac.Write([]byte(endpoint + nonce))
	mac.Write(body)

	h := make(http.Header)
	h.Set("request-api", c.key)
	h.Set("request-nonce", nonce)
	h.Set("request-signature", hex.EncodeToString(mac.Sum(nil)))
	return h
}

func (c *Client) do(ctx context.Context, method, endpoint string, values url.Values, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	addrURL := &url.URL{
		Scheme:   c.opts.RestURL.Scheme,
		Host:     c.opts.RestURL.Host,
		Path:     path.Join(c.opts.RestURL.Path, endpoint),
		RawQuery: values.Encode(),
	}

	for retries := 0; ; retries++ {
		req, err := http.NewRequestWithContext(ctx, method, addrURL.String(), bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("could not create http request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, vs := range c.sign(addrURL.Path, body) {
			req.Header[k] = vs
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("could not perform http request: %w", err)
		}
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("could not read http response body: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			return data, nil
		}
		// Back off briefly on throttling or gateway hiccups.
		if retries < 3 && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusBadGateway) {
			slog.Warn("btse http request was throttled (will retry)", "endpoint", endpoint, "status", resp.StatusCode)
			if err := sleep(ctx, time.Second<<retries); err != nil {
				return nil, err
			}
			continue
		}
		return nil, fmt.Errorf("http request to %q failed with status %d: %s", endpoint, resp.StatusCode, data)
	}
}

func getJSON[RESP any](ctx context.Context, c *Client, endpoint string, values url.Values) (*RESP, error) {
	data, err := c.do(ctx, http.MethodGet, endpoint, values, nil)
	if err != nil {
		return nil, err
	}
	resp := new(RESP)
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("could not unmarshal response from %q: %w", endpoint, err)
	}
	return resp, nil
}

func postJSON[RESP, REQ any](ctx context.Context, c *Client, endpoint string, req *REQ) (*RESP, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request to %q: %w", endpoint, err)
	}
	data, err := c.do(ctx, http.MethodPost, endpoint, nil, body)
	if err != nil {
		return nil, err
	}
	resp := new(RESP)
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("could not unmarshal response from %q: %w", endpoint, err)
	}
	return resp, nil
}

func deleteJSON[RESP any](ctx context.Context, c *Client, endpoint string, values url.Values) (*RESP, error) {
	data, err := c.do(ctx, http.MethodDelete, endpoint, values, nil)
	if err != nil {
		return nil, err
	}
	resp := new(RESP)
	if err := json.Unmarshal(data, resp); err != nil {
		return nil, fmt.Errorf("could not unmarshal response from %q: %w", endpoint, err)
	}
	return resp, nil
}

// GetOrderbook fetches the top of the book over REST.
func (c *Client) GetOrderbook(ctx context.Context, symbol string) (*OrderbookResponse, error) {
	values := make(url.Values)
	values.Set("symbol", symbol)
	values.Set("depth", "1")
	return getJSON[OrderbookResponse](ctx, c, "/api/v2.1/orderbook", values)
}

// CreateOrder places a limit order.
func (c *Client) CreateOrder(ctx context.Context, req *CreateOrderRequest) (*OrderResponse, error) {
	resps, err := postJSON[[]OrderResponse](ctx, c, "/api/v2.1/order", req)
	if err != nil {
		return nil, err
	}
	if len(*resps) == 0 {
		return nil, fmt.Errorf("order create response is empty")
	}
	return &(*resps)[0], nil
}

// CancelOrder cancels an open order by its server order id.
func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) error {
	values := make(url.Values)
	values.Set("symbol", symbol)
	values.Set("orderID", orderID)
	if _, err := deleteJSON[[]OrderResponse](ctx, c, "/api/v2.1/order", values); err != nil {
		return err
	}
	return nil
}

// GetTradeHistory returns our fills for the symbol between the given
// millisecond timestamps.
func (c *Client) GetTradeHistory(ctx context.Context, symbol string, startMilli, endMilli int64) ([]*TradeHistory, error) {
	values := make(url.Values)
	values.Set("symbol", symbol)
	values.Set("startTime", strconv.FormatInt(startMilli, 10))
	values.Set("endTime", strconv.FormatInt(endMilli, 10))
	values.Set("count", "500")
	trades, err := getJSON[[]*TradeHistory](ctx, c, "/api/v2.1/user/trade_history", values)
	if err != nil {
		return nil, err
	}
	return *trades, nil
}

// SubscribeQuotes starts top-of-book updates for the symbol over the
// websocket feed. Updates are delivered to the quote handler.
func (c *Client) SubscribeQuotes(ctx context.Context, symbol string) error {
	c.subscribeMutex.Lock()
	if _, ok := c.subscriptions[symbol]; ok {
		c.subscribeMutex.Unlock()
		return os.ErrExist
	}
	c.subscriptions[symbol] = struct{}{}
	c.subscribeMutex.Unlock()

	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case c.subscribeCh <- symbol:
		return nil
	}
}
