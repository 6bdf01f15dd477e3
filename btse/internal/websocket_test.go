// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"context"
	"encoding/json"
	"testing"
)

func TestHandleQuoteUpdate(t *testing.T) {
	var got *QuoteUpdate
	c := &Client{
		quoteHandler: func(ctx context.Context, u *QuoteUpdate) {
			got = u
		},
	}

	msg := json.RawMessage(`{"topic":"orderBookL1Api:ETHPFC","data":{"bid":"2999.5","ask":"3000","timestamp":1700000000000}}`)
	if err := c.handleMessage(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("quote handler was not invoked")
	}
	if got.Symbol != "ETHPFC" {
		t.Errorf("symbol = %q, want ETHPFC from the topic suffix", got.Symbol)
	}
	if got.Bid.String() != "2999.5" || got.Ask.String() != "3000" {
		t.Errorf("quote = %s/%s, want 2999.5/3000", got.Bid, got.Ask)
	}
}

func TestHandleSubscriptionAck(t *testing.T) {
	c := &Client{
		quoteHandler: func(ctx context.Context, u *QuoteUpdate) {
			t.Error("quote handler must not run for event messages")
		},
	}
	msg := json.RawMessage(`{"event":"subscribe","channel":["orderBookL1Api:ETHPFC"]}`)
	if err := c.handleMessage(context.Background(), msg); err != nil {
		t.Fatal(err)
	}
}

func TestSignHeaders(t *testing.T) {
	c := &Client{key: "test-key", secret: "test-secret"}
	h := c.sign("/api/v2.1/order", []byte(`{"symbol":"ETHPFC"}`))

	if h.Get("request-api") != "test-key" {
		t.Errorf("request-api = %q, want test-key", h.Get("request-api"))
	}
	if h.Get("request-nonce") == "" {
		t.Error("request-nonce is empty")
	}
	// HMAC-SHA384 hex digests are 96 characters.
	if sig := h.Get("request-signature"); len(sig) != 96 {
		t.Errorf("signature length = %d, want 96", len(sig))
	}
}
