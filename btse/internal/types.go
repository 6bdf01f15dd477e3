// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Quote struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

type OrderbookResponse struct {
	Symbol    string  `json:"symbol"`
	BuyQuote  []Quote `json:"buyQuote"`
	SellQuote []Quote `json:"sellQuote"`
	Timestamp int64   `json:"timestamp"`
}

type CreateOrderRequest struct {
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Type      string          `json:"type"`
	Price     decimal.Decimal `json:"price"`
	Size      int64           `json:"size"`
	ClOrderID string          `json:"clOrderID"`
}

// OrderResponse is returned as an array element by the order create and
// cancel endpoints.
type OrderResponse struct {
	Status    int             `json:"status"`
	Symbol    string          `json:"symbol"`
	OrderID   string          `json:"orderID"`
	ClOrderID string          `json:"clOrderID"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Size      int64           `json:"size"`
	Message   string          `json:"message"`
	Timestamp int64           `json:"timestamp"`
}

type TradeHistory struct {
	TradeID   string          `json:"tradeId"`
	OrderID   string          `json:"orderId"`
	Symbol    string          `json:"symbol"`
	Side      string          `json:"side"`
	Price     decimal.Decimal `json:"price"`
	Size      int64           `json:"size"`
	Timestamp int64           `json:"timestamp"`
}

type WebsocketRequest struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

// WebsocketMessage is the envelope of incoming feed messages. Event is set
// on subscription acknowledgements, Topic on data updates.
type WebsocketMessage struct {
	Event string          `json:"event,omitempty"`
	Topic string          `json:"topic,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// QuoteUpdate is the payload of top-of-book topic updates.
type QuoteUpdate struct {
	Symbol    string          `json:"symbol"`
	Bid       decimal.Decimal `json:"bid"`
	Ask       decimal.Decimal `json:"ask"`
	Timestamp int64           `json:"timestamp"`
}
