// Copyright (c) 2025 BVK Chaitanya

// Package btse adapts the BTSE futures venue to the exchange.Gateway
// interface consumed by the grid engine.
package btse

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/visvasity/topic"

	"github.com/ysfang/gridbot/btse/internal"
	"github.com/ysfang/gridbot/exchange"
	"github.com/ysfang/gridbot/syncmap"
)

// staleQuoteLimit bounds how old a websocket quote may be before the top of
// the book is fetched over REST instead.
const staleQuoteLimit = 10 * time.Second

// Credentials holds the BTSE API key pair.
type Credentials struct {
	Key    string
	Secret string
}

func (v *Credentials) Check() error {
	if v == nil || v.Key == "" || v.Secret == "" {
		return fmt.Errorf("btse api key and secret cannot be empty: %w", os.ErrInvalid)
	}
	return nil
}

// Exchange implements exchange.Gateway for BTSE futures.
type Exchange struct {
	client *internal.Client

	quoteMap syncmap.Map[string, *exchange.Orderbook]
	topicMap syncmap.Map[string, *topic.Topic[*exchange.Orderbook]]
}

var _ exchange.Gateway = &Exchange{}

// New creates a BTSE gateway. Websocket subscriptions are added per symbol
// through Watch.
func New(creds *Credentials, opts *internal.Options) (*Exchange, error) {
	if err := creds.Check(); err != nil {
		return nil, err
	}
	e := new(Exchange)
	client, err := internal.New(creds.Key, creds.Secret, e.onQuote, opts)
	if err != nil {
		return nil, err
	}
	e.client = client
	return e, nil
}

func (e *Exchange) Close() error {
	return e.client.Close()
}

func (e *Exchange) ExchangeName() string {
	return "btse"
}

// Watch subscribes to top-of-book updates for the symbol. Watching an
// already-watched symbol is not an error.
func (e *Exchange) Watch(ctx context.Context, symbol string) error {
	if err := e.client.SubscribeQuotes(ctx, symbol); err != nil && !errors.Is(err, os.ErrExist) {
		return err
	}
	return nil
}

func (e *Exchange) getQuoteTopic(symbol string) *topic.Topic[*exchange.Orderbook] {
	tp, ok := e.topicMap.Load(symbol)
	if !ok {
		tp, _ = e.topicMap.LoadOrStore(symbol, topic.New[*exchange.Orderbook]())
	}
	return tp
}

// GetPriceUpdates returns a receiver of top-of-book updates for a watched
// symbol. The most recent quote is delivered immediately when available.
func (e *Exchange) GetPriceUpdates(symbol string) (*topic.Receiver[*exchange.Orderbook], error) {
	return topic.Subscribe(e.getQuoteTopic(symbol), 1, true)
}

func (e *Exchange) onQuote(ctx context.Context, update *internal.QuoteUpdate) {
	book := &exchange.Orderbook{
		Symbol:  update.Symbol,
		BestBid: update.Bid,
		BestAsk: update.Ask,
		Time:    exchange.RemoteTime{Time: time.UnixMilli(update.Timestamp)},
	}
	e.quoteMap.Store(update.Symbol, book)
	e.getQuoteTopic(update.Symbol).Send(book)
}

// GetOrderbook returns the latest websocket quote when it is fresh enough
// and falls back to the REST orderbook endpoint otherwise.
func (e *Exchange) GetOrderbook(ctx context.Context, symbol string) (*exchange.Orderbook, error) {
	if book, ok := e.quoteMap.Load(symbol); ok {
		if time.Since(book.Time.Time) < staleQuoteLimit {
			return book, nil
		}
	}

	resp, err := e.client.GetOrderbook(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(resp.BuyQuote) == 0 || len(resp.SellQuote) == 0 {
		return nil, nil
	}
	return &exchange.Orderbook{
		Symbol:  symbol,
		BestBid: resp.BuyQuote[0].Price,
		BestAsk: resp.SellQuote[0].Price,
		Time:    exchange.RemoteTime{Time: time.UnixMilli(resp.Timestamp)},
	}, nil
}

func (e *Exchange) SubmitOrder(ctx context.Context, clientOrderID, symbol string, side exchange.Side, price decimal.Decimal, size int64) (exchange.OrderID, error) {
	req := &internal.CreateOrderRequest{
		Symbol:    symbol,
		Side:      string(side),
		Type:      "LIMIT",
		Price:     price,
		Size:      size,
		ClOrderID: clientOrderID,
	}
	resp, err := e.client.CreateOrder(ctx, req)
	if err != nil {
		return "", err
	}
	if resp.OrderID == "" {
		return "", fmt.Errorf("order was not accepted: %s", resp.Message)
	}
	return exchange.OrderID(resp.OrderID), nil
}

func (e *Exchange) CancelOrder(ctx context.Context, symbol string, id exchange.OrderID) error {
	return e.client.CancelOrder(ctx, symbol, string(id))
}

// GetFills returns fills in the half-open window [from, to).
func (e *Exchange) GetFills(ctx context.Context, symbol string, from, to time.Time) ([]*exchange.Fill, error) {
	trades, err := e.client.GetTradeHistory(ctx, symbol, from.UnixMilli(), to.UnixMilli())
	if err != nil {
		return nil, err
	}
	return fillsInWindow(trades, from, to), nil
}

// fillsInWindow converts trades to fills, keeping only those whose
// execution time falls in the half-open window [from, to). The venue query
// is made in milliseconds and can be edge-inclusive, so the window bounds
// are re-checked locally.
func fillsInWindow(trades []*internal.TradeHistory, from, to time.Time) []*exchange.Fill {
	var fills []*exchange.Fill
	for _, trade := range trades {
		at := time.UnixMilli(trade.Timestamp)
		if at.Before(from) || !at.Before(to) {
			continue
		}
		fills = append(fills, &exchange.Fill{
			OrderID: exchange.OrderID(trade.OrderID),
			Side:    exchange.Side(trade.Side),
			Price:   trade.Price,
			Size:    trade.Size,
			Time:    exchange.RemoteTime{Time: at},
		})
	}
	return fills
}
