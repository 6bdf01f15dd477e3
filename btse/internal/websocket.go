// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

func (c *Client) goGetMessages(ctx context.Context) {
	defer c.wg.Done()

	for i := 0; ctx.Err() == nil; i = min(i+1, 5) {
		if err := c.getMessages(ctx); err != nil {
			slog.Warn("could not get messages over websocket (may retry)", "err", err)
			if err := sleep(ctx, time.Second<<i); err != nil {
				return
			}
		}
	}
}

func (c *Client) getMessages(ctx context.Context) (status error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer func() {
		if status != nil {
			cancel(status)
		} else {
			cancel(os.ErrClosed)
		}
	}()

	dialer := websocket.Dialer{
		EnableCompression: true,
	}
	conn, _, err := dialer.DialContext(ctx, c.opts.WebsocketURL.String(), nil)
	if err != nil {
		slog.Error("could not dial to websocket feed", "err", err)
		return err
	}
	defer conn.Close()

	var wg sync.WaitGroup
	defer wg.Wait()

	// Resubscribe to all symbols on every new connection.
	if err := c.resubscribe(conn); err != nil {
		return err
	}

	// Forward new subscriptions and keep the socket alive with pings.
	wg.Add(1)
	go func() {
		defer wg.Done()

		for ctx.Err() == nil {
			select {
			case <-ctx.Done():
				return

			case symbol := <-c.subscribeCh:
				req := &WebsocketRequest{Op: "subscribe", Args: []string{quoteTopic(symbol)}}
				if err := conn.WriteJSON(req); err != nil {
					slog.Error("could not send websocket subscribe request", "symbol", symbol, "err", err)
					cancel(err)
					return
				}

			case <-time.After(c.opts.WebsocketPingInterval):
				req := &WebsocketRequest{Op: "ping"}
				if err := conn.WriteJSON(req); err != nil {
					slog.Error("could not send websocket ping", "err", err)
					cancel(err)
					return
				}
			}
		}
	}()

	for ctx.Err() == nil {
		msg, err := c.readMessage(ctx, conn)
		if err != nil {
			return err
		}
		if err := c.handleMessage(ctx, msg); err != nil {
			slog.Warn("could not handle websocket message (ignored)", "err", err)
		}
	}
	return context.Cause(ctx)
}

func (c *Client) resubscribe(conn *websocket.Conn) error {
	c.subscribeMutex.Lock()
	symbols := make([]string, 0, len(c.subscriptions))
	for symbol := range c.subscriptions {
		symbols = append(symbols, symbol)
	}
	c.subscribeMutex.Unlock()

	if len(symbols) == 0 {
		return nil
	}
	args := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		args = append(args, quoteTopic(symbol))
	}
	return conn.WriteJSON(&WebsocketRequest{Op: "subscribe", Args: args})
}

func quoteTopic(symbol string) string {
	return "orderBookL1Api:" + symbol
}

func (c *Client) readMessage(ctx context.Context, conn *websocket.Conn) (json.RawMessage, error) {
	stopc := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
		close(stopc)
	})

	_, msg, err := conn.ReadMessage()
	if !stop() {
		// The AfterFunc was started. Wait for it to complete, and reset the
		// Conn's deadline.
		<-stopc
		conn.SetReadDeadline(time.Time{})
		return nil, context.Cause(ctx)
	}
	if err != nil {
		slog.Error("could not read websocket message", "err", err)
		return nil, err
	}
	return json.RawMessage(msg), nil
}

func (c *Client) handleMessage(ctx context.Context, msg json.RawMessage) error {
	var m WebsocketMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return fmt.Errorf("could not unmarshal websocket message: %w", err)
	}

	switch {
	case m.Event != "":
		// Subscription acks and pongs need no handling.
		return nil

	case strings.HasPrefix(m.Topic, "orderBookL1Api:"):
		update := new(QuoteUpdate)
		if err := json.Unmarshal(m.Data, update); err != nil {
			return fmt.Errorf("could not unmarshal quote update: %w", err)
		}
		if update.Symbol == "" {
			update.Symbol = strings.TrimPrefix(m.Topic, "orderBookL1Api:")
		}
		if c.quoteHandler != nil {
			c.quoteHandler(ctx, update)
		}
		return nil

	default:
		slog.Debug("ignoring websocket message with unknown topic", "topic", m.Topic)
		return nil
	}
}
