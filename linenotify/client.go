// Copyright (c) 2025 BVK Chaitanya

// Package linenotify sends operator alerts through the LINE Notify service.
package linenotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type Keys struct {
	Token string
}

func (v *Keys) Check() error {
	if v == nil || v.Token == "" {
		return fmt.Errorf("line notify token cannot be empty: %w", os.ErrInvalid)
	}
	return nil
}

type Client struct {
	token      string
	httpClient *http.Client
}

func New(keys *Keys) (*Client, error) {
	if err := keys.Check(); err != nil {
		return nil, err
	}
	c := &Client{
		token:      keys.Token,
		httpClient: &http.Client{},
	}
	return c, nil
}

func (c *Client) SendMessage(ctx context.Context, at time.Time, msg string) error {
	form := make(url.Values)
	form.Set("message", msg)

	u := &url.URL{
		Scheme: "https",
		Host:   "notify-api.line.me",
		Path:   "/api/notify",
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("could not create post request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("could not perform post request: %w", err)
	}
	defer resp.Body.Close()

	type Response struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	r := new(Response)
	if err := json.NewDecoder(resp.Body).Decode(r); err != nil {
		return fmt.Errorf("could not json-decode response for http-status %d: %w", resp.StatusCode, err)
	}
	if r.Status != http.StatusOK {
		return fmt.Errorf("send failed with http-status %d and response-status %d (%s)", resp.StatusCode, r.Status, r.Message)
	}
	return nil
}
