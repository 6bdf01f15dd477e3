// Copyright (c) 2025 BVK Chaitanya

package internal

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

type Options struct {
	// RestURL is the base address of the futures REST API.
	RestURL *url.URL

	// WebsocketURL is the address of the futures websocket feed.
	WebsocketURL *url.URL

	HttpClientTimeout time.Duration

	// MaxRequestsPerSecond caps the private REST call rate.
	MaxRequestsPerSecond float64

	// MaxFetchTimeLatency pads fill-history queries so that venue-side
	// clock skew cannot hide fills at window edges.
	MaxFetchTimeLatency time.Duration

	WebsocketPingInterval time.Duration
}

func (v *Options) setDefaults() {
	if v.RestURL == nil {
		v.RestURL = &url.URL{Scheme: "https", Host: "api.btse.com", Path: "/futures"}
	}
	if v.WebsocketURL == nil {
		v.WebsocketURL = &url.URL{Scheme: "wss", Host: "ws.btse.com", Path: "/ws/futures"}
	}
	if v.HttpClientTimeout == 0 {
		v.HttpClientTimeout = 10 * time.Second
	}
	if v.MaxRequestsPerSecond == 0 {
		v.MaxRequestsPerSecond = 10
	}
	if v.MaxFetchTimeLatency == 0 {
		v.MaxFetchTimeLatency = time.Second
	}
	if v.WebsocketPingInterval == 0 {
		v.WebsocketPingInterval = 30 * time.Second
	}
}

func (v *Options) Check() error {
	if v.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("max requests per second must be positive: %w", os.ErrInvalid)
	}
	return nil
}
