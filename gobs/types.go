// Copyright (c) 2025 BVK Chaitanya

// Package gobs holds the gob-encoded types persisted in the database. Only
// these types cross the storage boundary, so the rest of the program can
// evolve without breaking old databases.
package gobs

import (
	"time"

	"github.com/shopspring/decimal"
)

// GridState is the engine checkpoint saved after every tick that changed
// state. It exists for status reporting; the engine never reads it back.
type GridState struct {
	UID      string
	Exchange string
	Symbol   string

	Position     int64
	AveragePrice decimal.Decimal
	TargetPrice  decimal.Decimal

	FirstOrderID      string
	StopProfitOrderID string
	GridOrderIDs      []string

	RealizedProfit decimal.Decimal
	NumCycles      int64

	UpdatedAt time.Time
}

// CycleRecord is appended to the profit journal for every exit-order fill.
type CycleRecord struct {
	UID    string
	Symbol string

	FilledAt  time.Time
	FillPrice decimal.Decimal
	Size      int64

	Profit decimal.Decimal
	Fee    decimal.Decimal

	// Partial is true when the exit order filled only in part and the
	// cycle continued.
	Partial bool
}

// JobState records the last requested run-state of the trade job.
type JobState struct {
	State string
}

// TelegramState remembers the chat ids of authorized telegram users so
// that notifications survive restarts.
type TelegramState struct {
	UserChatIDMap map[string]int64
}

// KeyValue is the unit of database export/import backups.
type KeyValue struct {
	Key   string
	Value []byte
}
