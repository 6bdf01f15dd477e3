// Copyright (c) 2025 BVK Chaitanya

package level

import (
	"errors"
	"os"
	"testing"
)

func TestStartLevel(t *testing.T) {
	tests := []struct {
		remaining, firstSize int64
		want                 int
	}{
		{10, 10, 1},
		{30, 10, 2},
		{40, 10, 3},
		{60, 10, 3},
		{70, 10, 4},
	}
	for _, tc := range tests {
		level, err := StartLevel(tc.remaining, tc.firstSize)
		if err != nil {
			t.Fatalf("StartLevel(%d, %d): %v", tc.remaining, tc.firstSize, err)
		}
		if level != tc.want {
			t.Errorf("StartLevel(%d, %d) = %d, want %d", tc.remaining, tc.firstSize, level, tc.want)
		}
	}
}

func TestStartLevelTooSmall(t *testing.T) {
	if _, err := StartLevel(5, 10); !errors.Is(err, os.ErrInvalid) {
		t.Errorf("remainder below first contract size must fail, got %v", err)
	}
	if _, err := StartLevel(10, 0); !errors.Is(err, os.ErrInvalid) {
		t.Errorf("zero first contract size must fail, got %v", err)
	}
}

func TestRebuildAverage(t *testing.T) {
	// Entry 10@3000 plus level one 10@2990 and level two 20@2970.
	avg := RebuildAverage(d("3000"), d("10"), 10, 40)
	want := d("3000").Mul(d("10")).Add(d("2990").Mul(d("10"))).Add(d("2970").Mul(d("20"))).Div(d("40"))
	if !avg.Equal(want) {
		t.Errorf("rebuilt average is %s, want %s", avg, want)
	}
	if !avg.Equal(d("2982.5")) {
		t.Errorf("rebuilt average is %s, want 2982.5", avg)
	}
}

func TestRebuildAverageEntryOnly(t *testing.T) {
	if avg := RebuildAverage(d("3000"), d("10"), 10, 10); !avg.Equal(d("3000")) {
		t.Errorf("entry-only position must keep the entry price, got %s", avg)
	}
}
