// Copyright (c) 2025 BVK Chaitanya

package level

import (
	"errors"
	"os"
	"testing"
)

func TestTargetFix(t *testing.T) {
	p, err := Target(d("100"), TargetFix, d("5"), d("0.5"))
	if err != nil {
		t.Fatal(err)
	}
	if !p.Equal(d("105")) {
		t.Errorf("fix target is %s, want 105", p)
	}
}

func TestTargetRate(t *testing.T) {
	p, err := Target(d("100"), TargetRate, d("1.05"), d("0.5"))
	if err != nil {
		t.Fatal(err)
	}
	if !p.Equal(d("105")) {
		t.Errorf("rate target is %s, want 105", p)
	}

	// Rate targets are floored to the tick size.
	p, err = Target(d("2995"), TargetRate, d("1.008"), d("1"))
	if err != nil {
		t.Fatal(err)
	}
	if !p.Equal(d("3018")) {
		t.Errorf("rate target is %s, want 3018", p)
	}
}

func TestTargetFallback(t *testing.T) {
	p, err := Target(d("1000"), "bogus", d("5"), d("0.5"))
	if err == nil {
		t.Fatalf("unrecognized type must report an error")
	}
	if !errors.Is(err, os.ErrInvalid) {
		t.Errorf("error is %v, want os.ErrInvalid", err)
	}
	if !p.Equal(d("1008")) {
		t.Errorf("fallback target is %s, want 1008", p)
	}
}
