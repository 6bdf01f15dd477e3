// Copyright (c) 2023 BVK Chaitanya

package job

import (
	"context"
	"errors"
	"testing"
)

func TestPauseResume(t *testing.T) {
	ctx := context.Background()
	jobf := func(ctx context.Context) error {
		<-ctx.Done()
		return context.Cause(ctx)
	}
	j1, err := Run(ctx, jobf)
	if err != nil {
		t.Fatal(err)
	}
	if j1.State() != Running {
		t.Fatalf("j1 must be running, got %v", j1.State())
	}
	if err := j1.Pause(); err != nil {
		t.Fatal(err)
	}
	if j1.State() != Paused {
		t.Fatalf("j1 must be paused, got %v", j1.State())
	}
	if !errors.Is(j1.Err(), errPause) {
		t.Fatalf("want errPause, got %v", j1.Err())
	}

	if err := j1.Resume(ctx); err != nil {
		t.Fatal(err)
	}
	if j1.State() != Running {
		t.Fatalf("j1 must be running again, got %v", j1.State())
	}
	if err := j1.Cancel(); err != nil {
		t.Fatal(err)
	}
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	jobf := func(ctx context.Context) error {
		<-ctx.Done()
		return context.Cause(ctx)
	}
	j1, err := Run(ctx, jobf)
	if err != nil {
		t.Fatal(err)
	}
	if err := j1.Cancel(); err != nil {
		t.Fatal(err)
	}
	if j1.State() != Canceled {
		t.Fatalf("j1 must be canceled, got %v", j1.State())
	}
	if !errors.Is(j1.Err(), errCancel) {
		t.Fatalf("want errCancel, got %v", j1.Err())
	}
	if err := j1.Resume(ctx); err == nil {
		t.Fatalf("canceled jobs must not resume")
	}
}

func TestFailed(t *testing.T) {
	ctx := context.Background()
	errFailure := errors.New("operation failed")
	ch := make(chan error)
	jobf := func(ctx context.Context) error {
		return <-ch
	}
	j1, err := Run(ctx, jobf)
	if err != nil {
		t.Fatal(err)
	}
	ch <- errFailure
	close(ch)
	j1.Close()
	if !IsFailed(j1.State()) {
		t.Fatalf("j1 must have failed, got %v", j1.State())
	}
	if !errors.Is(j1.Err(), errFailure) {
		t.Fatalf("want errFailure, got %v", j1.Err())
	}
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	ch := make(chan struct{})
	jobf := func(ctx context.Context) error {
		<-ch
		return nil
	}
	j1, err := Run(ctx, jobf)
	if err != nil {
		t.Fatal(err)
	}
	close(ch)
	j1.Close()
	if j1.State() != Completed {
		t.Fatalf("j1 must be complete, got %v (%v)", j1.State(), j1.Err())
	}
	if err := j1.Err(); err != nil {
		t.Fatal(err)
	}
}
