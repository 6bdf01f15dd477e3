// Copyright (c) 2023 BVK Chaitanya

// Package job wraps a long-running activity with pause, resume and cancel
// controls. Controls are delivered to the activity through its
// context.Context cancellation cause.
package job

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
)

type State string

const (
	Paused    State = "PAUSED"
	Running   State = "RUNNING"
	Completed State = "COMPLETED"
	Canceled  State = "CANCELED"
)

const failedPrefix = "FAILED: "

func IsFailed(s State) bool {
	return strings.HasPrefix(string(s), failedPrefix)
}

// IsFinal returns true when the job can never run again.
func IsFinal(s State) bool {
	return s == Completed || s == Canceled || IsFailed(s)
}

var (
	errPause  = errors.New("job paused")
	errCancel = errors.New("job canceled")
)

type Func func(ctx context.Context) error

type Job struct {
	cancel context.CancelCauseFunc

	mu sync.Mutex
	wg sync.WaitGroup

	f Func

	err error

	status State
}

// New creates a job in the given last-known state. The job does not run
// until it is resumed.
func New(last State, f Func) *Job {
	if last == "" || last == Running {
		last = Paused
	}
	j := &Job{
		f:      f,
		status: last,
	}
	return j
}

// Run creates a job and resumes it immediately.
func Run(ctx context.Context, f Func) (*Job, error) {
	j := New(Paused, f)
	if err := j.Resume(ctx); err != nil {
		return nil, err
	}
	return j, nil
}

func (j *Job) Close() {
	j.mu.Lock()
	if j.cancel != nil {
		j.cancel(os.ErrClosed)
		j.cancel = nil
	}
	j.mu.Unlock()
	j.wg.Wait()
}

// Resume starts or restarts the job function. Jobs in a final state cannot
// be resumed.
func (j *Job) Resume(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if IsFinal(j.status) {
		return os.ErrClosed
	}
	if j.status == Running {
		return nil
	}

	jctx, jcancel := context.WithCancelCause(ctx)
	j.cancel, j.status, j.err = jcancel, Running, nil

	j.wg.Add(1)
	go j.goRun(jctx)
	return nil
}

// Pause stops a running job. Paused jobs can be resumed later.
func (j *Job) Pause() error {
	defer j.wg.Wait()

	j.mu.Lock()
	defer j.mu.Unlock()

	if IsFinal(j.status) {
		return os.ErrClosed
	}

	if j.cancel != nil {
		j.cancel(errPause)
		j.cancel = nil
	}
	j.status = Paused
	return nil
}

// Cancel stops the job permanently.
func (j *Job) Cancel() error {
	defer j.wg.Wait()

	j.mu.Lock()
	defer j.mu.Unlock()

	if IsFinal(j.status) {
		return os.ErrClosed
	}

	if j.cancel != nil {
		j.cancel(errCancel)
		j.cancel = nil
	}
	j.status = Canceled
	return nil
}

func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Err returns the error of the last job function run, if any.
func (j *Job) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

func (j *Job) goRun(ctx context.Context) {
	defer j.wg.Done()

	err := j.f(ctx)

	j.mu.Lock()
	defer j.mu.Unlock()

	j.err = err
	switch {
	case err == nil:
		j.status = Completed
	case errors.Is(err, context.Cause(ctx)):
		// Pause or Cancel already recorded the new state.
	default:
		j.status = State(fmt.Sprintf("%s%s", failedPrefix, err.Error()))
	}
}
