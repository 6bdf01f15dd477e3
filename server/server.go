// Copyright (c) 2025 BVK Chaitanya

// Package server composes the exchange gateway, the notification clients and
// the grid trading engine into a single controllable service.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"github.com/bvkgo/kv"

	"github.com/ysfang/gridbot/btse"
	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/grid"
	"github.com/ysfang/gridbot/job"
	"github.com/ysfang/gridbot/kvutil"
	"github.com/ysfang/gridbot/linenotify"
	"github.com/ysfang/gridbot/telegram"
)

// JobsKeyspace holds the saved run-state of trade jobs.
const JobsKeyspace = "/jobs/"

func jobStateKey(uid string) string {
	return path.Join(JobsKeyspace, uid)
}

type Server struct {
	closeCtx    context.Context
	closeCancel context.CancelCauseFunc

	opts Options
	db   kv.Database

	uid string

	exchange *btse.Exchange

	lineClient     *linenotify.Client
	telegramClient *telegram.Client

	grid *grid.Grid

	// savedState is the job state loaded from the db at startup. It decides
	// whether Start resumes the trade job automatically.
	savedState job.State

	mu  sync.Mutex
	job *job.Job
}

// New creates a server trading the symbol configured in the grid options.
// The trade job is not started until Start is called.
func New(ctx context.Context, db kv.Database, secrets *Secrets, gopts *grid.Options, opts *Options) (_ *Server, status error) {
	if opts == nil {
		opts = new(Options)
	}
	opts.setDefaults()
	if err := opts.Check(); err != nil {
		return nil, err
	}
	if err := secrets.Check(); err != nil {
		return nil, err
	}

	closeCtx, closeCancel := context.WithCancelCause(context.Background())
	s := &Server{
		closeCtx:    closeCtx,
		closeCancel: closeCancel,
		opts:        *opts,
		db:          db,
	}
	defer func() {
		if status != nil {
			s.Close()
		}
	}()

	ex, err := btse.New(secrets.BTSE, nil)
	if err != nil {
		return nil, fmt.Errorf("could not create btse client: %w", err)
	}
	s.exchange = ex

	if secrets.LineNotify != nil {
		c, err := linenotify.New(secrets.LineNotify)
		if err != nil {
			return nil, fmt.Errorf("could not create line notify client: %w", err)
		}
		s.lineClient = c
	}
	if secrets.Telegram != nil {
		c, err := telegram.New(ctx, db, secrets.Telegram)
		if err != nil {
			return nil, fmt.Errorf("could not create telegram client: %w", err)
		}
		s.telegramClient = c
	}

	if err := ex.Watch(ctx, gopts.Symbol); err != nil {
		return nil, fmt.Errorf("could not watch symbol %q: %w", gopts.Symbol, err)
	}

	s.uid = path.Join(ex.ExchangeName(), gopts.Symbol)
	g, err := grid.New(s.uid, ex, s, gopts)
	if err != nil {
		return nil, fmt.Errorf("could not create grid engine: %w", err)
	}
	s.grid = g

	state, err := kvutil.GetDB[gobs.JobState](ctx, db, jobStateKey(s.uid))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load job state: %w", err)
		}
		state = new(gobs.JobState)
	}
	s.savedState = job.State(state.State)
	s.job = job.New(s.savedState, func(ctx context.Context) error {
		return g.Run(ctx, db)
	})

	if err := s.registerTelegramCommands(ctx); err != nil {
		slog.WarnContext(ctx, "could not register telegram commands (ignored)", "err", err)
	}
	return s, nil
}

func (s *Server) Close() error {
	s.closeCancel(os.ErrClosed)
	if s.job != nil {
		s.job.Close()
	}
	if s.telegramClient != nil {
		s.telegramClient.Close()
	}
	if s.exchange != nil {
		s.exchange.Close()
	}
	return nil
}

func (s *Server) UID() string {
	return s.uid
}

// Start resumes the trade job unless it was paused manually or resume is
// disabled through the options.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opts.NoResume {
		slog.InfoContext(ctx, "trade job is not resumed (no-resume)", "uid", s.uid)
		return nil
	}
	if s.savedState == job.Paused {
		slog.InfoContext(ctx, "trade job stays paused from the last manual pause", "uid", s.uid)
		return nil
	}
	if job.IsFinal(s.savedState) {
		slog.InfoContext(ctx, "trade job is in a final state", "uid", s.uid, "state", s.savedState)
		return nil
	}
	if err := s.job.Resume(s.closeCtx); err != nil {
		return fmt.Errorf("could not resume trade job %q: %w", s.uid, err)
	}
	slog.InfoContext(ctx, "resumed trade job", "uid", s.uid)
	return nil
}

// Stop pauses a running trade job. The paused state is not persisted, so
// the job resumes automatically on the next startup.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.job.State() != job.Running {
		return nil
	}
	return s.job.Pause()
}

func (s *Server) saveJobState(ctx context.Context, state job.State) error {
	v := &gobs.JobState{State: string(state)}
	if err := kvutil.SetDB(ctx, s.db, jobStateKey(s.uid), v); err != nil {
		return fmt.Errorf("could not save job state: %w", err)
	}
	return nil
}

// SendMessage fans out a notification to all configured clients. Delivery
// is best-effort; per-client failures are logged and skipped.
func (s *Server) SendMessage(ctx context.Context, at time.Time, msg string) error {
	if s.lineClient != nil {
		if err := s.lineClient.SendMessage(ctx, at, msg); err != nil {
			slog.WarnContext(ctx, "could not send line notification (ignored)", "err", err)
		}
	}
	if s.telegramClient != nil {
		if err := s.telegramClient.SendMessage(ctx, at, msg); err != nil {
			slog.WarnContext(ctx, "could not send telegram notification (ignored)", "err", err)
		}
	}
	return nil
}
