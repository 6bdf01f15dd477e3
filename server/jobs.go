// Copyright (c) 2025 BVK Chaitanya

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/ysfang/gridbot/api"
	"github.com/ysfang/gridbot/gobs"
	"github.com/ysfang/gridbot/grid"
	"github.com/ysfang/gridbot/kvutil"
)

// HandlerMap returns the daemon's http endpoints.
func (s *Server) HandlerMap() map[string]http.Handler {
	return map[string]http.Handler{
		api.JobPausePath:  postJSONHandler(s.doPause),
		api.JobResumePath: postJSONHandler(s.doResume),
		api.StatusPath:    postJSONHandler(s.doStatus),
	}
}

func postJSONHandler[REQ, RESP any](fn func(context.Context, *REQ) (*RESP, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := new(REQ)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		resp, err := fn(r.Context(), req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("content-type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("could not encode http response (ignored)", "err", err)
		}
	})
}

// doPause pauses the trade job and saves the paused state, so that the job
// stays paused across restarts.
func (s *Server) doPause(ctx context.Context, req *api.JobPauseRequest) (*api.JobPauseResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.job.Pause(); err != nil {
		return nil, fmt.Errorf("could not pause trade job %q: %w", s.uid, err)
	}
	state := s.job.State()
	if err := s.saveJobState(ctx, state); err != nil {
		slog.ErrorContext(ctx, "job is paused, but state could not be saved (ignored)", "uid", s.uid, "err", err)
	}
	return &api.JobPauseResponse{FinalState: string(state)}, nil
}

// doResume resumes a paused trade job. The job runs on the server's life
// context, not the http request context.
func (s *Server) doResume(ctx context.Context, req *api.JobResumeRequest) (*api.JobResumeResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.job.Resume(s.closeCtx); err != nil {
		return nil, fmt.Errorf("could not resume trade job %q: %w", s.uid, err)
	}
	state := s.job.State()
	if err := s.saveJobState(ctx, state); err != nil {
		slog.ErrorContext(ctx, "job is resumed, but state could not be saved (ignored)", "uid", s.uid, "err", err)
	}
	return &api.JobResumeResponse{FinalState: string(state)}, nil
}

func (s *Server) doStatus(ctx context.Context, req *api.StatusRequest) (*api.StatusResponse, error) {
	resp := &api.StatusResponse{
		UID:      s.uid,
		JobState: string(s.job.State()),
	}
	state, err := kvutil.GetDB[gobs.GridState](ctx, s.db, grid.CheckpointKey(s.uid))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not load engine checkpoint: %w", err)
		}
		return resp, nil
	}
	resp.Grid = state
	return resp, nil
}
