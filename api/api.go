// Copyright (c) 2025 BVK Chaitanya

// Package api defines the http endpoints of the gridbot daemon and their
// request/response types.
package api

import (
	"github.com/ysfang/gridbot/gobs"
)

const (
	JobPausePath  = "/grid/job/pause"
	JobResumePath = "/grid/job/resume"
	StatusPath    = "/grid/status"
)

type JobPauseRequest struct {
}

type JobPauseResponse struct {
	FinalState string
}

type JobResumeRequest struct {
}

type JobResumeResponse struct {
	FinalState string
}

type StatusRequest struct {
}

type StatusResponse struct {
	UID string

	JobState string

	// Grid holds the last engine checkpoint. It is nil when the engine has
	// not saved any state yet.
	Grid *gobs.GridState
}
