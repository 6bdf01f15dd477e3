// Copyright (c) 2025 BVK Chaitanya

package server

type Options struct {
	// NoResume when true keeps the trade job paused on startup regardless
	// of the job state saved in the database.
	NoResume bool
}

func (v *Options) setDefaults() {}

func (v *Options) Check() error {
	return nil
}
