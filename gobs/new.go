// Copyright (c) 2023 BVK Chaitanya

package gobs

import (
	"fmt"
)

func NewByTypename(typename string) (any, error) {
	var v any
	switch typename {
	case "GridState":
		v = new(GridState)
	case "CycleRecord":
		v = new(CycleRecord)
	case "JobState":
		v = new(JobState)
	case "TelegramState":
		v = new(TelegramState)
	case "KeyValue":
		v = new(KeyValue)
	default:
		return nil, fmt.Errorf("unsupported type name %q", typename)
	}
	return v, nil
}
