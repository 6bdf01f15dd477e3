// Copyright (c) 2023 BVK Chaitanya

package exchange

import "time"

// RemoteTime holds a timestamp assigned by the exchange. It exists to keep
// venue clocks distinguishable from local clocks in the engine state.
type RemoteTime struct {
	time.Time
}

func (v RemoteTime) MarshalBinary() ([]byte, error) {
	s := v.Time.Format(time.RFC3339Nano)
	return []byte(s), nil
}

func (v *RemoteTime) UnmarshalBinary(bs []byte) error {
	t, err := time.Parse(time.RFC3339Nano, string(bs))
	if err != nil {
		return err
	}
	v.Time = t
	return nil
}
