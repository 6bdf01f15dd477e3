// Copyright (c) 2025 BVK Chaitanya

package timerange

import (
	"testing"
	"time"
)

func TestInRange(t *testing.T) {
	begin := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := begin.AddDate(0, 1, 0)
	r := &Range{Begin: begin, End: end}

	if r.InRange(begin.Add(-time.Second)) {
		t.Errorf("time before begin must not be in range")
	}
	if !r.InRange(begin) {
		t.Errorf("begin must be in range")
	}
	if !r.InRange(end.Add(-time.Second)) {
		t.Errorf("time just before end must be in range")
	}
	if r.InRange(end) {
		t.Errorf("end must not be in range")
	}

	zero := &Range{}
	if !zero.InRange(begin) {
		t.Errorf("zero range must contain every time")
	}
}

func TestPeriods(t *testing.T) {
	now := time.Now()
	for _, r := range []*Range{
		Today(nil), Yesterday(nil),
		ThisWeek(nil), LastWeek(nil),
		ThisMonth(nil), LastMonth(nil),
		ThisYear(nil), LastYear(nil),
		Lifetime(nil),
	} {
		if !r.Begin.Before(r.End) {
			t.Errorf("period %v..%v: begin must be before end", r.Begin, r.End)
		}
	}
	if !Today(nil).InRange(now) {
		t.Errorf("now must be within today")
	}
	if Yesterday(nil).InRange(now) {
		t.Errorf("now must not be within yesterday")
	}
	if !Lifetime(nil).InRange(now) {
		t.Errorf("now must be within lifetime")
	}
}

func TestUnion(t *testing.T) {
	a := Yesterday(time.UTC)
	b := Today(time.UTC)
	u := Union(a, b)
	if !u.Begin.Equal(a.Begin) || !u.End.Equal(b.End) {
		t.Errorf("union of yesterday and today must span both: got %v..%v", u.Begin, u.End)
	}
}
