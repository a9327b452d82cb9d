package simulation

import "github.com/alex-ilgayev/socsim/pkg/event"

// AlertFeed retains the most recent alerts, newest first.
// Not safe for concurrent use; the session guards it.
type AlertFeed struct {
	capacity int
	items    []*event.ThreatAlert
}

func NewAlertFeed(capacity int) *AlertFeed {
	if capacity < 1 {
		capacity = 1
	}
	return &AlertFeed{
		capacity: capacity,
		items:    make([]*event.ThreatAlert, 0, capacity),
	}
}

// Push inserts a at the front and drops the oldest alerts beyond capacity.
func (f *AlertFeed) Push(a *event.ThreatAlert) {
	if len(f.items) < f.capacity {
		f.items = append(f.items, nil)
	}
	copy(f.items[1:], f.items[:len(f.items)-1])
	f.items[0] = a
}

// Items returns the alerts newest first.
func (f *AlertFeed) Items() []*event.ThreatAlert {
	out := make([]*event.ThreatAlert, len(f.items))
	copy(out, f.items)
	return out
}

// Latest returns the newest alert, if any.
func (f *AlertFeed) Latest() (*event.ThreatAlert, bool) {
	if len(f.items) == 0 {
		return nil, false
	}
	return f.items[0], true
}

func (f *AlertFeed) Len() int { return len(f.items) }

func (f *AlertFeed) Cap() int { return f.capacity }

// Series is a fixed-length sliding window of telemetry points in
// chronological order. Appending to a full window evicts the oldest point.
type Series struct {
	capacity int
	points   []event.TelemetryPoint
}

func NewSeries(capacity int) *Series {
	if capacity < 1 {
		capacity = 1
	}
	return &Series{
		capacity: capacity,
		points:   make([]event.TelemetryPoint, 0, capacity),
	}
}

// Append adds p as the newest point and reports whether a point was evicted.
func (s *Series) Append(p event.TelemetryPoint) bool {
	if len(s.points) < s.capacity {
		s.points = append(s.points, p)
		return false
	}
	copy(s.points, s.points[1:])
	s.points[len(s.points)-1] = p
	return true
}

// Points returns the window oldest first.
func (s *Series) Points() []event.TelemetryPoint {
	out := make([]event.TelemetryPoint, len(s.points))
	copy(out, s.points)
	return out
}

// Last returns the newest point, if any.
func (s *Series) Last() (event.TelemetryPoint, bool) {
	if len(s.points) == 0 {
		return event.TelemetryPoint{}, false
	}
	return s.points[len(s.points)-1], true
}

func (s *Series) Len() int { return len(s.points) }

func (s *Series) Cap() int { return s.capacity }
