package game

import (
	"fmt"
	"time"
)

// Snapshot is a value copy of the world at one instant. Nothing in it
// aliases live state; callers must not mutate the Sessions map after
// handing the snapshot to another goroutine.
type Snapshot struct {
	Tick     int
	Time     time.Time
	Order    []string
	Sessions map[string]SessionState
	Ball     *BallState
}

type SessionState struct {
	ID     string
	Name   string
	Color  string
	X, Y   float64
	VX, VY float64
	Chat   string
}

type BallState struct {
	X, Y, VX, VY float64
	Radius       float64
}

// AddSession creates a session for id at a random spawn point. A second call
// for the same id returns the existing session untouched and false.
func (w *World) AddSession(id, name string) (*Session, bool) {
	if s, ok := w.Sessions[id]; ok {
		return s, false
	}
	if name == "" {
		name = fmt.Sprintf("Player %d", len(w.order)+1)
	}
	s := &Session{
		ID:    id,
		Name:  name,
		Color: fmt.Sprintf("#%06x", w.rng.IntN(0x1000000)),
		X:     SpawnMinX + w.rng.Float64()*SpawnRangeX,
		Y:     w.Tuning.SessionGround,
	}
	if limit := w.Tuning.maxX(); s.X > limit {
		s.X = limit
	}
	w.Sessions[id] = s
	w.order = append(w.order, id)
	return s, true
}

// RemoveSession deletes id. It reports whether a session was removed.
func (w *World) RemoveSession(id string) (*Session, bool) {
	s, ok := w.Sessions[id]
	if !ok {
		return nil, false
	}
	delete(w.Sessions, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
	return s, true
}

// ApplyIntent stores in as the session's intent and updates its velocity
// right away, without waiting for the next tick. Unknown ids are ignored.
func (w *World) ApplyIntent(id string, in Intent) bool {
	s, ok := w.Sessions[id]
	if !ok {
		return false
	}
	s.Intent = in
	applyIntent(s, w.Tuning)
	return true
}

// Annotate attaches text to a session until now+ttl.
func (w *World) Annotate(id, text string, now time.Time, ttl time.Duration) bool {
	s, ok := w.Sessions[id]
	if !ok {
		return false
	}
	if text == "" {
		s.Annotation = nil
		return true
	}
	s.Annotation = &Annotation{Text: text, ExpiresAt: now.Add(ttl)}
	return true
}

// ExpireAnnotations clears every annotation whose expiry is not after now.
func (w *World) ExpireAnnotations(now time.Time) {
	for _, s := range w.Sessions {
		if s.Annotation != nil && !now.Before(s.Annotation.ExpiresAt) {
			s.Annotation = nil
		}
	}
}

// Snapshot copies the world. Annotations that expired by now are left out
// even if the tick pass has not cleared them yet.
func (w *World) Snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		Tick:     w.Tick,
		Time:     now,
		Order:    make([]string, 0, len(w.order)),
		Sessions: make(map[string]SessionState, len(w.Sessions)),
	}
	for _, id := range w.order {
		s, ok := w.Sessions[id]
		if !ok {
			continue
		}
		st := SessionState{
			ID:    s.ID,
			Name:  s.Name,
			Color: s.Color,
			X:     s.X,
			Y:     s.Y,
			VX:    s.VX,
			VY:    s.VY,
		}
		if a := s.Annotation; a != nil && now.Before(a.ExpiresAt) {
			st.Chat = a.Text
		}
		snap.Order = append(snap.Order, id)
		snap.Sessions[id] = st
	}
	if b := w.Ball; b != nil {
		snap.Ball = &BallState{X: b.X, Y: b.Y, VX: b.VX, VY: b.VY, Radius: b.Radius}
	}
	return snap
}
