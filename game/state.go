package game

import (
	"math/rand/v2"
	"time"
)

// Internal truth authoritative game state. A World has exactly one writer;
// the room goroutine owns it and every method here assumes that.

type World struct {
	Tick     int
	Tuning   Tuning
	Sessions map[string]*Session
	Ball     *Ball // nil when the ruleset has no ball

	// order is join order. Step and Collide walk sessions in this order, so
	// when several sessions touch the ball in one tick the earliest joiner is
	// resolved first and later ones see the already-pushed ball.
	order []string
	rng   *rand.Rand
}

type Session struct {
	ID           string
	Name         string
	Color        string
	X, Y, VX, VY float64
	Intent       Intent
	Annotation   *Annotation
}

// Intent is the latest movement request of a session. Missing fields are
// false.
type Intent struct {
	Left  bool
	Right bool
	Jump  bool
}

// Annotation is transient text shown next to a session until ExpiresAt.
type Annotation struct {
	Text      string
	ExpiresAt time.Time
}

type Ball struct {
	X, Y, VX, VY float64
	Radius       float64
}

// NewWorld builds an empty world. seed drives spawn placement and colors.
func NewWorld(t Tuning, seed uint64) *World {
	w := &World{
		Tuning:   t,
		Sessions: make(map[string]*Session),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	if t.BallEnabled() {
		w.Ball = &Ball{X: BallStartX, Y: BallStartY, Radius: t.BallRadius}
	}
	return w
}

// Order returns the session ids in iteration order.
func (w *World) Order() []string {
	return append([]string(nil), w.order...)
}

func (w *World) NumSessions() int {
	return len(w.Sessions)
}
