package game

import (
	"math"
	"math/rand/v2"
	"testing"
)

func newTestWorld(t *testing.T, tuning Tuning) *World {
	t.Helper()
	return NewWorld(tuning, 1)
}

func addAt(t *testing.T, w *World, id string, x, y float64) *Session {
	t.Helper()
	s, created := w.AddSession(id, id)
	if !created {
		t.Fatalf("session %q already existed", id)
	}
	s.X, s.Y = x, y
	return s
}

func TestStepAdvancesTick(t *testing.T) {
	w := newTestWorld(t, DefaultTuning())
	for i := 0; i < 5; i++ {
		Step(w)
	}
	if w.Tick != 5 {
		t.Fatalf("tick after 5 steps = %d, want 5", w.Tick)
	}
}

func TestGravityAccumulatesWhileAirborne(t *testing.T) {
	w := newTestWorld(t, SimpleTuning())
	s := addAt(t, w, "p1", 200, 50)

	const n = 10
	for i := 0; i < n; i++ {
		Step(w)
	}
	want := n * w.Tuning.Gravity
	if s.VY != want {
		t.Fatalf("vy after %d airborne ticks = %f, want %f", n, s.VY, want)
	}
	if s.Y >= w.Tuning.SessionGround {
		t.Fatalf("session landed unexpectedly at y=%f", s.Y)
	}
}

func TestHoldingLeftMovesThreePerTick(t *testing.T) {
	w := newTestWorld(t, SimpleTuning())
	s := addAt(t, w, "p1", 100, SessionGround)
	w.ApplyIntent("p1", Intent{Left: true})

	for i := 0; i < 10; i++ {
		Step(w)
	}
	if s.X != 70 {
		t.Fatalf("x after 10 ticks left = %f, want 70", s.X)
	}
}

func TestHoldingLeftStopsAtWall(t *testing.T) {
	w := newTestWorld(t, SimpleTuning())
	s := addAt(t, w, "p1", 10, SessionGround)
	w.ApplyIntent("p1", Intent{Left: true})

	for i := 0; i < 10; i++ {
		Step(w)
	}
	if s.X != 0 {
		t.Fatalf("x = %f, want 0", s.X)
	}
}

func TestHoldingRightStopsAtWall(t *testing.T) {
	w := newTestWorld(t, SimpleTuning())
	s := addAt(t, w, "p1", 760, SessionGround)
	w.ApplyIntent("p1", Intent{Right: true})

	for i := 0; i < 10; i++ {
		Step(w)
	}
	if want := PlayfieldWidth - EntityWidth; s.X != want {
		t.Fatalf("x = %f, want %f", s.X, want)
	}
}

func TestLeftWinsOverRight(t *testing.T) {
	w := newTestWorld(t, SimpleTuning())
	s := addAt(t, w, "p1", 400, SessionGround)
	w.ApplyIntent("p1", Intent{Left: true, Right: true})
	if s.VX != -SessionSpeed {
		t.Fatalf("vx = %f, want %f", s.VX, -SessionSpeed)
	}
	Step(w)
	if s.X != 400-SessionSpeed {
		t.Fatalf("x = %f, want %f", s.X, 400-SessionSpeed)
	}
}

func TestReleasingIntentStopsHorizontalMotion(t *testing.T) {
	w := newTestWorld(t, SimpleTuning())
	s := addAt(t, w, "p1", 400, SessionGround)
	w.ApplyIntent("p1", Intent{Right: true})
	Step(w)
	w.ApplyIntent("p1", Intent{})
	x := s.X
	Step(w)
	if s.X != x {
		t.Fatalf("x moved after release: before=%f after=%f", x, s.X)
	}
}

func TestHeldJumpRetriggersOnLanding(t *testing.T) {
	w := newTestWorld(t, DefaultTuning())
	s := addAt(t, w, "p1", 100, SessionGround)
	w.ApplyIntent("p1", Intent{Jump: true})
	if s.VY != -JumpImpulse {
		t.Fatalf("vy after jump intent = %f, want %f", s.VY, -JumpImpulse)
	}

	launches := 0
	for i := 0; i < 200; i++ {
		Step(w)
		if s.VY == -JumpImpulse {
			launches++
		}
	}
	if launches < 2 {
		t.Fatalf("expected held jump to bounce repeatedly, got %d launches", launches)
	}
}

func TestJumpIgnoredWhileAirborne(t *testing.T) {
	w := newTestWorld(t, SimpleTuning())
	s := addAt(t, w, "p1", 100, 200)
	w.ApplyIntent("p1", Intent{Jump: true})
	if s.VY != 0 {
		t.Fatalf("airborne jump changed vy to %f", s.VY)
	}
}

func TestSessionsStayInBounds(t *testing.T) {
	w := newTestWorld(t, DefaultTuning())
	rng := rand.New(rand.NewPCG(7, 7))
	ids := []string{"a", "b", "c", "d"}
	for _, id := range ids {
		w.AddSession(id, id)
	}

	maxX := w.Tuning.Width - w.Tuning.EntityWidth
	for tick := 0; tick < 3000; tick++ {
		if tick%15 == 0 {
			for _, id := range ids {
				w.ApplyIntent(id, Intent{
					Left:  rng.IntN(2) == 0,
					Right: rng.IntN(2) == 0,
					Jump:  rng.IntN(3) == 0,
				})
			}
		}
		Step(w)
		for _, id := range ids {
			s := w.Sessions[id]
			if s.X < 0 || s.X > maxX {
				t.Fatalf("tick %d: session %s x=%f out of [0,%f]", tick, id, s.X, maxX)
			}
			if s.Y < 0 || s.Y > w.Tuning.SessionGround {
				t.Fatalf("tick %d: session %s y=%f out of [0,%f]", tick, id, s.Y, w.Tuning.SessionGround)
			}
		}
		b := w.Ball
		if b.X < b.Radius-1e-9 || b.X > w.Tuning.Width-b.Radius+1e-9 {
			t.Fatalf("tick %d: ball x=%f out of bounds", tick, b.X)
		}
		if b.Y+b.Radius > w.Tuning.BallGround+1e-9 {
			t.Fatalf("tick %d: ball below ground y=%f", tick, b.Y)
		}
	}
}

func TestSimpleRulesetHasNoBall(t *testing.T) {
	w := newTestWorld(t, SimpleTuning())
	if w.Ball != nil {
		t.Fatalf("simple ruleset should not create a ball")
	}
	addAt(t, w, "p1", 100, SessionGround)

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Step panicked without ball: %v", r)
		}
	}()
	Step(w)
}

func TestStepSkipsRemovedSession(t *testing.T) {
	w := newTestWorld(t, DefaultTuning())
	addAt(t, w, "p1", 100, SessionGround)
	addAt(t, w, "p2", 200, SessionGround)
	w.RemoveSession("p1")
	Step(w)
	if _, ok := w.Sessions["p1"]; ok {
		t.Fatalf("removed session came back")
	}
	if got := w.Order(); len(got) != 1 || got[0] != "p2" {
		t.Fatalf("order = %v, want [p2]", got)
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
