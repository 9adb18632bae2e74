package game

import "math"

// Step advances the world by one tick: sessions, then the ball, then
// session/ball collisions. It must not run concurrently with itself or with
// any other World method.
func Step(w *World) {
	w.Tick++

	t := w.Tuning
	for _, id := range w.order {
		s, ok := w.Sessions[id]
		if !ok {
			continue
		}
		stepSession(s, t)
	}

	if w.Ball == nil || !t.BallEnabled() {
		return
	}
	stepBall(w.Ball, t)
	Collide(w)
	containBall(w.Ball, t)
}

func stepSession(s *Session, t Tuning) {
	s.VY += t.Gravity
	s.X += s.VX
	s.Y += s.VY

	if s.Y > t.SessionGround {
		s.Y = t.SessionGround
		s.VY = 0
	}
	if s.Y < 0 {
		s.Y = 0
		if s.VY < 0 {
			s.VY = 0
		}
	}

	if s.X < 0 {
		s.X = 0
	}
	if limit := t.maxX(); s.X > limit {
		s.X = limit
	}

	applyIntent(s, t)
}

// applyIntent derives horizontal velocity from the stored intent. Left wins
// over right. Jump is level triggered: it fires on every grounded tick while
// held.
func applyIntent(s *Session, t Tuning) {
	switch {
	case s.Intent.Left:
		s.VX = -t.Speed
	case s.Intent.Right:
		s.VX = t.Speed
	default:
		s.VX = 0
	}
	if s.Intent.Jump && s.Y >= t.SessionGround {
		s.VY = -t.JumpImpulse
	}
}

func stepBall(b *Ball, t Tuning) {
	b.VY += t.BallGravity
	b.VX *= t.BallAirResistance
	b.VY *= t.BallAirResistance
	b.X += b.VX
	b.Y += b.VY

	if b.Y+b.Radius > t.BallGround {
		b.Y = t.BallGround - b.Radius
		b.VY = -b.VY * t.BallBounceDecay
		b.VX *= t.BallGroundFric
	}
	if b.X-b.Radius < 0 {
		b.X = b.Radius
		b.VX = -b.VX * t.BallBounceDecay
	}
	if b.X+b.Radius > t.Width {
		b.X = t.Width - b.Radius
		b.VX = -b.VX * t.BallBounceDecay
	}
}

// Collide resolves every session against the ball, one at a time in join
// order. Each resolution sees the ball as left by the previous one; there is
// no simultaneous solve.
func Collide(w *World) {
	b := w.Ball
	if b == nil {
		return
	}
	t := w.Tuning
	r := t.SessionRadius()
	for _, id := range w.order {
		s, ok := w.Sessions[id]
		if !ok {
			continue
		}
		collideOne(b, s, r, t)
	}
}

func collideOne(b *Ball, s *Session, r float64, t Tuning) bool {
	dx := b.X - (s.X + r)
	dy := b.Y - (s.Y + r)
	dist := math.Hypot(dx, dy)
	reach := b.Radius + r
	if dist >= reach {
		return false
	}

	angle := math.Atan2(dy, dx)
	cos, sin := math.Cos(angle), math.Sin(angle)
	speed := math.Hypot(s.VX, s.VY)

	b.VX += (s.VX*0.5 + cos*speed) * t.BallPushForce
	b.VY += (s.VY*0.5 + sin*speed - t.BallPushDownBias) * t.BallPushForce

	overlap := reach - dist
	b.X += cos * overlap
	b.Y += sin * overlap
	return true
}

// containBall keeps a ball pushed out of a session inside the playfield.
// Velocity is left alone; the next stepBall reflects it.
func containBall(b *Ball, t Tuning) {
	if b.X < b.Radius {
		b.X = b.Radius
	}
	if b.X > t.Width-b.Radius {
		b.X = t.Width - b.Radius
	}
	if b.Y+b.Radius > t.BallGround {
		b.Y = t.BallGround - b.Radius
	}
}
