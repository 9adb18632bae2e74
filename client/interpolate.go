package client

import "time"

// DefaultRenderDelay trades latency for smoothness: frames are drawn this
// far in the past so there is usually a snapshot on each side.
const DefaultRenderDelay = 100 * time.Millisecond

// Frame is what the renderer draws for one display refresh.
type Frame struct {
	RenderTime time.Time
	Sessions   map[string]Entity
	Object     *Object
}

// Interpolator turns buffered snapshots into per-frame positions. It does
// no I/O and its cost is linear in the buffer length.
type Interpolator struct {
	Delay  time.Duration
	MaxAge time.Duration

	buf  *Buffer
	last Frame
	have bool
}

func NewInterpolator(buf *Buffer) *Interpolator {
	return &Interpolator{Delay: DefaultRenderDelay, MaxAge: DefaultMaxAge, buf: buf}
}

// Frame computes the frame for now. Entries older than MaxAge before the
// render time are pruned, except the newest. With an empty buffer it returns
// the previous frame unchanged; ok is false only if there has never been one.
func (ip *Interpolator) Frame(now time.Time) (f Frame, ok bool) {
	renderTime := now.Add(-ip.Delay)
	cutoff := renderTime.Add(-ip.MaxAge)
	// The newest snapshot is never pruned, so a stalled render loop still
	// freezes on it.
	if newest, ok := ip.buf.Newest(); ok && cutoff.After(newest.Time) {
		cutoff = newest.Time
	}
	ip.buf.PruneBefore(cutoff)

	n := ip.buf.Len()
	if n == 0 {
		return ip.last, ip.have
	}

	oldest := ip.buf.At(0)
	newest := ip.buf.At(n - 1)
	switch {
	case renderTime.Before(oldest.Time):
		f = verbatim(oldest, renderTime)
	case !renderTime.Before(newest.Time):
		f = verbatim(newest, renderTime)
	default:
		f = verbatim(newest, renderTime)
		for i := 0; i+1 < n; i++ {
			before, after := ip.buf.At(i), ip.buf.At(i+1)
			if !before.Time.After(renderTime) && !after.Time.Before(renderTime) {
				f = blend(before, after, renderTime)
				break
			}
		}
	}

	ip.last, ip.have = f, true
	return f, true
}

// verbatim shows s exactly, with no extrapolation.
func verbatim(s Snapshot, renderTime time.Time) Frame {
	f := Frame{RenderTime: renderTime, Sessions: make(map[string]Entity, len(s.Sessions))}
	for id, e := range s.Sessions {
		f.Sessions[id] = e
	}
	if s.Object != nil {
		o := *s.Object
		f.Object = &o
	}
	return f
}

// blend interpolates positions between before and after. Everything except
// position comes from after. Sessions only in after pop in at their after
// position; sessions only in before are dropped.
func blend(before, after Snapshot, renderTime time.Time) Frame {
	frac := 0.0
	if span := after.Time.Sub(before.Time); span > 0 {
		frac = float64(renderTime.Sub(before.Time)) / float64(span)
	}

	f := Frame{RenderTime: renderTime, Sessions: make(map[string]Entity, len(after.Sessions))}
	for id, a := range after.Sessions {
		if b, ok := before.Sessions[id]; ok {
			a.X = lerp(b.X, a.X, frac)
			a.Y = lerp(b.Y, a.Y, frac)
		}
		f.Sessions[id] = a
	}
	if after.Object != nil {
		o := *after.Object
		if before.Object != nil {
			o.X = lerp(before.Object.X, o.X, frac)
			o.Y = lerp(before.Object.Y, o.Y, frac)
		}
		f.Object = &o
	}
	return f
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
