package client

import (
	"testing"
	"time"
)

// frameAt asks for the frame whose render time is renderMs.
func frameAt(t *testing.T, ip *Interpolator, renderMs int) Frame {
	t.Helper()
	f, ok := ip.Frame(at(renderMs).Add(ip.Delay))
	if !ok {
		t.Fatalf("no frame at render time %dms", renderMs)
	}
	return f
}

func twoSnapshots() *Buffer {
	b := NewBuffer(DefaultCapacity)
	b.Ingest(snapAt(1, 0), at(0))
	b.Ingest(snapAt(2, 100), at(100))
	return b
}

func TestInterpolatesLinearly(t *testing.T) {
	ip := NewInterpolator(twoSnapshots())
	if got := frameAt(t, ip, 25).Sessions["c1"].X; got != 25 {
		t.Fatalf("x at 25ms = %f, want 25", got)
	}
	if got := frameAt(t, ip, 50).Sessions["c1"].Y; got != 50 {
		t.Fatalf("y at 50ms = %f, want 50", got)
	}
}

func TestInterpolationBoundary(t *testing.T) {
	ip := NewInterpolator(twoSnapshots())
	if got := frameAt(t, ip, 100).Sessions["c1"].X; got != 100 {
		t.Fatalf("x at 100ms = %f, want 100", got)
	}
	if got := frameAt(t, ip, 0).Sessions["c1"].X; got != 0 {
		t.Fatalf("x at 0ms = %f, want 0", got)
	}
}

func TestBeforeEarliestShowsEarliest(t *testing.T) {
	ip := NewInterpolator(twoSnapshots())
	if got := frameAt(t, ip, -40).Sessions["c1"].X; got != 0 {
		t.Fatalf("x before earliest = %f, want 0", got)
	}
}

func TestAfterNewestFreezes(t *testing.T) {
	ip := NewInterpolator(twoSnapshots())
	if got := frameAt(t, ip, 400).Sessions["c1"].X; got != 100 {
		t.Fatalf("x after newest = %f, want 100 (no extrapolation)", got)
	}
}

func TestVelocityAndNamePassThroughFromAfter(t *testing.T) {
	b := NewBuffer(4)
	b.Ingest(Snapshot{Sessions: map[string]Entity{"c1": {X: 0, VX: 1, Name: "old", Color: "#000000"}}}, at(0))
	b.Ingest(Snapshot{Sessions: map[string]Entity{"c1": {X: 10, VX: 3, Name: "new", Color: "#ffffff"}}}, at(100))
	ip := NewInterpolator(b)

	e := frameAt(t, ip, 50).Sessions["c1"]
	if e.X != 5 || e.VX != 3 || e.Name != "new" || e.Color != "#ffffff" {
		t.Fatalf("entity = %+v", e)
	}
}

func TestJoinerPopsInAndLeaverIsOmitted(t *testing.T) {
	b := NewBuffer(4)
	b.Ingest(Snapshot{Sessions: map[string]Entity{"stay": {X: 0}, "leaver": {X: 5}}}, at(0))
	b.Ingest(Snapshot{Sessions: map[string]Entity{"stay": {X: 10}, "joiner": {X: 42, Y: 300}}}, at(100))
	ip := NewInterpolator(b)

	f := frameAt(t, ip, 50)
	j, ok := f.Sessions["joiner"]
	if !ok {
		t.Fatalf("joiner missing from frame")
	}
	if j.X != 42 || j.Y != 300 {
		t.Fatalf("joiner = %+v, want its newer position", j)
	}
	if _, ok := f.Sessions["leaver"]; ok {
		t.Fatalf("leaver should be omitted")
	}
	if got := f.Sessions["stay"].X; got != 5 {
		t.Fatalf("stay x = %f, want 5", got)
	}
}

func TestZeroDurationBracketUsesBefore(t *testing.T) {
	b := NewBuffer(4)
	b.Ingest(snapAt(1, 10), at(50))
	b.Ingest(snapAt(2, 20), at(50))
	b.Ingest(snapAt(3, 30), at(100))
	ip := NewInterpolator(b)

	f := frameAt(t, ip, 50)
	if got := f.Sessions["c1"].X; got != 10 {
		t.Fatalf("x at duplicated timestamp = %f, want 10", got)
	}
}

func TestObjectInterpolates(t *testing.T) {
	b := NewBuffer(4)
	b.Ingest(Snapshot{Sessions: map[string]Entity{}, Object: &Object{X: 100, Y: 200, Radius: 15}}, at(0))
	b.Ingest(Snapshot{Sessions: map[string]Entity{}, Object: &Object{X: 200, Y: 100, Radius: 15}}, at(100))
	ip := NewInterpolator(b)

	o := frameAt(t, ip, 50).Object
	if o == nil || o.X != 150 || o.Y != 150 || o.Radius != 15 {
		t.Fatalf("object = %+v, want (150,150)", o)
	}
}

func TestEmptyBufferKeepsLastFrame(t *testing.T) {
	b := NewBuffer(4)
	ip := NewInterpolator(b)
	if _, ok := ip.Frame(at(0)); ok {
		t.Fatalf("expected no frame before any snapshot")
	}

	b.Ingest(snapAt(1, 7), at(0))
	first := frameAt(t, ip, 10)

	b.PruneBefore(at(10_000))
	later, ok := ip.Frame(at(10_000))
	if !ok {
		t.Fatalf("expected last frame to be kept")
	}
	if later.Sessions["c1"].X != first.Sessions["c1"].X || !later.RenderTime.Equal(first.RenderTime) {
		t.Fatalf("frame changed with empty buffer: %+v vs %+v", later, first)
	}
}

func TestStalledRenderFreezesOnNewest(t *testing.T) {
	b := twoSnapshots()
	ip := NewInterpolator(b)
	if got := frameAt(t, ip, 50).Sessions["c1"].X; got != 50 {
		t.Fatalf("x at 50ms = %f, want 50", got)
	}

	// Render time is now far past the newest snapshot plus MaxAge.
	f := frameAt(t, ip, 1500)
	if got := f.Sessions["c1"].X; got != 100 {
		t.Fatalf("x after stall = %f, want newest (100)", got)
	}
	if b.Len() != 1 {
		t.Fatalf("len after stall = %d, want only the newest kept", b.Len())
	}
	if newest, _ := b.Newest(); newest.Tick != 2 {
		t.Fatalf("kept tick %d, want 2", newest.Tick)
	}
}

func TestFramePrunesOldEntries(t *testing.T) {
	b := NewBuffer(DefaultCapacity)
	for i := 0; i <= 20; i++ {
		b.Ingest(snapAt(i, float64(i)), at(i*100))
	}
	ip := NewInterpolator(b)
	frameAt(t, ip, 1900)

	oldest, _ := b.Oldest()
	if cutoff := at(1900).Add(-DefaultMaxAge); oldest.Time.Before(cutoff) {
		t.Fatalf("oldest entry %v older than cutoff %v", oldest.Time, cutoff)
	}
}

func TestRenderDelayDefault(t *testing.T) {
	if DefaultRenderDelay != 100*time.Millisecond {
		t.Fatalf("render delay = %v, want 100ms", DefaultRenderDelay)
	}
}
