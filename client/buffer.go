package client

import "time"

const (
	DefaultCapacity = 60
	DefaultMaxAge   = time.Second
)

// Entity is one session as a viewer sees it.
type Entity struct {
	X, Y   float64
	VX, VY float64
	Color  string
	Name   string
	Chat   string
}

// Object is the shared ball as a viewer sees it.
type Object struct {
	X, Y, VX, VY float64
	Radius       float64
}

// Snapshot is one received state, stamped with the local receive time.
type Snapshot struct {
	Time     time.Time
	Tick     int
	Sessions map[string]Entity
	Object   *Object
}

// Buffer is a fixed-capacity ring of snapshots in arrival order. Timestamps
// never decrease: an arrival stamped earlier than the newest entry is
// stamped with the newest entry's time instead. Buffer is not safe for
// concurrent use.
type Buffer struct {
	entries []Snapshot
	start   int
	n       int
}

func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{entries: make([]Snapshot, capacity)}
}

func (b *Buffer) Len() int { return b.n }
func (b *Buffer) Cap() int { return len(b.entries) }

// At returns the i-th oldest snapshot.
func (b *Buffer) At(i int) Snapshot {
	return b.entries[(b.start+i)%len(b.entries)]
}

func (b *Buffer) Oldest() (Snapshot, bool) {
	if b.n == 0 {
		return Snapshot{}, false
	}
	return b.At(0), true
}

func (b *Buffer) Newest() (Snapshot, bool) {
	if b.n == 0 {
		return Snapshot{}, false
	}
	return b.At(b.n - 1), true
}

// Ingest appends s stamped with receivedAt, evicting the oldest entry when
// full.
func (b *Buffer) Ingest(s Snapshot, receivedAt time.Time) {
	if last, ok := b.Newest(); ok && receivedAt.Before(last.Time) {
		receivedAt = last.Time
	}
	s.Time = receivedAt

	if b.n == len(b.entries) {
		b.entries[b.start] = Snapshot{}
		b.start = (b.start + 1) % len(b.entries)
		b.n--
	}
	b.entries[(b.start+b.n)%len(b.entries)] = s
	b.n++
}

// PruneBefore evicts every snapshot stamped before cutoff and returns how
// many were removed.
func (b *Buffer) PruneBefore(cutoff time.Time) int {
	removed := 0
	for b.n > 0 && b.At(0).Time.Before(cutoff) {
		b.entries[b.start] = Snapshot{}
		b.start = (b.start + 1) % len(b.entries)
		b.n--
		removed++
	}
	return removed
}
