package room

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"garden/game"
	"garden/protocol"
)

// SessionInfo identifies a session to hook observers.
type SessionInfo struct {
	ID   string
	Name string
}

// Hooks run on the room goroutine and must not block.
type Hooks struct {
	OnJoin  func(SessionInfo)
	OnLeave func(SessionInfo)
}

type Options struct {
	Tuning        game.Tuning
	TickHz        int
	BroadcastHz   int // 0 or equal to TickHz broadcasts after every tick
	Codec         protocol.Codec
	QueueSize     int
	AnnotationTTL time.Duration
	Seed          uint64
	Logger        *log.Logger
	Hooks         Hooks
	Clock         func() time.Time
}

// Room owns the world. Every mutation, from commands or from the tick,
// happens on the goroutine running Run.
type Room struct {
	Inbox chan any

	tickHz      int
	broadcastHz int
	ttl         time.Duration
	world       *game.World
	out         *Broadcaster
	hooks       Hooks
	logger      *log.Logger
	clock       func() time.Time
	nextID      int
	sessions    atomic.Int64
	viewers     atomic.Int64
	done        chan struct{}
}

func New(opts Options) *Room {
	if opts.Tuning.Width == 0 {
		opts.Tuning = game.DefaultTuning()
	}
	if opts.TickHz <= 0 {
		opts.TickHz = protocol.SimTickHz
		if !opts.Tuning.BallEnabled() {
			opts.TickHz = protocol.SimpleTickHz
		}
	}
	if opts.BroadcastHz <= 0 {
		opts.BroadcastHz = opts.TickHz
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 8
	}
	if opts.AnnotationTTL <= 0 {
		opts.AnnotationTTL = 5 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	r := &Room{
		Inbox:       make(chan any, 256),
		tickHz:      opts.TickHz,
		broadcastHz: opts.BroadcastHz,
		ttl:         opts.AnnotationTTL,
		world:       game.NewWorld(opts.Tuning, opts.Seed),
		hooks:       opts.Hooks,
		logger:      opts.Logger,
		clock:       opts.Clock,
		nextID:      1,
		done:        make(chan struct{}),
	}
	r.out = NewBroadcaster(opts.Codec, opts.QueueSize, opts.Logger, func(id string, err error) {
		select {
		case r.Inbox <- sendFailed{ConnID: id, Err: err}:
		case <-r.done:
		}
	})
	return r
}

// Submit hands cmd to the room. It returns false once the room has stopped.
func (r *Room) Submit(cmd any) bool {
	select {
	case <-r.done:
		return false
	default:
	}
	select {
	case r.Inbox <- cmd:
		return true
	case <-r.done:
		return false
	}
}

// Done is closed when Run returns.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// NumSessions returns the current number of joined sessions. Safe from any
// goroutine.
func (r *Room) NumSessions() int {
	return int(r.sessions.Load())
}

// NumViewers returns the number of connections receiving state. Safe from
// any goroutine.
func (r *Room) NumViewers() int {
	return int(r.viewers.Load())
}

func (r *Room) TickHz() int      { return r.tickHz }
func (r *Room) BroadcastHz() int { return r.broadcastHz }
func (r *Room) Ruleset() game.Ruleset {
	return r.world.Tuning.Ruleset
}

// Run ticks the world at a fixed rate until ctx is done. Late wake-ups are
// not caught up; the ticker simply fires again on its next period.
func (r *Room) Run(ctx context.Context) error {
	defer close(r.done)
	defer r.out.Close()

	ticker := time.NewTicker(time.Second / time.Duration(r.tickHz))
	defer ticker.Stop()

	var broadcast <-chan time.Time
	if r.broadcastHz != r.tickHz {
		bt := time.NewTicker(time.Second / time.Duration(r.broadcastHz))
		defer bt.Stop()
		broadcast = bt.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-ticker.C:
			r.tick()
			if broadcast == nil {
				r.broadcastState()
			}
		case <-broadcast:
			r.broadcastState()
		}
	}
}

func (r *Room) tick() {
	game.Step(r.world)
	r.world.ExpireAnnotations(r.clock())
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Connect:
		r.connect(c.ConnID, c.Conn)
	case Join:
		r.handleJoin(c)
	case Input:
		r.world.ApplyIntent(c.SessionID, c.Input)
	case Chat:
		r.world.Annotate(c.SessionID, c.Text, r.clock(), r.ttl)
	case Leave:
		r.handleLeave(c.SessionID)
	case sendFailed:
		if r.out.Has(c.ConnID) {
			r.logger.Printf("dropping viewer %s: %v", c.ConnID, c.Err)
			r.handleLeave(c.ConnID)
		}
	}
}

func (r *Room) connect(id string, conn Conn) {
	if conn == nil || !r.out.Add(id, conn) {
		return
	}
	r.viewers.Store(int64(r.out.Len()))
	_ = r.out.SendTo(id, protocol.MsgState, buildState(r.world.Snapshot(r.clock())))
}

func (r *Room) handleJoin(c Join) {
	id := c.ConnID
	if id == "" {
		id = fmt.Sprintf("p%d", r.nextID)
		r.nextID++
	}
	r.connect(id, c.Conn)

	s, created := r.world.AddSession(id, c.Name)
	if created {
		r.sessions.Store(int64(r.world.NumSessions()))
		r.logger.Printf("session %s joined as %q", id, s.Name)
		if r.hooks.OnJoin != nil {
			r.hooks.OnJoin(SessionInfo{ID: id, Name: s.Name})
		}
		_ = r.out.SendTo(id, protocol.MsgWelcome, protocol.Welcome{
			SessionID:   id,
			TickHz:      r.tickHz,
			BroadcastHz: r.broadcastHz,
			Ruleset:     string(r.world.Tuning.Ruleset),
		})
	}
	if c.Reply != nil {
		select {
		case c.Reply <- JoinResult{SessionID: id, Created: created}:
		default:
		}
	}
}

func (r *Room) handleLeave(id string) {
	if r.out.Remove(id) {
		r.viewers.Store(int64(r.out.Len()))
	}
	s, ok := r.world.RemoveSession(id)
	if !ok {
		return
	}
	r.sessions.Store(int64(r.world.NumSessions()))
	r.logger.Printf("session %s (%q) left", id, s.Name)
	if r.hooks.OnLeave != nil {
		r.hooks.OnLeave(SessionInfo{ID: id, Name: s.Name})
	}
}

func (r *Room) broadcastState() {
	if err := r.out.Publish(r.world.Snapshot(r.clock())); err != nil {
		r.logger.Printf("broadcast: %v", err)
	}
}
