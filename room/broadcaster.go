package room

import (
	"fmt"
	"log"

	"garden/game"
	"garden/protocol"
)

// Broadcaster fans encoded frames out to every registered viewer through
// their own queues. It is owned by the room goroutine.
type Broadcaster struct {
	codec     protocol.Codec
	queueSize int
	logger    *log.Logger
	viewers   map[string]*viewer

	// onFail is handed to each viewer's writer.
	onFail func(connID string, err error)
}

func NewBroadcaster(codec protocol.Codec, queueSize int, logger *log.Logger, onFail func(string, error)) *Broadcaster {
	if codec == nil {
		codec = protocol.JSONCodec{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Broadcaster{
		codec:     codec,
		queueSize: queueSize,
		logger:    logger,
		viewers:   make(map[string]*viewer),
		onFail:    onFail,
	}
}

// Add starts a writer for conn. Adding an id twice keeps the first viewer.
func (b *Broadcaster) Add(id string, conn Conn) bool {
	if _, ok := b.viewers[id]; ok {
		return false
	}
	v := newViewer(id, conn, b.queueSize)
	b.viewers[id] = v
	go v.run(func(err error) {
		if b.onFail != nil {
			b.onFail(id, err)
		}
	})
	return true
}

func (b *Broadcaster) Remove(id string) bool {
	v, ok := b.viewers[id]
	if !ok {
		return false
	}
	delete(b.viewers, id)
	v.stop()
	return true
}

func (b *Broadcaster) Has(id string) bool {
	_, ok := b.viewers[id]
	return ok
}

// Len is the number of registered viewers.
func (b *Broadcaster) Len() int {
	return len(b.viewers)
}

// Publish sends snap to every viewer. A full queue drops its oldest frame,
// logged once per lagging spell. Nothing a viewer does can fail the call;
// only an encoding error is returned.
func (b *Broadcaster) Publish(snap game.Snapshot) error {
	if len(b.viewers) == 0 {
		return nil
	}
	data, err := b.codec.Encode(protocol.MsgState, buildState(snap))
	if err != nil {
		return fmt.Errorf("encode state tick %d: %w", snap.Tick, err)
	}
	for id, v := range b.viewers {
		started, recovered, n := v.noteDrop(v.enqueue(data))
		switch {
		case started:
			b.logger.Printf("viewer %s lagging, dropping oldest frames", id)
		case recovered:
			b.logger.Printf("viewer %s caught up after %d dropped frames", id, n)
		}
	}
	return nil
}

// SendTo queues a single message for one viewer.
func (b *Broadcaster) SendTo(id, t string, payload any) error {
	v, ok := b.viewers[id]
	if !ok {
		return fmt.Errorf("no viewer %q", id)
	}
	data, err := b.codec.Encode(t, payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", t, err)
	}
	v.enqueue(data)
	return nil
}

// Close stops every writer.
func (b *Broadcaster) Close() {
	for id := range b.viewers {
		b.Remove(id)
	}
}

func buildState(snap game.Snapshot) protocol.State {
	state := protocol.State{
		Tick:       snap.Tick,
		ServerTime: snap.Time.UnixMilli(),
		Sessions:   make(map[string]protocol.SessionSnapshot, len(snap.Sessions)),
	}
	for id, s := range snap.Sessions {
		state.Sessions[id] = protocol.SessionSnapshot{
			X:     s.X,
			Y:     s.Y,
			VX:    s.VX,
			VY:    s.VY,
			Color: s.Color,
			Name:  s.Name,
			Chat:  s.Chat,
		}
	}
	if o := snap.Ball; o != nil {
		state.Object = &protocol.ObjectSnapshot{X: o.X, Y: o.Y, VX: o.VX, VY: o.VY, Radius: o.Radius}
	}
	return state
}
