package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"garden/protocol"
)

type ViewerOptions struct {
	Logger      *log.Logger
	Capacity    int
	RenderDelay time.Duration
	Clock       func() time.Time
}

// Viewer is a network client that buffers every state it receives and
// renders interpolated frames on demand.
type Viewer struct {
	conn   *websocket.Conn
	logger *log.Logger
	clock  func() time.Time

	writeMu sync.Mutex

	mu        sync.Mutex
	buf       *Buffer
	interp    *Interpolator
	sessionID string
	received  int

	welcome chan protocol.Welcome
	done    chan struct{}
	err     error
}

func Dial(ctx context.Context, url string, opts ViewerOptions) (*Viewer, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return newViewer(conn, opts), nil
}

func newViewer(conn *websocket.Conn, opts ViewerOptions) *Viewer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	buf := NewBuffer(opts.Capacity)
	interp := NewInterpolator(buf)
	if opts.RenderDelay > 0 {
		interp.Delay = opts.RenderDelay
	}
	v := &Viewer{
		conn:    conn,
		logger:  opts.Logger,
		clock:   opts.Clock,
		buf:     buf,
		interp:  interp,
		welcome: make(chan protocol.Welcome, 1),
		done:    make(chan struct{}),
	}
	go v.readLoop()
	return v
}

func (v *Viewer) send(kind string, payload any) error {
	b, err := protocol.Encode(kind, payload)
	if err != nil {
		return err
	}
	v.writeMu.Lock()
	defer v.writeMu.Unlock()
	_ = v.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return v.conn.WriteMessage(websocket.TextMessage, b)
}

func (v *Viewer) Join(name string) error {
	return v.send(protocol.MsgJoin, protocol.Join{Name: name})
}

func (v *Viewer) SendInput(in protocol.Input) error {
	return v.send(protocol.MsgInput, in)
}

func (v *Viewer) Chat(text string) error {
	return v.send(protocol.MsgChat, protocol.Chat{Text: text})
}

// WaitWelcome blocks until the server confirms the join.
func (v *Viewer) WaitWelcome(ctx context.Context) (protocol.Welcome, error) {
	select {
	case w := <-v.welcome:
		return w, nil
	case <-v.done:
		return protocol.Welcome{}, fmt.Errorf("connection closed before welcome: %w", v.Err())
	case <-ctx.Done():
		return protocol.Welcome{}, ctx.Err()
	}
}

func (v *Viewer) SessionID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sessionID
}

// Received returns how many states have been buffered so far.
func (v *Viewer) Received() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.received
}

// Frame renders the world as of now minus the render delay.
func (v *Viewer) Frame(now time.Time) (Frame, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.interp.Frame(now)
}

func (v *Viewer) Done() <-chan struct{} { return v.done }

// Err is the error that ended the read loop, nil for a clean close.
func (v *Viewer) Err() error {
	select {
	case <-v.done:
		return v.err
	default:
		return nil
	}
}

func (v *Viewer) Close() error {
	v.writeMu.Lock()
	_ = v.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	v.writeMu.Unlock()
	return v.conn.Close()
}

func (v *Viewer) readLoop() {
	defer close(v.done)
	for {
		mt, b, err := v.conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if !errors.As(err, &ce) || ce.Code != websocket.CloseNormalClosure {
				v.err = err
			}
			return
		}
		var codec protocol.Codec = protocol.JSONCodec{}
		if mt == websocket.BinaryMessage {
			codec = protocol.MsgpackCodec{}
		}
		env, err := codec.DecodeEnvelope(b)
		if err != nil {
			v.logger.Printf("viewer: bad frame: %v", err)
			continue
		}
		v.handle(codec, env)
	}
}

func (v *Viewer) handle(codec protocol.Codec, env protocol.Envelope) {
	switch env.T {
	case protocol.MsgState:
		st, err := protocol.DecodePayloadWith[protocol.State](codec, env)
		if err != nil {
			v.logger.Printf("viewer: bad state: %v", err)
			return
		}
		v.mu.Lock()
		v.buf.Ingest(FromState(st), v.clock())
		v.received++
		v.mu.Unlock()
	case protocol.MsgWelcome:
		w, err := protocol.DecodePayloadWith[protocol.Welcome](codec, env)
		if err != nil {
			v.logger.Printf("viewer: bad welcome: %v", err)
			return
		}
		v.mu.Lock()
		v.sessionID = w.SessionID
		v.mu.Unlock()
		select {
		case v.welcome <- w:
		default:
		}
	}
}

// FromState copies a wire state into a buffer snapshot. Time is left for
// Ingest to stamp.
func FromState(st protocol.State) Snapshot {
	s := Snapshot{Tick: st.Tick, Sessions: make(map[string]Entity, len(st.Sessions))}
	for id, e := range st.Sessions {
		s.Sessions[id] = Entity{
			X: e.X, Y: e.Y, VX: e.VX, VY: e.VY,
			Color: e.Color, Name: e.Name, Chat: e.Chat,
		}
	}
	if o := st.Object; o != nil {
		s.Object = &Object{X: o.X, Y: o.Y, VX: o.VX, VY: o.VY, Radius: o.Radius}
	}
	return s
}
