package room

// viewer is one outbound connection. The room goroutine is the only
// producer; the writer goroutine is the only consumer.
type viewer struct {
	id    string
	conn  Conn
	queue chan []byte

	// Owned by the producer. lagging is set from the first drop until a
	// frame is queued without one.
	lagging bool
	dropped int
}

func newViewer(id string, conn Conn, size int) *viewer {
	if size <= 0 {
		size = 1
	}
	return &viewer{id: id, conn: conn, queue: make(chan []byte, size)}
}

// enqueue never blocks. When the queue is full the oldest frame is dropped
// to make room, and dropped reports that it happened.
func (v *viewer) enqueue(b []byte) (dropped bool) {
	for {
		select {
		case v.queue <- b:
			return dropped
		default:
		}
		select {
		case <-v.queue:
			dropped = true
		default:
		}
	}
}

// noteDrop records the outcome of one enqueue. It reports started on the
// first drop of a lagging spell and recovered, with the spell's drop count,
// when the viewer catches up.
func (v *viewer) noteDrop(dropped bool) (started, recovered bool, n int) {
	switch {
	case dropped && !v.lagging:
		v.lagging, v.dropped = true, 1
		return true, false, 1
	case dropped:
		v.dropped++
	case v.lagging:
		n = v.dropped
		v.lagging, v.dropped = false, 0
		return false, true, n
	}
	return false, false, 0
}

// run drains the queue into the connection until the queue is closed or a
// send fails. The connection is closed on the way out.
func (v *viewer) run(fail func(error)) {
	defer v.conn.Close()
	for b := range v.queue {
		if err := v.conn.Send(b); err != nil {
			fail(err)
			return
		}
	}
}

func (v *viewer) stop() {
	close(v.queue)
}
