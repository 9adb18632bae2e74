package room

import "testing"

func TestViewerDropsOldestWhenFull(t *testing.T) {
	v := newViewer("c1", newFakeConn(1), 2)

	if v.enqueue([]byte("1")) || v.enqueue([]byte("2")) {
		t.Fatalf("no frame should drop while queue has room")
	}
	if !v.enqueue([]byte("3")) {
		t.Fatalf("expected a drop once the queue is full")
	}

	got := []string{string(<-v.queue), string(<-v.queue)}
	if got[0] != "2" || got[1] != "3" {
		t.Fatalf("queue = %v, want [2 3]", got)
	}
}

func TestViewerRunClosesConnWhenStopped(t *testing.T) {
	fc := newFakeConn(4)
	v := newViewer("c1", fc, 4)
	done := make(chan struct{})
	go func() {
		v.run(func(error) {})
		close(done)
	}()

	v.enqueue([]byte("frame"))
	if got := string(<-fc.sendCh); got != "frame" {
		t.Fatalf("sent %q, want frame", got)
	}
	v.stop()
	<-done
	if !fc.closed.Load() {
		t.Fatalf("connection not closed after stop")
	}
}

func TestViewerNoteDropReportsSpellOnce(t *testing.T) {
	v := newViewer("c1", newFakeConn(1), 1)

	if started, _, _ := v.noteDrop(true); !started {
		t.Fatalf("first drop should start a lagging spell")
	}
	for i := 0; i < 5; i++ {
		if started, recovered, _ := v.noteDrop(true); started || recovered {
			t.Fatalf("drop %d reported again", i)
		}
	}
	started, recovered, n := v.noteDrop(false)
	if started || !recovered || n != 6 {
		t.Fatalf("catch up = %v/%v/%d, want recovered after 6 drops", started, recovered, n)
	}
	if started, recovered, _ := v.noteDrop(false); started || recovered {
		t.Fatalf("steady viewer should report nothing")
	}
}
