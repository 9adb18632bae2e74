// Command viewer is a headless garden client. It joins, walks a fixed
// pattern, and logs its own interpolated position once a second.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"garden/client"
	"garden/protocol"
)

// step is one leg of the scripted walk.
type step struct {
	input protocol.Input
	hold  time.Duration
}

var pattern = []step{
	{protocol.Input{Right: true}, 1500 * time.Millisecond},
	{protocol.Input{Right: true, Jump: true}, 300 * time.Millisecond},
	{protocol.Input{}, 500 * time.Millisecond},
	{protocol.Input{Left: true}, 1500 * time.Millisecond},
	{protocol.Input{Jump: true}, 200 * time.Millisecond},
	{protocol.Input{}, 500 * time.Millisecond},
}

func main() {
	url := flag.String("url", "ws://localhost:3000/ws", "garden server websocket url")
	name := flag.String("name", "", "display name, empty for a server default")
	say := flag.String("say", "hello", "chat line sent after joining, empty to stay quiet")
	duration := flag.Duration("duration", 10*time.Second, "how long to stay connected, 0 for until interrupted")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	if err := run(ctx, *url, *name, *say); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, url, name, say string) error {
	logger := log.New(os.Stderr, "viewer ", log.LstdFlags)

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	v, err := client.Dial(dialCtx, url, client.ViewerOptions{Logger: logger})
	cancel()
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.Join(name); err != nil {
		return fmt.Errorf("join: %w", err)
	}
	w, err := v.WaitWelcome(ctx)
	if err != nil {
		return err
	}
	logger.Printf("joined as %s (ruleset %s, tick %d Hz, broadcast %d Hz)", w.SessionID, w.Ruleset, w.TickHz, w.BroadcastHz)
	if say != "" {
		if err := v.Chat(say); err != nil {
			return fmt.Errorf("chat: %w", err)
		}
	}

	render := time.NewTicker(time.Second / 60)
	defer render.Stop()
	report := time.NewTicker(time.Second)
	defer report.Stop()

	leg := 0
	next := time.Now()
	var frame client.Frame
	for {
		select {
		case <-ctx.Done():
			logger.Printf("done after %d states", v.Received())
			return nil
		case <-v.Done():
			if err := v.Err(); err != nil {
				return fmt.Errorf("connection lost: %w", err)
			}
			return nil
		case now := <-render.C:
			if !now.Before(next) {
				s := pattern[leg%len(pattern)]
				if err := v.SendInput(s.input); err != nil {
					return fmt.Errorf("input: %w", err)
				}
				next = now.Add(s.hold)
				leg++
			}
			if f, ok := v.Frame(now); ok {
				frame = f
			}
		case <-report.C:
			me, ok := frame.Sessions[w.SessionID]
			if !ok {
				logger.Printf("no frame yet")
				continue
			}
			line := fmt.Sprintf("%s at (%.1f, %.1f) with %d others", me.Name, me.X, me.Y, len(frame.Sessions)-1)
			if o := frame.Object; o != nil {
				line += fmt.Sprintf(", ball at (%.1f, %.1f)", o.X, o.Y)
			}
			logger.Print(line)
		}
	}
}
