package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"garden/config"
	"garden/network"
	"garden/protocol"
	"garden/room"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	codec, err := protocol.CodecFor(cfg.Codec)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	r := room.New(room.Options{
		Tuning:        cfg.Tuning(),
		TickHz:        cfg.TickHz,
		BroadcastHz:   cfg.BroadcastHz,
		Codec:         codec,
		QueueSize:     cfg.ViewerQueue,
		AnnotationTTL: cfg.AnnotationTTL,
		Seed:          cfg.Seed,
		Logger:        logger,
		Hooks: room.Hooks{
			OnJoin:  func(s room.SessionInfo) { logger.Printf("welcome %s (%s)", s.Name, s.ID) },
			OnLeave: func(s room.SessionInfo) { logger.Printf("goodbye %s (%s)", s.Name, s.ID) },
		},
	})

	h := network.NewHandler(r, network.HandlerConfig{Logger: logger, Binary: codec.Binary()})
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           network.NewMux(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Run(ctx)
	})
	g.Go(func() error {
		logger.Printf("listening on %s (ws endpoint: /ws, ruleset %s, %d Hz, codec %s)",
			cfg.Addr, r.Ruleset(), r.TickHz(), codec.Name())
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	logger.Println("server stopped")
}
