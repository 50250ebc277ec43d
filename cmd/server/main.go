package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/balalek/Masters-Thesis-sub000/internal/dictionary"
	"github.com/balalek/Masters-Thesis-sub000/internal/game"
	"github.com/balalek/Masters-Thesis-sub000/internal/server"
	"github.com/balalek/Masters-Thesis-sub000/internal/store"
	"github.com/balalek/Masters-Thesis-sub000/internal/words"
	"github.com/balalek/Masters-Thesis-sub000/internal/ws"
)

func main() {
	cfg := server.LoadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dict, err := dictionary.Load(cfg.DictionaryPath)
	if err != nil {
		// a missing dictionary degrades word validation, it does not stop the game
		log.Printf("[main] dictionary unavailable, accepting all words: %v", err)
		dict = nil
	} else {
		log.Printf("[main] dictionary loaded, %d words", dict.Len())
	}

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[main] store: %v", err)
	}
	defer st.Close()

	hub := ws.NewHub()
	dispatcher := game.NewDispatcher(hub, dict)
	go dispatcher.Run(ctx)

	srv := server.New(cfg, hub, st, words.NewProvider(cfg.WordServiceURL), dispatcher)
	httpServer := srv.HTTPServer()

	go func() {
		log.Printf("[main] listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
