// Package server is the HTTP and websocket edge: the host controls the game
// through a handful of REST endpoints while phones and displays talk over
// /ws. All game semantics live behind the dispatcher.
package server

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/balalek/Masters-Thesis-sub000/internal"
	"github.com/balalek/Masters-Thesis-sub000/internal/game"
	"github.com/balalek/Masters-Thesis-sub000/internal/store"
	"github.com/balalek/Masters-Thesis-sub000/internal/words"
	"github.com/balalek/Masters-Thesis-sub000/internal/ws"
)

type Server struct {
	cfg   Config
	hub   *ws.Hub
	store *store.Store
	words *words.Provider
	game  *game.Dispatcher

	mu         sync.Mutex
	activeQuiz *internal.Quiz
}

func New(cfg Config, hub *ws.Hub, st *store.Store, wp *words.Provider, d *game.Dispatcher) *Server {
	return &Server{
		cfg:   cfg,
		hub:   hub,
		store: st,
		words: wp,
		game:  d,
	}
}

// HTTPServer builds the configured http.Server with sane timeouts. Read
// timeouts would kill long-lived websockets, so only the idle timeout is
// set; handler deadlines come from request contexts.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:        fmt.Sprintf(":%s", s.cfg.Port),
		Handler:     s.RegisterRoutes(),
		IdleTimeout: time.Minute,
	}
}

func (s *Server) setActiveQuiz(quiz *internal.Quiz) {
	s.mu.Lock()
	s.activeQuiz = quiz
	s.mu.Unlock()
}

func (s *Server) getActiveQuiz() *internal.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeQuiz
}
