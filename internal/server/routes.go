package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/balalek/Masters-Thesis-sub000/internal"
	"github.com/balalek/Masters-Thesis-sub000/internal/game"
	"github.com/balalek/Masters-Thesis-sub000/internal/ws"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	r.HandleFunc("/quizzes", s.ListQuizzesHandler).Methods(http.MethodGet)
	r.HandleFunc("/quizzes", s.CreateQuizHandler).Methods(http.MethodPost)
	r.HandleFunc("/quiz/activate", s.ActivateQuizHandler).Methods(http.MethodPost)

	r.HandleFunc("/game/start", s.StartGameHandler).Methods(http.MethodPost)
	r.HandleFunc("/game/reset", s.ResetGameHandler).Methods(http.MethodPost)

	r.HandleFunc("/ws", s.WebSocketHandler)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type")
		w.Header().Set("Access-Control-Allow-Credentials", "false")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) ListQuizzesHandler(w http.ResponseWriter, r *http.Request) {
	quizzes, err := s.store.ListQuizzes(r.Context())
	if err != nil {
		log.Printf("[ListQuizzesHandler] %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quizzes": quizzes})
}

func (s *Server) CreateQuizHandler(w http.ResponseWriter, r *http.Request) {
	var quiz internal.Quiz
	if err := json.NewDecoder(r.Body).Decode(&quiz); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed quiz"})
		return
	}
	if quiz.Name == "" || len(quiz.Questions) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "quiz needs a name and questions"})
		return
	}

	id, err := s.store.SaveQuiz(r.Context(), &quiz)
	if err != nil {
		log.Printf("[CreateQuizHandler] %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// ActivateQuizHandler loads the quiz and opens the lobby for joins.
func (s *Server) ActivateQuizHandler(w http.ResponseWriter, r *http.Request) {
	quizID, err := strconv.ParseInt(r.URL.Query().Get("quizId"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "quizId is required"})
		return
	}

	quiz, err := s.store.GetQuiz(r.Context(), quizID)
	if err != nil {
		log.Printf("[ActivateQuizHandler] quiz=%d: %v", quizID, err)
		writeError(w, err)
		return
	}
	if err := s.game.ActivateQuiz(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	s.setActiveQuiz(quiz)
	log.Printf("[ActivateQuizHandler] quiz=%d %q activated", quiz.ID, quiz.Name)
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        quiz.ID,
		"name":      quiz.Name,
		"questions": len(quiz.Questions),
	})
}

// StartGameHandler fetches the random words the quiz needs, bumps usage
// counters, and hands the question list to the dispatcher.
func (s *Server) StartGameHandler(w http.ResponseWriter, r *http.Request) {
	quiz := s.getActiveQuiz()
	if quiz == nil {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "no active quiz"})
		return
	}
	teamMode := r.URL.Query().Get("team_mode") == "true"

	// budget for a full lobby; the roster can still grow until the game starts
	var fetched []string
	if budget := game.WordBudget(quiz.Questions, internal.MaxPlayers, teamMode); budget > 0 {
		words, err := s.words.Fetch(r.Context(), budget)
		if err != nil {
			log.Printf("[StartGameHandler] word fetch failed: %v", err)
			writeError(w, internal.ErrUpstreamUnavailable)
			return
		}
		fetched = words
	}

	if err := s.game.StartGame(r.Context(), quiz.Questions, fetched, teamMode); err != nil {
		log.Printf("[StartGameHandler] %v", err)
		writeError(w, err)
		return
	}

	ids := make([]int64, 0, len(quiz.Questions))
	for i := range quiz.Questions {
		if quiz.Questions[i].ID != 0 {
			ids = append(ids, quiz.Questions[i].ID)
		}
	}
	if err := s.store.BumpUsage(r.Context(), ids); err != nil {
		log.Printf("[StartGameHandler] usage counters: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]any{"started": true, "team_mode": teamMode})
}

func (s *Server) ResetGameHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.game.ResetGame(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.setActiveQuiz(nil)
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

// WebSocketHandler upgrades a phone (?player=NAME) or a display
// (?display=main|remote). Phones get a private room named after them; a
// dying phone connection reports the player as leaving.
func (s *Server) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	display := r.URL.Query().Get("display")

	var rooms []string
	switch {
	case player != "":
		rooms = []string{player}
	case display == internal.RoomMain || display == internal.RoomRemote:
		rooms = []string{display}
	default:
		http.Error(w, "player or display query parameter required", http.StatusBadRequest)
		return
	}

	onMessage := func(c *ws.Client, raw []byte) {
		var envelope internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &envelope); err != nil {
			log.Printf("[WebSocketHandler] client=%s malformed frame: %v", c.ID, err)
			return
		}
		s.game.Enqueue(envelope.Type, envelope.Data)
	}
	onClose := func(c *ws.Client) {
		if player != "" {
			leaving, _ := json.Marshal(map[string]string{"player_name": player})
			s.game.Enqueue("player_leaving", leaving)
		}
	}

	if _, err := ws.Serve(s.hub, w, r, rooms, onMessage, onClose); err != nil {
		return
	}

	if display == internal.RoomRemote {
		s.game.Enqueue("remote_display_connected", nil)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError maps domain sentinels onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, internal.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, internal.ErrGameInProgress),
		errors.Is(err, internal.ErrLobbyClosed),
		errors.Is(err, internal.ErrNotEnoughPlayers):
		status = http.StatusConflict
	case errors.Is(err, internal.ErrInvalidArgs),
		errors.Is(err, internal.ErrInvalidLength):
		status = http.StatusBadRequest
	case errors.Is(err, internal.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
