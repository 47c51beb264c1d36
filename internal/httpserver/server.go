// internal/httpserver/server.go
//
// HTTP server wiring for the Hangman backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health".
//   - Game endpoints: users, games, guesses, scores, rankings, history.
//   - Task endpoints that queue background jobs.
//
// Handlers only decode input and render output; every rule lives in the
// service package.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/robalobadob/hangman/internal/jobs"
	"github.com/robalobadob/hangman/internal/scoring"
	"github.com/robalobadob/hangman/internal/service"
)

// Server bundles the router and the game service.
type Server struct {
	r   *chi.Mux
	svc *service.Service
}

// New constructs a Server, installs middleware, and registers routes.
func New(svc *service.Service) *Server {
	s := &Server{r: chi.NewRouter(), svc: svc}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFromEnv)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"hangman-go","endpoints":["/health","POST /user","POST /game","PUT /game/{key}","/scores","/user_rankings"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/user", s.handleCreateUser)

	s.r.Post("/game", s.handleNewGame)
	s.r.Get("/game/{key}", s.handleGetGame)
	s.r.Put("/game/{key}", s.handleMakeMove)
	s.r.Delete("/cancel/game/{key}", s.handleCancelGame)
	s.r.Get("/games/user/{user_name}", s.handleUserGames)
	s.r.Get("/games/average_attempts", s.handleAverageAttempts)
	s.r.Get("/history/{key}", s.handleHistory)

	s.r.Get("/scores", s.handleScores)
	s.r.Get("/scores/user/{user_name}", s.handleUserScores)
	s.r.Get("/high_scores", s.handleHighScores)
	s.r.Get("/user_rankings", s.handleUserRankings)

	// Cron and task queue entry points; the work itself runs on the job queue.
	s.r.Post("/tasks/cache_average_attempts", s.submitJob(jobs.CacheAverageAttempts))
	s.r.Get("/crons/send_reminder", s.submitJob(jobs.SendReminders))

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled, then drains in-flight
// requests for up to five seconds.
func (s *Server) Start(ctx context.Context, addr string) error {
	hs := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = hs.Shutdown(sctx)
	}()
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables CORS for a single origin taken from CLIENT_ORIGIN
// (default http://localhost:5173).
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- USERS -------------------------------------

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userReq
	if !decode(w, r, &req) {
		return
	}
	if err := s.svc.RegisterUser(r.Context(), req.UserName, req.Email); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, stringMessageForm{Message: fmt.Sprintf("User %s created!", req.UserName)})
}

// ------------------------------- GAMES -------------------------------------

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if !decode(w, r, &req) {
		return
	}
	letters, attempts := defaultGameSize, defaultGameSize
	if req.NumberOfLetters != nil {
		letters = *req.NumberOfLetters
	}
	if req.Attempts != nil {
		attempts = *req.Attempts
	}
	g, err := s.svc.CreateGame(r.Context(), req.UserName, letters, attempts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGameForm(g))
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.svc.FetchGame(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGameForm(g))
}

func (s *Server) handleMakeMove(w http.ResponseWriter, r *http.Request) {
	var req makeMoveReq
	if !decode(w, r, &req) {
		return
	}
	g, res, err := s.svc.Guess(r.Context(), chi.URLParam(r, "key"), req.Guess)
	if err != nil {
		writeError(w, r, err)
		return
	}
	form := toGameForm(g)
	form.Result = toResultForm(res)
	writeJSON(w, http.StatusOK, form)
}

func (s *Server) handleCancelGame(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.CancelGame(r.Context(), chi.URLParam(r, "key")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stringMessageForm{Message: "Game cancelled"})
}

func (s *Server) handleUserGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.svc.ListUserGames(r.Context(), chi.URLParam(r, "user_name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := itemsForm[gameForm]{Items: make([]gameForm, 0, len(games))}
	for _, g := range games {
		out.Items = append(out.Items, toGameForm(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	results, err := s.svc.GameHistory(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := itemsForm[guessResultForm]{Items: make([]guessResultForm, 0, len(results))}
	for _, res := range results {
		out.Items = append(out.Items, *toResultForm(res))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAverageAttempts(w http.ResponseWriter, r *http.Request) {
	msg, err := s.svc.CachedAverageAttemptsRemaining(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stringMessageForm{Message: msg})
}

// ------------------------------- SCORES ------------------------------------

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.svc.ListAllScores(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScoreForms(scores))
}

func (s *Server) handleUserScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.svc.ListUserScores(r.Context(), chi.URLParam(r, "user_name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScoreForms(scores))
}

func (s *Server) handleHighScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.svc.HighScores(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toScoreForms(scores))
}

func (s *Server) handleUserRankings(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.UserRankings(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRankForms(users))
}

// ------------------------------- TASKS -------------------------------------

func (s *Server) submitJob(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.svc.Submit(name)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ------------------------------- small util --------------------------------

// decode reads a JSON body into v; an empty body leaves v zero.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Body == nil {
		return true
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad_json", Message: err.Error()})
		return false
	}
	return true
}

func toRankForms(users []scoring.User) itemsForm[userRankForm] {
	out := itemsForm[userRankForm]{Items: make([]userRankForm, 0, len(users))}
	for _, u := range users {
		out.Items = append(out.Items, userRankForm{
			UserName:             u.Name,
			Wins:                 u.Wins,
			AvgAttemptsRemaining: u.AvgAttemptsRemaining,
		})
	}
	return out
}
