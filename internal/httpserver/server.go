// internal/httpserver/server.go
//
// HTTP server for the Simon panel.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/status".
//   - Login handshake: POST /esp-login hands out a session token; GET /session
//     and POST /logout require it.
//   - Device control: POST /set-volume.
//   - Score ledger: mounted under /scores (see routes_scores.go).
//
// Notes:
//   - The server runs on its own goroutine. It only reads engine snapshots
//     and never blocks the game loop.
//   - CORS is origin-aware so a browser companion page can call the device.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/dfplayer"
	"github.com/robalobadob/simon/internal/game"
	"github.com/robalobadob/simon/internal/session"
	"github.com/robalobadob/simon/internal/store"
)

// Game exposes the engine's read-only view.
type Game interface {
	Snapshot() game.Snapshot
}

// Volume adjusts the audio module.
type Volume interface {
	SetVolume(ctx context.Context, v int) error
}

// Deps are the collaborators behind the routes. Volume and Store may be nil.
type Deps struct {
	Game     Game
	Sessions *session.Manager
	Volume   Volume
	Store    store.Store
}

// Server bundles the router and its dependencies.
type Server struct {
	r    *chi.Mux
	d    Deps
	http *http.Server
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{r: chi.NewRouter(), d: d}

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
		_, _ = w.Write([]byte(`{"service":"simon","endpoints":["/health","/status","POST /esp-login","/session","POST /logout","POST /set-volume","/scores/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/status", s.handleStatus)

	// --- login handshake ---
	s.r.Post("/esp-login", s.handleLogin)
	s.r.With(s.requireSession()).Get("/session", func(w http.ResponseWriter, r *http.Request) {
		me, _ := r.Context().Value(ctxUserKey{}).(*session.User)
		_ = json.NewEncoder(w).Encode(me)
	})
	s.r.With(s.requireSession()).Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		s.d.Sessions.Logout()
		_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})

	s.r.Post("/set-volume", s.handleSetVolume)

	s.mountScores(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found")
	})

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// Start serves HTTP on addr until ctx ends, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- s.http.ListenAndServe() }()
	log.Info().Str("addr", addr).Msg("http: listening")

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv allows a single origin, CLIENT_ORIGIN (default "*").
func corsFromEnv(next http.Handler) http.Handler {
	origin := os.Getenv("CLIENT_ORIGIN")
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ctxUserKey is the context key type for the session user.
type ctxUserKey struct{}

// requireSession enforces a valid session token and injects the user into
// the request context.
func (s *Server) requireSession() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := session.BearerToken(r)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			u, err := s.d.Sessions.Verify(tok)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, &u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ------------------------------- handlers ----------------------------------

// loginReq is the body sent by the companion site. user_id may arrive as a
// JSON number or a string.
type loginReq struct {
	UserID   any    `json:"user_id"`
	Username string `json:"username"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	var id string
	switch v := body.UserID.(type) {
	case json.Number:
		id = v.String()
	case string:
		id = v
	}
	tok, exp, err := s.d.Sessions.Login(session.User{ID: id, Username: body.Username})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"message":   "Login Data Received",
		"token":     tok,
		"expiresAt": exp.UTC().Format(time.RFC3339),
	})
}

type statusRes struct {
	game.Snapshot
	User *session.User `json:"user,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	res := statusRes{Snapshot: s.d.Game.Snapshot()}
	if s.d.Sessions != nil {
		if u, ok := s.d.Sessions.Current(); ok {
			res.User = &u
		}
	}
	_ = json.NewEncoder(w).Encode(res)
}

type volumeReq struct {
	Volume *int `json:"volume"`
}

func (s *Server) handleSetVolume(w http.ResponseWriter, r *http.Request) {
	if s.d.Volume == nil {
		writeError(w, http.StatusServiceUnavailable, "no_audio")
		return
	}
	var body volumeReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Volume == nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	err := s.d.Volume.SetVolume(r.Context(), *body.Volume)
	switch {
	case errors.Is(err, dfplayer.ErrVolumeRange):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("volume must be 0–%d", dfplayer.MaxVolume))
		return
	case err != nil:
		log.Warn().Err(err).Int("volume", *body.Volume).Msg("http: set volume")
		writeError(w, http.StatusBadGateway, "audio_failed")
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]int{"volume": *body.Volume})
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
