// internal/httpserver/routes_scores.go
//
// HTTP routes for the score ledger.
//   - GET /scores/recent → newest results first
//   - GET /scores/top    → best scores, oldest first on ties
//
// Both accept ?limit=N (default 20, capped by the store).

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/store"
)

// mountScores registers all /scores routes.
func (s *Server) mountScores(r chi.Router) {
	r.Route("/scores", func(r chi.Router) {
		r.Get("/recent", s.listScores(store.Store.Recent))
		r.Get("/top", s.listScores(store.Store.Top))
	})
}

// listScores adapts one ledger query into a handler.
func (s *Server) listScores(query func(store.Store, context.Context, int) ([]store.Result, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.d.Store == nil {
			writeError(w, http.StatusServiceUnavailable, "no_store")
			return
		}
		rows, err := query(s.d.Store, r.Context(), queryInt(r, "limit", 0))
		if err != nil {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("http: score query")
			writeError(w, http.StatusInternalServerError, "db_error")
			return
		}
		if rows == nil {
			rows = []store.Result{}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": rows})
	}
}
