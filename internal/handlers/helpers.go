// internal/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	"github.com/overtinction/server/internal/auth"
	"github.com/overtinction/server/internal/round"
)

// playerCookie is the cookie carrying the signed player token.
const playerCookie = "player_token"

// extractCookieToken extracts a named cookie value from a Cookie header, or
// returns empty if not found.
func extractCookieToken(cookieHeader, cookieName string) string {
	parts := strings.Split(cookieHeader, cookieName+"=")
	if len(parts) < 2 {
		return ""
	}
	token := parts[1]
	if idx := strings.Index(token, ";"); idx != -1 {
		token = token[:idx]
	}
	return token
}

// playerSessionID authenticates the request's player token and returns the
// session id it names.
func playerSessionID(r *http.Request) (uuid.UUID, error) {
	token := extractCookieToken(r.Header.Get("Cookie"), playerCookie)
	if token == "" {
		return uuid.Nil, errors.New("missing player token")
	}
	sub, err := auth.VerifyPlayerToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.Parse(sub)
}

// gameIDParam parses the :gameID route parameter.
func gameIDParam(ps httprouter.Params) (uuid.UUID, error) {
	return uuid.Parse(ps.ByName("gameID"))
}

// setPlayerCookie attaches the signed player token to the response.
func setPlayerCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     playerCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("response encode failed")
	}
}

// httpError maps core errors onto status codes. Unknown phases and other
// unexpected failures surface as 500s, never silently.
func (s *Server) httpError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, round.ErrGameNotFound), errors.Is(err, round.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		s.log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
