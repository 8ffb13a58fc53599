// internal/session/session.go
//
// Login handshake state for the panel.
//
// A companion web app posts the player's user id and name to the panel;
// from then on finished games are attributed to that player and their
// scores are submitted to the score service. Only one player is logged in
// at a time.
//
// Responsibilities:
//   - Track the current player (Login / Logout / Current).
//   - Let the startup gate block until someone logs in (Wait).
//   - Issue and verify HS256 session tokens handed back to the web app.

package session

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNotLoggedIn is returned when no player is logged in.
	ErrNotLoggedIn = errors.New("no user logged in")
	// ErrInvalidToken is returned for unparsable, expired or stale tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// User is the logged-in player as sent by the login request.
type User struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
}

// Manager holds the current session. Safe for concurrent use.
type Manager struct {
	secret []byte
	ttl    time.Duration

	mu       sync.Mutex
	user     *User
	loggedIn chan struct{} // closed on the next login
	hooks    []func(User)
}

// NewManager returns a manager signing tokens with secret, valid for ttl.
func NewManager(secret string, ttl time.Duration) *Manager {
	if secret == "" {
		secret = "dev_secret_change_me"
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, loggedIn: make(chan struct{})}
}

// OnLogin registers fn to run after every successful login.
func (m *Manager) OnLogin(fn func(User)) {
	m.mu.Lock()
	m.hooks = append(m.hooks, fn)
	m.mu.Unlock()
}

// normalize trims the fields and checks the basic shape of a login.
func normalize(u User) (User, error) {
	u.ID = strings.TrimSpace(u.ID)
	u.Username = strings.TrimSpace(u.Username)
	if u.ID == "" {
		return u, errors.New("user_id is required")
	}
	if u.Username == "" || len(u.Username) > 32 {
		return u, errors.New("username must be 1–32 chars")
	}
	return u, nil
}

// Login makes u the current player and returns a session token for it.
func (m *Manager) Login(u User) (string, time.Time, error) {
	u, err := normalize(u)
	if err != nil {
		return "", time.Time{}, err
	}
	tok, exp, err := m.sign(u)
	if err != nil {
		return "", time.Time{}, err
	}

	m.mu.Lock()
	m.user = &u
	close(m.loggedIn)
	m.loggedIn = make(chan struct{})
	hooks := append([]func(User){}, m.hooks...)
	m.mu.Unlock()

	log.Info().Str("user", u.ID).Str("username", u.Username).Msg("session: logged in")
	for _, fn := range hooks {
		fn(u)
	}
	return tok, exp, nil
}

// Logout ends the current session, if any.
func (m *Manager) Logout() {
	m.mu.Lock()
	u := m.user
	m.user = nil
	m.mu.Unlock()
	if u != nil {
		log.Info().Str("user", u.ID).Msg("session: logged out")
	}
}

// Current returns the logged-in player.
func (m *Manager) Current() (User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return User{}, false
	}
	return *m.user, true
}

// Wait blocks until a player is logged in or ctx ends.
func (m *Manager) Wait(ctx context.Context) (User, error) {
	for {
		m.mu.Lock()
		if m.user != nil {
			u := *m.user
			m.mu.Unlock()
			return u, nil
		}
		ch := m.loggedIn
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return User{}, ctx.Err()
		case <-ch:
		}
	}
}

// sign creates an HS256 JWT carrying the user.
func (m *Manager) sign(u User) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(m.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":       u.ID,
		"username": u.Username,
		"exp":      exp.Unix(),
		"iat":      now.Unix(),
	})
	ss, err := t.SignedString(m.secret)
	return ss, exp, err
}

// Verify parses a token and checks it belongs to the current player.
func (m *Manager) Verify(token string) (User, error) {
	if token == "" {
		return User{}, ErrInvalidToken
	}
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return User{}, ErrInvalidToken
	}
	id, _ := claims["id"].(string)
	username, _ := claims["username"].(string)
	if id == "" {
		return User{}, ErrInvalidToken
	}
	cur, ok := m.Current()
	if !ok {
		return User{}, ErrNotLoggedIn
	}
	if cur.ID != id {
		return User{}, ErrInvalidToken
	}
	return User{ID: id, Username: username}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	return ""
}
