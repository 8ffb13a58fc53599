// internal/remote/client.go
//
// HTTP client for the score service.
//
// Endpoints used:
//   - GET  /              reachability check at startup
//   - POST /submit-score  {"user_id": <id>, "score": <n>}, 200 on success
//
// Connectivity is only retried at startup; if the service cannot be
// reached the panel runs offline and never calls it.

package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/simon/internal/clock"
)

// Client talks to the score service at a base URL.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for base (e.g. "http://172.20.10.11:8000").
func NewClient(base string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: timeout},
	}
}

// Ping reports whether the service answers at all.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/", nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode >= 500 {
		return fmt.Errorf("remote: ping status %d", res.StatusCode)
	}
	return nil
}

// Connect pings up to attempts times, waiting interval between tries.
// It returns false (offline mode) when every attempt fails.
func (c *Client) Connect(ctx context.Context, clk clock.Clock, attempts int, interval time.Duration) bool {
	if attempts < 1 {
		attempts = 1
	}
	for i := 1; i <= attempts; i++ {
		err := c.Ping(ctx)
		if err == nil {
			log.Info().Str("url", c.base).Int("attempt", i).Msg("remote: score service reachable")
			return true
		}
		log.Warn().Err(err).Int("attempt", i).Int("of", attempts).Msg("remote: score service unreachable")
		if i == attempts {
			break
		}
		if err := clk.Sleep(ctx, interval); err != nil {
			return false
		}
	}
	log.Warn().Str("url", c.base).Msg("remote: giving up, playing offline")
	return false
}

type scoreReq struct {
	UserID any `json:"user_id"`
	Score  int `json:"score"`
}

// userIDValue sends numeric ids as JSON numbers, anything else as a string.
func userIDValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// SubmitScore posts one final score for userID.
func (c *Client) SubmitScore(ctx context.Context, userID string, score int) error {
	body, err := json.Marshal(scoreReq{UserID: userIDValue(userID), Score: score})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/submit-score", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("remote: submit score: %w", err)
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("remote: submit score: status %d", res.StatusCode)
	}
	return nil
}
