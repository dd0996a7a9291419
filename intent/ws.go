package intent

import (
	"context"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

// WSSource exchanges snapshots for hints over a websocket. One request,
// one response, per Fetch. The connection is lazily dialed and dropped
// on any error so the next Fetch starts clean.
type WSSource struct {
	url     string
	timeout time.Duration
	conn    *websocket.Conn
}

// NewWSSource creates a source for the given endpoint. timeout bounds
// each full exchange.
func NewWSSource(url string, timeout time.Duration) *WSSource {
	return &WSSource{url: url, timeout: timeout}
}

// Fetch sends the snapshot and waits for one hint payload.
func (s *WSSource) Fetch(ctx context.Context, snap Snapshot) ([]Hint, error) {
	if s.conn == nil {
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			return nil, fmt.Errorf("dialing intent bridge: %w", err)
		}
		s.conn = conn
	}

	deadline := time.Now().Add(s.timeout)
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return nil, s.drop(err)
	}
	if err := s.conn.WriteJSON(snap); err != nil {
		return nil, s.drop(fmt.Errorf("writing snapshot: %w", err))
	}

	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return nil, s.drop(err)
	}
	_, payload, err := s.conn.ReadMessage()
	if err != nil {
		return nil, s.drop(fmt.Errorf("reading hints: %w", err))
	}

	hints, err := ParseHints(payload)
	if err != nil {
		return nil, fmt.Errorf("parsing hints: %w", err)
	}
	return hints, nil
}

// drop closes the connection so the next Fetch redials.
func (s *WSSource) drop(err error) error {
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return err
}

// Close shuts down the connection if one is open.
func (s *WSSource) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
