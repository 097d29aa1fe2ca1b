// Package prefs stores the one piece of view state that outlives a session:
// the chosen view mode (card or table). Preferences are keyed by an opaque
// client ID and kept in Redis without expiry.
package prefs

import (
	"context"
	"fmt"
	"log/slog"

	pkgredis "github.com/papershelf/papershelf/pkg/redis"
)

// View modes.
const (
	ViewCard  = "card"
	ViewTable = "table"
)

const keyPrefix = "prefs:view:"

// Store reads and writes per-client view-mode preferences.
type Store struct {
	client *pkgredis.Client
	logger *slog.Logger
}

func NewStore(client *pkgredis.Client) *Store {
	return &Store{
		client: client,
		logger: slog.Default().With("component", "prefs-store"),
	}
}

// ViewMode returns the stored view mode for the client, defaulting to card.
func (s *Store) ViewMode(ctx context.Context, clientID string) (string, error) {
	if clientID == "" {
		return ViewCard, nil
	}
	mode, err := s.client.Get(ctx, keyPrefix+clientID)
	if err != nil {
		if pkgredis.IsNilError(err) {
			return ViewCard, nil
		}
		return ViewCard, fmt.Errorf("reading view preference: %w", err)
	}
	if mode != ViewCard && mode != ViewTable {
		return ViewCard, nil
	}
	return mode, nil
}

// SetViewMode stores the client's view mode. Only card and table are valid.
func (s *Store) SetViewMode(ctx context.Context, clientID, mode string) error {
	if clientID == "" {
		return fmt.Errorf("client id is required")
	}
	if mode != ViewCard && mode != ViewTable {
		return fmt.Errorf("invalid view mode %q", mode)
	}
	if err := s.client.Set(ctx, keyPrefix+clientID, mode, 0); err != nil {
		return fmt.Errorf("storing view preference: %w", err)
	}
	s.logger.Debug("view preference stored", "client_id", clientID, "mode", mode)
	return nil
}
