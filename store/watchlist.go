package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/citadelhq/citadel-go/core"
)

// WatchlistItem is a tracked symbol with an optional note.
type WatchlistItem struct {
	Symbol    string    `json:"symbol"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WatchlistAdd inserts a symbol or updates its note if already present.
func (s *Store) WatchlistAdd(ctx context.Context, symbol, note string) (*WatchlistItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, &core.ValidationError{Tool: "watchlist", Fields: []string{"symbol"}, Reason: "symbol is required"}
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO watchlist_items (symbol, note, created_at, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET note = excluded.note, updated_at = excluded.updated_at`,
		symbol, note, formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("watchlist add: %w", err)
	}

	var item WatchlistItem
	var noteOut *string
	var createdAt, updatedAt string
	err = s.db.QueryRowContext(ctx, `
		SELECT symbol, note, created_at, updated_at FROM watchlist_items WHERE symbol = ?`, symbol).
		Scan(&item.Symbol, &noteOut, &createdAt, &updatedAt)
	if err != nil {
		return nil, fmt.Errorf("watchlist reload: %w", err)
	}
	if noteOut != nil {
		item.Note = *noteOut
	}
	item.CreatedAt = parseTime(createdAt)
	item.UpdatedAt = parseTime(updatedAt)
	return &item, nil
}

// Watchlist returns all tracked symbols in alphabetical order.
func (s *Store) Watchlist(ctx context.Context) ([]WatchlistItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT symbol, note, created_at, updated_at FROM watchlist_items ORDER BY symbol ASC`)
	if err != nil {
		return nil, fmt.Errorf("watchlist: %w", err)
	}
	defer rows.Close()

	var out []WatchlistItem
	for rows.Next() {
		var item WatchlistItem
		var note *string
		var createdAt, updatedAt string
		if err := rows.Scan(&item.Symbol, &note, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist item: %w", err)
		}
		if note != nil {
			item.Note = *note
		}
		item.CreatedAt = parseTime(createdAt)
		item.UpdatedAt = parseTime(updatedAt)
		out = append(out, item)
	}
	return out, rows.Err()
}

// WatchlistRemove deletes a symbol from the watchlist.
func (s *Store) WatchlistRemove(ctx context.Context, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	res, err := s.db.ExecContext(ctx, `DELETE FROM watchlist_items WHERE symbol = ?`, symbol)
	if err != nil {
		return fmt.Errorf("watchlist remove: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &core.NotFoundError{Kind: "watchlist symbol", Name: symbol}
	}
	return nil
}
