package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/citadelhq/citadel-go/core"
)

// ResearchBundle is a stored snapshot of assembled research for a ticker.
type ResearchBundle struct {
	ID          string          `json:"id"`
	Ticker      string          `json:"ticker"`
	HorizonDays int             `json:"horizon_days"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}

// StoreResearchBundle persists a bundle payload for a ticker.
func (s *Store) StoreResearchBundle(ctx context.Context, ticker string, horizonDays int, payload any) (*ResearchBundle, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode bundle: %w", err)
	}
	b := &ResearchBundle{
		ID:          uuid.New().String(),
		Ticker:      strings.ToUpper(strings.TrimSpace(ticker)),
		HorizonDays: horizonDays,
		Payload:     body,
		CreatedAt:   time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO research_bundles (id, ticker, horizon_days, payload, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		b.ID, b.Ticker, b.HorizonDays, string(body), formatTime(b.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("store bundle: %w", err)
	}
	return b, nil
}

// LatestResearchBundle returns the newest bundle for a ticker.
func (s *Store) LatestResearchBundle(ctx context.Context, ticker string) (*ResearchBundle, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ticker, horizon_days, payload, created_at FROM research_bundles
		WHERE ticker = ? ORDER BY created_at DESC LIMIT 1`,
		strings.ToUpper(strings.TrimSpace(ticker)))
	return scanBundle(row, ticker)
}

// ListResearchBundles returns bundle metadata, newest first.
func (s *Store) ListResearchBundles(ctx context.Context, limit int) ([]ResearchBundle, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, horizon_days, payload, created_at FROM research_bundles
		ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()

	var out []ResearchBundle
	for rows.Next() {
		var b ResearchBundle
		var payload, createdAt string
		if err := rows.Scan(&b.ID, &b.Ticker, &b.HorizonDays, &payload, &createdAt); err != nil {
			return nil, fmt.Errorf("scan bundle: %w", err)
		}
		b.Payload = json.RawMessage(payload)
		b.CreatedAt = parseTime(createdAt)
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBundle(row *sql.Row, ticker string) (*ResearchBundle, error) {
	var b ResearchBundle
	var payload, createdAt string
	err := row.Scan(&b.ID, &b.Ticker, &b.HorizonDays, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &core.NotFoundError{Kind: "research bundle", Name: ticker}
	}
	if err != nil {
		return nil, fmt.Errorf("scan bundle: %w", err)
	}
	b.Payload = json.RawMessage(payload)
	b.CreatedAt = parseTime(createdAt)
	return &b, nil
}
