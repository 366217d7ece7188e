package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemoryItem is one stored memory entry.
type MemoryItem struct {
	ID             string    `json:"id"`
	Content        string    `json:"content"`
	Tags           []string  `json:"tags"`
	ConversationID string    `json:"conversation_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MemoryPut stores a memory item.
func (s *Store) MemoryPut(ctx context.Context, content string, tags []string, conversationID string) (*MemoryItem, error) {
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	item := &MemoryItem{
		ID:             uuid.New().String(),
		Content:        content,
		Tags:           tags,
		ConversationID: conversationID,
		CreatedAt:      time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO memory_items (id, content, tags, conversation_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		item.ID, item.Content, string(tagsJSON), nullable(conversationID), formatTime(item.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("memory put: %w", err)
	}
	return item, nil
}

// MemorySearch returns the most recent items whose content matches every
// term of the query. The Postgres full-text ranking of the original
// service degrades here to per-term LIKE matching ordered by recency.
func (s *Store) MemorySearch(ctx context.Context, query string, limit int, conversationID string) ([]MemoryItem, error) {
	if limit <= 0 {
		limit = 8
	}
	terms := tokenize(query)

	sqlQuery := `SELECT id, content, tags, COALESCE(conversation_id, ''), created_at FROM memory_items WHERE 1=1`
	args := []any{}
	for _, term := range terms {
		sqlQuery += ` AND content LIKE ? ESCAPE '\'`
		args = append(args, "%"+escapeLike(term)+"%")
	}
	if conversationID != "" {
		sqlQuery += ` AND conversation_id = ?`
		args = append(args, conversationID)
	}
	sqlQuery += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("memory search: %w", err)
	}
	defer rows.Close()

	var out []MemoryItem
	for rows.Next() {
		var item MemoryItem
		var tagsJSON, createdAt string
		if err := rows.Scan(&item.ID, &item.Content, &tagsJSON, &item.ConversationID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan memory item: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &item.Tags); err != nil {
			item.Tags = nil
		}
		item.CreatedAt = parseTime(createdAt)
		out = append(out, item)
	}
	return out, rows.Err()
}

func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:()[]\"'")
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
