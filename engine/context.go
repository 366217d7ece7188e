package engine

import (
	"context"
	"regexp"
	"strings"
)

// Message is one prior conversation turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request assembly limits. The model input is bounded at every layer so
// a long conversation or a pasted document cannot blow the request.
const (
	maxHistoryMessages = 20
	maxHistoryChars    = 12000
	maxLinks           = 2
	maxLinkChars       = 1500
	maxMessageForLinks = 2000
	maxRequestChars    = 8000
	maxMemoryChars     = 2000
)

var urlPattern = regexp.MustCompile(`(?i)https?://\S+`)

// trimHistory keeps the newest messages, bounded by count and by total
// character size.
func trimHistory(history []Message) []Message {
	if len(history) == 0 {
		return nil
	}
	if len(history) > maxHistoryMessages {
		history = history[len(history)-maxHistoryMessages:]
	}

	total := 0
	cut := len(history)
	for i := len(history) - 1; i >= 0; i-- {
		size := len(history[i].Content)
		if total+size > maxHistoryChars {
			break
		}
		total += size
		cut = i
	}
	return history[cut:]
}

// trimByChars drops the oldest messages until the total content size
// fits maxChars.
func trimByChars(messages []Message, maxChars int) []Message {
	total := 0
	cut := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		size := len(messages[i].Content)
		if total+size > maxChars {
			break
		}
		total += size
		cut = i
	}
	return messages[cut:]
}

// extractURLs pulls up to max distinct links out of text.
func extractURLs(text string, max int) []string {
	var out []string
	for _, match := range urlPattern.FindAllString(text, -1) {
		url := strings.TrimRight(match, `).,;"'[]<>`)
		if url == "" || contains(out, url) {
			continue
		}
		out = append(out, url)
		if len(out) >= max {
			break
		}
	}
	return out
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

// buildLinkContext fetches links pasted in the user message and returns
// a bounded context block. Failures skip the link.
func (e *Engine) buildLinkContext(ctx context.Context, message string) string {
	if e.fetchPage == nil || len(message) > maxMessageForLinks {
		return ""
	}
	urls := extractURLs(message, maxLinks)
	if len(urls) == 0 {
		return ""
	}

	var entries []string
	for _, url := range urls {
		finalURL, text, err := e.fetchPage(ctx, url)
		if err != nil || text == "" {
			continue
		}
		if len(text) > maxLinkChars {
			text = text[:maxLinkChars]
		}
		entries = append(entries, "Source: "+finalURL+"\n"+text)
	}
	if len(entries) == 0 {
		return ""
	}
	return "Linked content:\n" + strings.Join(entries, "\n\n")
}

// buildMemoryContext searches stored memory and returns a bounded
// context block.
func (e *Engine) buildMemoryContext(ctx context.Context, message, conversationID string) string {
	if e.memory == nil {
		return ""
	}
	items, err := e.memory.MemorySearch(ctx, message, 5, conversationID)
	if err != nil {
		e.log.Warn().Err(err).Msg("memory search failed")
		return ""
	}
	var parts []string
	for _, item := range items {
		if item.Content != "" {
			parts = append(parts, item.Content)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	joined := strings.Join(parts, "\n")
	if len(joined) > maxMemoryChars {
		joined = "..." + joined[len(joined)-maxMemoryChars:]
	}
	return "Memory context:\n" + joined
}
