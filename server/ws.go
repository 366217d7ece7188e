package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/citadelhq/citadel-go/engine"
)

type session struct {
	ConversationID string
	History        []engine.Message
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var current *session

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			s.sendError(conn, "Invalid message format")
			continue
		}

		switch msg.Type {
		case "new_conversation":
			current = s.wsNewConversation(r.Context(), conn)

		case "resume_conversation":
			current = s.wsResumeConversation(r.Context(), conn, msg.ConversationID)

		case "message":
			if current == nil {
				s.sendError(conn, "No active conversation. Send 'new_conversation' first.")
				continue
			}
			s.wsMessage(r.Context(), conn, current, msg.Content)

		default:
			s.sendError(conn, fmt.Sprintf("Unknown message type: %s", msg.Type))
		}
	}
}

func (s *Server) wsNewConversation(ctx context.Context, conn *websocket.Conn) *session {
	conv, err := s.store.CreateConversation(ctx, "")
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Failed to create conversation: %v", err))
		return nil
	}
	s.send(conn, ServerMessage{Type: "conversation_started", ConversationID: conv.ID})
	return &session{ConversationID: conv.ID}
}

func (s *Server) wsResumeConversation(ctx context.Context, conn *websocket.Conn, conversationID string) *session {
	conv, err := s.store.GetConversation(ctx, conversationID)
	if err != nil {
		s.sendError(conn, "Conversation not found")
		return nil
	}
	msgs, err := s.store.Messages(ctx, conv.ID)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Failed to load messages: %v", err))
		return nil
	}

	history := make([]engine.Message, 0, len(msgs))
	for _, m := range msgs {
		history = append(history, engine.Message{Role: m.Role, Content: m.Content})
	}

	s.send(conn, ServerMessage{
		Type:           "conversation_resumed",
		ConversationID: conv.ID,
		Messages:       msgs,
	})
	return &session{ConversationID: conv.ID, History: history}
}

func (s *Server) wsMessage(ctx context.Context, conn *websocket.Conn, sess *session, content string) {
	if content == "" {
		return
	}

	s.persistMessage(ctx, sess.ConversationID, "user", content)

	out, err := s.engine.Run(ctx, &engine.Input{
		Message:        content,
		History:        sess.History,
		SystemPrompt:   s.cfg.SystemPrompt,
		ConversationID: sess.ConversationID,
		UseMemory:      true,
		StoreMemory:    true,
		ExploreLinks:   true,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("agent run failed")
		s.sendError(conn, fmt.Sprintf("Agent error: %v", err))
		return
	}

	sess.History = append(sess.History,
		engine.Message{Role: "user", Content: content},
		engine.Message{Role: "assistant", Content: out.Text})
	s.persistMessage(ctx, sess.ConversationID, "assistant", out.Text)

	s.send(conn, ServerMessage{Type: "text", Content: out.Text})
	s.send(conn, ServerMessage{
		Type: "complete",
		TokenUsage: &TokenUsage{
			InputTokens:  out.TokensUsed.InputTokens,
			OutputTokens: out.TokensUsed.OutputTokens,
			TotalTokens:  out.TokensUsed.TotalTokens(),
		},
	})
}

func (s *Server) persistMessage(ctx context.Context, conversationID, role, content string) {
	if _, err := s.store.AppendMessage(ctx, conversationID, role, content); err != nil {
		s.log.Warn().Err(err).Msg("persist message failed")
	}
}

func (s *Server) send(conn *websocket.Conn, msg ServerMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		s.log.Warn().Err(err).Msg("websocket send failed")
	}
}

func (s *Server) sendError(conn *websocket.Conn, content string) {
	s.send(conn, ServerMessage{Type: "error", Content: content})
}
