package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/manrura/internal/assistant"
	"github.com/terra-clan/manrura/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleChat answers one question
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	question := strings.TrimSpace(req.Message)
	if question == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "message is required")
		return
	}

	respondJSON(w, http.StatusOK, models.ChatMessage{
		Role: models.ChatRoleBot,
		Text: s.ask(r.Context(), question),
	})
}

// handleChatWS runs a chat conversation over a WebSocket. The greeting is
// sent first; every non-blank user message gets exactly one bot reply, in
// order.
func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	slog.Info("chat websocket connected", "user_id", user.ID)

	if err := s.sendChatMessage(conn, models.ChatMessage{Role: models.ChatRoleBot, Text: assistant.Greeting}); err != nil {
		return
	}

	// Answers are produced in order by a single worker so a slow reply is
	// never cancelled or overtaken by later input
	questions := make(chan string, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for q := range questions {
			// the reply is still produced if the client went away meanwhile
			answer := s.ask(context.WithoutCancel(r.Context()), q)
			if err := s.sendChatMessage(conn, models.ChatMessage{Role: models.ChatRoleBot, Text: answer}); err != nil {
				// drain so the reader never blocks
				for range questions {
				}
				return
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			break
		}

		question := parseChatFrame(data)
		if question == "" {
			continue
		}
		questions <- question
	}

	close(questions)
	<-done
	slog.Info("chat websocket disconnected", "user_id", user.ID)
}

// parseChatFrame accepts {"message": "..."}, {"text": "..."} or plain text
func parseChatFrame(data []byte) string {
	var frame struct {
		Message string `json:"message"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(data, &frame); err == nil {
		if frame.Message != "" {
			return strings.TrimSpace(frame.Message)
		}
		return strings.TrimSpace(frame.Text)
	}
	return strings.TrimSpace(string(data))
}

func (s *Server) ask(ctx context.Context, question string) string {
	if s.assistant == nil {
		return assistant.MsgDisabled
	}
	return s.assistant.Ask(ctx, question)
}

func (s *Server) sendChatMessage(conn *websocket.Conn, msg models.ChatMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal chat message", "error", err)
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send chat message", "error", err)
		return err
	}
	return nil
}
