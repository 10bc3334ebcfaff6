package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/logger"
)

const (
	wsWriteWait  = 10 * time.Second
	wsMaxMessage = maxJSONBytes
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// ChatMessage is one question sent over the websocket.
type ChatMessage struct {
	Question      string `json:"question"`
	ImageBase64   string `json:"image_base64,omitempty"`
	FileID        string `json:"file_id,omitempty"`
	MaxChunks     int    `json:"max_chunks,omitempty"`
	KeywordFilter bool   `json:"keyword_filter,omitempty"`
}

// ChatReply answers one ChatMessage. Error is set instead of Answer when
// the question failed; the connection stays open.
type ChatReply struct {
	Answer    string          `json:"answer,omitempty"`
	Sources   []domain.Source `json:"sources,omitempty"`
	SessionID string          `json:"session_id,omitempty"`
	Turn      int             `json:"turn,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// handleWebSocket runs a chat over one connection. The connection owns a
// single QuerySession, so follow-up questions see the earlier turns.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessage)

	ctx := r.Context()
	var session *domain.QuerySession

	for {
		var msg ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("WebSocket read ended: %v", err)
			}
			return
		}

		req := domain.QueryRequest{
			Question:      msg.Question,
			ImageBase64:   msg.ImageBase64,
			FileIDs:       domain.ParseFileIDs(msg.FileID),
			MaxChunks:     msg.MaxChunks,
			KeywordFilter: msg.KeywordFilter,
		}

		var reply ChatReply
		next, resp, err := s.ports.Query.Ask(ctx, session, req)
		if err != nil {
			reply.Error = err.Error()
		} else {
			session = next
			reply = ChatReply{
				Answer:    resp.Answer,
				Sources:   resp.Sources,
				SessionID: next.ID,
				Turn:      next.Len(),
			}
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteWait)) //nolint:errcheck
		if err := conn.WriteJSON(reply); err != nil {
			logger.Debug("WebSocket write failed: %v", err)
			return
		}
	}
}
