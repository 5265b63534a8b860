package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/jwgray1010/unsaid/internal/coach"
	"github.com/jwgray1010/unsaid/internal/remote"
)

// writeTimeout bounds each outbound frame write.
const writeTimeout = 10 * time.Second

// streamFrame is one client->server message on /ws/suggestions: the current
// debounced draft plus optional session context.
type streamFrame struct {
	Text           string `json:"text"`
	EmotionalState string `json:"emotional_state,omitempty"`
	Transcript     string `json:"transcript,omitempty"`
}

// resultFrame is a server->client message. Type is "result" for the local
// pipeline output and "enhanced" for a later remote refinement of the same
// analysis ID.
type resultFrame struct {
	Type     string              `json:"type"`
	Result   *coach.Result       `json:"result,omitempty"`
	ID       string              `json:"id,omitempty"`
	Enhanced []remote.Suggestion `json:"enhanced,omitempty"`
	Error    string              `json:"error,omitempty"`
}

// streamConn serializes writes; the local result and a late remote
// enhancement can race for the socket.
type streamConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *streamConn) send(ctx context.Context, frame resultFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return s.conn.Write(writeCtx, websocket.MessageText, data)
}

// handleSuggestionStream upgrades to a WebSocket and answers each text frame
// with the local ranked result, then an enhanced frame if the remote call
// lands before the next draft supersedes it.
func (h *Handlers) handleSuggestionStream(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	ctx := r.Context()
	stream := &streamConn{conn: conn}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}

		var frame streamFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			if sendErr := stream.send(ctx, resultFrame{Type: "error", Error: "invalid frame"}); sendErr != nil {
				return
			}
			continue
		}

		req := coach.Request{
			Text:           frame.Text,
			EmotionalState: frame.EmotionalState,
			Transcript:     frame.Transcript,
		}
		result, err := h.coach.Analyze(ctx, req)
		if err != nil {
			return
		}

		if err := stream.send(ctx, resultFrame{Type: "result", Result: &result}); err != nil {
			return
		}

		h.coach.Enhance(ctx, req, result, func(id string, suggestions []remote.Suggestion) {
			if err := stream.send(ctx, resultFrame{Type: "enhanced", ID: id, Enhanced: suggestions}); err != nil {
				log.Printf("server: enhanced frame write failed: %v", err)
			}
		})
	}
}
