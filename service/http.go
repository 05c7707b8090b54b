package service

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The command channel is same-host tooling, not a browser surface
	CheckOrigin: func(*http.Request) bool { return true },
}

// RegisterHTTPHandlers mounts the command endpoint, the WebSocket
// channel, and the health probe on the given mux
func (s *ScriptService) RegisterHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/command", s.handleHTTPCommand)
	mux.HandleFunc("/api/v1/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealthz)
}

// handleHTTPCommand accepts one command per POST and replies with the
// response envelope
func (s *ScriptService) handleHTTPCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   "malformed command: " + err.Error(),
		})
		return
	}

	resp := s.Dispatch(r.Context(), cmd)
	status := http.StatusOK
	if !resp.Success {
		// The envelope carries the real classification; the HTTP status
		// only separates client mistakes from engine faults.
		status = http.StatusBadRequest
		if resp.ErrorClass == "internal" {
			status = http.StatusInternalServerError
		}
	}
	writeJSON(w, status, resp)
}

// handleWebSocket upgrades the connection and serves a command loop:
// one JSON command in, one response envelope out, until the peer hangs
// up
func (s *ScriptService) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger().Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()
	s.Logger().Info("websocket client connected", "remote", conn.RemoteAddr())

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.Logger().Warn("websocket read failed", "error", err)
			}
			return
		}

		resp := s.Dispatch(r.Context(), cmd)
		if err := conn.WriteJSON(resp); err != nil {
			s.Logger().Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (s *ScriptService) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	status := http.StatusOK
	state := "ok"
	if !s.IsHealthy() {
		status = http.StatusServiceUnavailable
		state = "unhealthy"
	}
	writeJSON(w, status, map[string]any{
		"status":  state,
		"service": s.Name(),
		"uptime":  s.Uptime().String(),
		"time":    time.Now().UTC(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
