package api

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/FocuswithJustin/anchorleak/internal/logging"
	"github.com/FocuswithJustin/anchorleak/plugins/ipc"
)

const (
	// wsReadTimeout closes sessions that send nothing, pongs included.
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
)

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin.
		return true
	}
	if originAllowed(s.cfg.AllowedOrigins, origin) {
		return true
	}
	logging.SecurityEvent("websocket_origin_rejected", "api", "origin", origin)
	return false
}

// handleWebSocket upgrades the connection and serves IPC requests over it:
// each text frame carries one ipc.Request and is answered with one
// ipc.Response, in order.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logging.Warn("websocket upgrade failed", "error", err)
		return
	}

	sessionID := logging.GetRequestID(r.Context())
	if sessionID == "" {
		sessionID = logging.NewRequestID()
	}

	s.trackConn(conn)
	defer func() {
		s.untrackConn(conn)
		conn.Close()
		logging.WebSocketEvent("disconnected", sessionID)
	}()
	logging.WebSocketEvent("connected", sessionID, "remote_addr", r.RemoteAddr)

	conn.SetReadLimit(s.cfg.MaxMessageBytes)
	conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("websocket unexpected close", "session_id", sessionID, "error", err)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var resp *ipc.Response
		if msgType != websocket.TextMessage {
			resp = ipc.Error("only text frames are accepted")
		} else {
			resp = s.dispatch(data)
		}

		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(resp); err != nil {
			logging.Warn("websocket write failed", "session_id", sessionID, "error", err)
			return
		}
	}
}

// dispatch decodes one IPC request and runs it against the registry.
func (s *Server) dispatch(data []byte) *ipc.Response {
	req, err := ipc.ReadRequest(bytes.NewReader(data))
	if err != nil {
		return ipc.Error(err.Error())
	}

	if req.Command == ipc.CommandRun {
		if id, err := ipc.StringArg(req.Args, "operation"); err == nil {
			if op, err := s.registry.Get(id); err == nil {
				named, err := ipc.StringMap(req.Args)
				if err != nil {
					return ipc.Error(err.Error())
				}
				filled := s.withDefaults(op, named)
				args := make(map[string]interface{}, len(filled))
				for k, v := range filled {
					args[k] = v
				}
				req.Args = args
			}
		}
	}

	return s.registry.Handle(req)
}
