package rpc

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/adipundir/donatrade/internal/log"
	"github.com/gorilla/websocket"
)

const (
	wsReadLimit    = 512 * 1024
	wsPongWait     = 60 * time.Second
	wsPingInterval = 54 * time.Second
	wsWriteWait    = 10 * time.Second

	// DefaultSendQueueLimit is the per-connection event queue length
	DefaultSendQueueLimit = 256
)

// WebSocketServer serves RPC methods and subscriptions over WebSocket.
//
// Request:  {"command": "name", "id": 1, ...params}
// Response: {"type": "response", "id": 1, "status": "success", "result": {...}}
type WebSocketServer struct {
	upgrader websocket.Upgrader
	rpc      *Server
	hub      *Hub
	logger   log.Logger

	sendQueue int
}

// NewWebSocketServer creates a WebSocket endpoint sharing the methods of
// rpc and the subscriptions of hub.
func NewWebSocketServer(rpc *Server, hub *Hub) *WebSocketServer {
	hub.CountTraffic(rpc.traffic)
	return &WebSocketServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		rpc:       rpc,
		hub:       hub,
		logger:    rpc.logger.With("transport", "websocket"),
		sendQueue: DefaultSendQueueLimit,
	}
}

// SetSendQueueLimit sets the event queue length of connections accepted
// afterwards. Events beyond it are dropped for that connection.
func (ws *WebSocketServer) SetSendQueueLimit(n int) {
	if n > 0 {
		ws.sendQueue = n
	}
}

type wsResponse struct {
	Type   string      `json:"type"`
	ID     interface{} `json:"id,omitempty"`
	Status string      `json:"status"`
	Result interface{} `json:"result,omitempty"`

	Error        string `json:"error,omitempty"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type subscriptionRequest struct {
	Streams  []string `json:"streams,omitempty"`
	Accounts []string `json:"accounts,omitempty"`
}

func generateConnectionID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

// ServeHTTP upgrades the connection and serves it until either side closes.
func (ws *WebSocketServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	sub := ws.hub.Add(generateConnectionID(), ws.sendQueue)
	defer func() {
		cancel()
		ws.hub.Remove(sub.ID)
		conn.Close()
	}()

	go ws.writeLoop(ctx, cancel, conn, sub)

	rctx := &RpcContext{Context: ctx, ClientIP: getClientIP(r)}
	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ws.logger.Debug("websocket read failed", "subscriber", sub.ID, "error", err)
			}
			return
		}
		command, resp := ws.handleMessage(rctx, sub, message)
		data, err := json.Marshal(resp)
		if err != nil {
			ws.logger.Error("failed to marshal response", "error", err)
			continue
		}
		ws.rpc.countTraffic(command, len(message), len(data))
		select {
		case sub.Send <- data:
		case <-ctx.Done():
			return
		}
	}
}

func (ws *WebSocketServer) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sub *Subscriber) {
	defer cancel()
	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case message := <-sub.Send:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				ws.logger.Debug("websocket send failed", "subscriber", sub.ID, "error", err)
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		}
	}
}

func errorResponse(id interface{}, rpcErr *RpcError) *wsResponse {
	return &wsResponse{
		Type:         "response",
		ID:           id,
		Status:       "error",
		Error:        rpcErr.ErrorString,
		ErrorCode:    rpcErr.Code,
		ErrorMessage: rpcErr.Message,
	}
}

// handleMessage serves one command and returns its name with the response.
func (ws *WebSocketServer) handleMessage(ctx *RpcContext, sub *Subscriber, message []byte) (string, *wsResponse) {
	var cmdMap map[string]json.RawMessage
	if err := json.Unmarshal(message, &cmdMap); err != nil {
		return "", errorResponse(nil, RpcErrorInvalidParams("Invalid JSON: "+err.Error()))
	}

	var id interface{}
	if raw, ok := cmdMap["id"]; ok {
		_ = json.Unmarshal(raw, &id)
	}
	var command string
	if raw, ok := cmdMap["command"]; ok {
		_ = json.Unmarshal(raw, &command)
	}
	if command == "" {
		return "", errorResponse(id, RpcErrorMissingCommand())
	}
	delete(cmdMap, "command")
	delete(cmdMap, "id")

	params, err := json.Marshal(cmdMap)
	if err != nil {
		return command, errorResponse(id, RpcErrorInternal("failed to re-encode params"))
	}

	var (
		result interface{}
		rpcErr *RpcError
	)
	switch command {
	case "subscribe":
		result, rpcErr = ws.subscribe(sub, params, true)
	case "unsubscribe":
		result, rpcErr = ws.subscribe(sub, params, false)
	default:
		result, rpcErr = ws.rpc.Execute(ctx, command, params)
	}
	if rpcErr != nil {
		return command, errorResponse(id, rpcErr)
	}
	return command, &wsResponse{Type: "response", ID: id, Status: "success", Result: result}
}

func (ws *WebSocketServer) subscribe(sub *Subscriber, params json.RawMessage, add bool) (interface{}, *RpcError) {
	var req subscriptionRequest
	if err := json.Unmarshal(params, &req); err != nil {
		return nil, RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	if len(req.Streams) == 0 && len(req.Accounts) == 0 {
		return nil, RpcErrorInvalidParams("Nothing to subscribe to")
	}
	for _, st := range req.Streams {
		if st != StreamOperations {
			return nil, RpcErrorStreamMalformed("Unknown stream '" + st + "'")
		}
	}
	for _, a := range req.Accounts {
		if _, rpcErr := parseAccount("accounts", a); rpcErr != nil {
			return nil, rpcErr
		}
	}
	if add {
		sub.Subscribe(req.Streams, req.Accounts)
	} else {
		sub.Unsubscribe(req.Streams, req.Accounts)
	}
	return map[string]interface{}{}, nil
}
