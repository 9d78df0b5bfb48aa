package rpc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adipundir/donatrade/internal/log"
	"github.com/adipundir/donatrade/internal/metrics"
	"github.com/sasha-s/go-deadlock"
)

// maxRequestBody bounds a JSON-RPC request body.
const maxRequestBody = 1 << 20

// Server handles HTTP JSON-RPC requests.
//
// Request:  {"method": "name", "params": [{...}]}
// Response: {"result": {"status": "success", ...}}
type Server struct {
	registry *MethodRegistry
	services *Services
	timeout  time.Duration
	logger   log.Logger
	traffic  *metrics.TrafficCount

	submitMu  deadlock.Mutex
	approveMu deadlock.Mutex
	replay    *replayGuard
	decrypts  *replayGuard
	now       func() time.Time
}

// Request is a JSON-RPC request
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// NewServer creates a new RPC server with the given per-request timeout
func NewServer(services *Services, timeout time.Duration) *Server {
	logger := services.Logger
	if logger == nil {
		logger = log.Nop()
	}
	s := &Server{
		registry: NewMethodRegistry(),
		services: services,
		timeout:  timeout,
		logger:   logger.With("component", "rpc"),
		traffic:  metrics.NewTrafficCount(),
		replay:   newReplayGuard(services.ReplayWindow),
		decrypts: newReplayGuard(services.ReplayWindow),
		now:      time.Now,
	}
	s.registerAllMethods()
	return s
}

// Registry exposes the method registry, shared with the WebSocket server.
func (s *Server) Registry() *MethodRegistry {
	return s.registry
}

// Traffic returns the request and event counters of both endpoints.
func (s *Server) Traffic() *metrics.TrafficCount {
	return s.traffic
}

// countTraffic records one exchange of a method.
func (s *Server) countTraffic(method string, in, out int) {
	cat := metrics.Categorize(method)
	s.traffic.AddCount(cat, true, in)
	s.traffic.AddCount(cat, false, out)
}

// ServeHTTP implements http.Handler interface
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		// GET ?command=name for parameterless queries
		method := r.URL.Query().Get("command")
		if method == "" {
			method = "server_info"
		}
		result, rpcErr := s.Execute(s.newContext(r), method, nil)
		n := s.writeResponse(w, nil, result, rpcErr)
		s.countTraffic(method, len(r.URL.RawQuery), n)
	case http.MethodPost:
		s.handlePost(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) newContext(r *http.Request) *RpcContext {
	return &RpcContext{
		Context:  r.Context(),
		ClientIP: getClientIP(r),
	}
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeResponse(w, nil, nil, RpcErrorInternal("Failed to read request body"))
		return
	}

	var request Request
	if err := json.Unmarshal(body, &request); err != nil {
		s.writeResponse(w, nil, nil, NewRpcError(RpcJSON_RPC, "jsonInvalid", "jsonInvalid", "Invalid JSON: "+err.Error()))
		return
	}
	if request.Method == "" {
		s.writeResponse(w, nil, nil, RpcErrorMissingCommand())
		return
	}

	var params json.RawMessage
	if len(request.Params) > 0 {
		params = request.Params[0]
	}

	result, rpcErr := s.Execute(s.newContext(r), request.Method, params)

	var echo interface{}
	if rpcErr != nil {
		reqMap := map[string]interface{}{}
		if params != nil {
			_ = json.Unmarshal(params, &reqMap)
		}
		reqMap["command"] = request.Method
		echo = reqMap
	}
	n := s.writeResponse(w, echo, result, rpcErr)
	s.countTraffic(request.Method, len(body), n)
}

// Execute runs one method under the server timeout.
func (s *Server) Execute(ctx *RpcContext, method string, params json.RawMessage) (interface{}, *RpcError) {
	handler, exists := s.registry.Get(method)
	if !exists {
		return nil, RpcErrorMethodNotFound(method)
	}

	if s.timeout > 0 {
		c, cancel := context.WithTimeout(ctx.Context, s.timeout)
		defer cancel()
		ctx = &RpcContext{Context: c, ClientIP: ctx.ClientIP}
	}

	start := time.Now()
	result, rpcErr := handler.Handle(ctx, params)
	if rpcErr != nil {
		s.logger.Debug("rpc error", "method", method, "client", ctx.ClientIP, "error", rpcErr.ErrorString)
	} else {
		s.logger.Debug("rpc served", "method", method, "client", ctx.ClientIP, "elapsed", time.Since(start))
	}
	return result, rpcErr
}

// writeResponse writes a JSON-RPC response and returns its size. Errors
// carry status "error" plus error, error_code and error_message inside
// result.
func (s *Server) writeResponse(w http.ResponseWriter, request interface{}, result interface{}, rpcErr *RpcError) int {
	responseData, err := json.Marshal(map[string]interface{}{
		"result": buildResult(request, result, rpcErr),
	})
	if err != nil {
		s.logger.Error("failed to marshal response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return 0
	}

	w.WriteHeader(http.StatusOK)
	w.Write(responseData)
	return len(responseData)
}

func buildResult(request interface{}, result interface{}, rpcErr *RpcError) map[string]interface{} {
	if rpcErr != nil {
		resultObj := map[string]interface{}{
			"status":        "error",
			"error":         rpcErr.ErrorString,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		if request != nil {
			resultObj["request"] = request
		}
		return resultObj
	}
	if resultMap, ok := result.(map[string]interface{}); ok {
		resultMap["status"] = "success"
		return resultMap
	}
	return map[string]interface{}{
		"status": "success",
		"data":   result,
	}
}

// getClientIP extracts the client IP from the request
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
