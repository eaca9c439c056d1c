// Copyright 2025 Certen Protocol
//
// Server is one of the three JSON-RPC 2.0 endpoints (internal, cluster,
// external) that share application state, grounded on the teacher's
// pkg/server handler-struct-with-logger idiom (pkg/server/proof_handlers.go)
// generalized from REST routes to JSON-RPC method dispatch.

package rpcserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/radiusxyz/sequencer/pkg/appstate"
	"github.com/radiusxyz/sequencer/pkg/jsonrpc"
	"github.com/radiusxyz/sequencer/pkg/logging"
	"github.com/radiusxyz/sequencer/pkg/rpcmethods"
)

// Server registers (method name, handler) pairs and dispatches incoming
// JSON-RPC 2.0 requests to them.
type Server struct {
	name    string
	app     *appstate.AppState
	logger  *log.Logger
	methods map[string]rpcmethods.Handler
	http    *http.Server
}

// New constructs a server named for logging purposes (e.g. "internal-rpc",
// "cluster-rpc", "external-rpc").
func New(name string, app *appstate.AppState) *Server {
	return &Server{
		name:    name,
		app:     app,
		logger:  logging.New(name),
		methods: make(map[string]rpcmethods.Handler),
	}
}

// Register adds a method handler. Registering the same name twice replaces
// the previous handler.
func (s *Server) Register(method string, handler rpcmethods.Handler) {
	s.methods[method] = handler
}

// RegisterAll is a convenience for bulk registration from a method table.
func (s *Server) RegisterAll(methods map[string]rpcmethods.Handler) {
	for name, h := range methods {
		s.Register(name, h)
	}
}

// ListenAndServe starts the HTTP listener. It blocks until the server stops
// or fails; callers typically run it in its own goroutine.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s}
	s.logger.Printf("listening on %s (%d methods registered)", addr, len(s.methods))
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, nil, &jsonrpc.Error{Code: jsonrpc.CodeParseError, Message: "failed to read request body"})
		return
	}

	var req jsonrpc.Request
	if err := json.Unmarshal(raw, &req); err != nil {
		writeError(w, nil, &jsonrpc.Error{Code: jsonrpc.CodeParseError, Message: "invalid json"})
		return
	}

	handler, ok := s.methods[req.Method]
	if !ok {
		writeError(w, req.ID, &jsonrpc.Error{Code: jsonrpc.CodeMethodNotFound, Message: "method not found: " + req.Method})
		return
	}

	result, err := handler(r.Context(), s.app, req.Params)
	if err != nil {
		s.logger.Printf("method %s failed: %v", req.Method, err)
		writeError(w, req.ID, rpcmethods.ToRPCError(err))
		return
	}

	resultRaw, err := json.Marshal(result)
	if err != nil {
		writeError(w, req.ID, &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: "failed to marshal result"})
		return
	}

	_ = json.NewEncoder(w).Encode(jsonrpc.Response{
		JSONRPC: "2.0",
		Result:  resultRaw,
		ID:      req.ID,
	})
}

func writeError(w http.ResponseWriter, id json.RawMessage, rpcErr *jsonrpc.Error) {
	_ = json.NewEncoder(w).Encode(jsonrpc.Response{
		JSONRPC: "2.0",
		Error:   rpcErr,
		ID:      id,
	})
}
