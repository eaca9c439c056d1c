// Copyright 2025 Certen Protocol
//
// Server Dispatch Tests

package rpcserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/radiusxyz/sequencer/pkg/appstate"
	"github.com/radiusxyz/sequencer/pkg/jsonrpc"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/rpcmethods"
)

func doRequest(t *testing.T, s *Server, body string) jsonrpc.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var resp jsonrpc.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func TestServeHTTP_DispatchesToRegisteredMethod(t *testing.T) {
	s := New("test-rpc", &appstate.AppState{})
	s.Register("echo", func(ctx context.Context, app *appstate.AppState, params json.RawMessage) (any, error) {
		return map[string]string{"ok": "yes"}, nil
	})

	resp := doRequest(t, s, `{"jsonrpc":"2.0","method":"echo","params":{},"id":1}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	if !strings.Contains(string(resp.Result), `"ok":"yes"`) {
		t.Errorf("got result %q, want it to contain ok:yes", resp.Result)
	}
}

func TestServeHTTP_UnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := New("test-rpc", &appstate.AppState{})
	resp := doRequest(t, s, `{"jsonrpc":"2.0","method":"nope","id":1}`)
	if resp.Error == nil || resp.Error.Code != jsonrpc.CodeMethodNotFound {
		t.Errorf("got %+v, want method-not-found error", resp.Error)
	}
}

func TestServeHTTP_MalformedJSONReturnsParseError(t *testing.T) {
	s := New("test-rpc", &appstate.AppState{})
	resp := doRequest(t, s, `{not json`)
	if resp.Error == nil || resp.Error.Code != jsonrpc.CodeParseError {
		t.Errorf("got %+v, want parse error", resp.Error)
	}
}

func TestServeHTTP_HandlerErrorIsMappedToRPCError(t *testing.T) {
	s := New("test-rpc", &appstate.AppState{})
	s.Register("fails", func(ctx context.Context, app *appstate.AppState, params json.RawMessage) (any, error) {
		return nil, fmt.Errorf("fails: %w", rollup.ErrNotFound)
	})

	resp := doRequest(t, s, `{"jsonrpc":"2.0","method":"fails","id":1}`)
	if resp.Error == nil {
		t.Fatal("expected error, got nil")
	}
	if resp.Error.Code != jsonrpc.CodeNotFound {
		t.Errorf("got code %d, want %d", resp.Error.Code, jsonrpc.CodeNotFound)
	}
}

func TestRegisterAll_RegistersEveryEntry(t *testing.T) {
	s := New("test-rpc", &appstate.AppState{})
	called := map[string]bool{}
	s.RegisterAll(map[string]rpcmethods.Handler{
		"a": func(ctx context.Context, app *appstate.AppState, params json.RawMessage) (any, error) {
			called["a"] = true
			return nil, nil
		},
		"b": func(ctx context.Context, app *appstate.AppState, params json.RawMessage) (any, error) {
			called["b"] = true
			return nil, nil
		},
	})

	doRequest(t, s, `{"jsonrpc":"2.0","method":"a","id":1}`)
	doRequest(t, s, `{"jsonrpc":"2.0","method":"b","id":2}`)

	if !called["a"] || !called["b"] {
		t.Errorf("got %v, want both a and b invoked", called)
	}
}
