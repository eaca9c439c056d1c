// Copyright 2025 Certen Protocol
//
// Client Tests

package rpcclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/radiusxyz/sequencer/pkg/jsonrpc"
)

func TestCall_DecodesSuccessfulResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resultRaw, _ := json.Marshal(map[string]string{"value": "ok"})
		_ = json.NewEncoder(w).Encode(jsonrpc.Response{JSONRPC: "2.0", Result: resultRaw, ID: json.RawMessage(`1`)})
	}))
	defer srv.Close()

	c := New(time.Second)
	var out map[string]string
	if err := c.Call(context.Background(), srv.URL, "ping", nil, &out); err != nil {
		t.Fatalf("call: %v", err)
	}
	if out["value"] != "ok" {
		t.Errorf("got %v, want value=ok", out)
	}
}

func TestCall_PropagatesRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(jsonrpc.Response{
			JSONRPC: "2.0",
			Error:   &jsonrpc.Error{Code: jsonrpc.CodeNotFound, Message: "not found"},
			ID:      json.RawMessage(`1`),
		})
	}))
	defer srv.Close()

	c := New(time.Second)
	err := c.Call(context.Background(), srv.URL, "ping", nil, nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	rpcErr, ok := err.(*jsonrpc.Error)
	if !ok {
		t.Fatalf("got error type %T, want *jsonrpc.Error", err)
	}
	if rpcErr.Code != jsonrpc.CodeNotFound {
		t.Errorf("got code %d, want %d", rpcErr.Code, jsonrpc.CodeNotFound)
	}
}

func TestCall_ErrorsOnUnreachableServer(t *testing.T) {
	c := New(50 * time.Millisecond)
	err := c.Call(context.Background(), "http://127.0.0.1:1", "ping", nil, nil)
	if err == nil {
		t.Error("expected error calling an unreachable url, got nil")
	}
}

func TestMulticast_ReturnsFirstSuccessAmongMixedPeers(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(jsonrpc.Response{
			JSONRPC: "2.0",
			Error:   &jsonrpc.Error{Code: jsonrpc.CodeNotFound, Message: "missing"},
			ID:      json.RawMessage(`1`),
		})
	}))
	defer bad.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resultRaw, _ := json.Marshal(map[string]string{"value": "found"})
		_ = json.NewEncoder(w).Encode(jsonrpc.Response{JSONRPC: "2.0", Result: resultRaw, ID: json.RawMessage(`1`)})
	}))
	defer good.Close()

	c := New(time.Second)
	got, err := Multicast[map[string]string](context.Background(), c, []string{bad.URL, good.URL}, "fetch", nil)
	if err != nil {
		t.Fatalf("multicast: %v", err)
	}
	if got["value"] != "found" {
		t.Errorf("got %v, want value=found", got)
	}
}

func TestMulticast_ErrorsWhenEveryPeerFails(t *testing.T) {
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(jsonrpc.Response{
			JSONRPC: "2.0",
			Error:   &jsonrpc.Error{Code: jsonrpc.CodeNotFound, Message: "missing"},
			ID:      json.RawMessage(`1`),
		})
	}))
	defer bad.Close()

	c := New(time.Second)
	_, err := Multicast[map[string]string](context.Background(), c, []string{bad.URL}, "fetch", nil)
	if err == nil {
		t.Error("expected error when every peer fails, got nil")
	}
}

func TestMulticast_NoPeersReturnsError(t *testing.T) {
	c := New(time.Second)
	_, err := Multicast[map[string]string](context.Background(), c, nil, "fetch", nil)
	if err == nil {
		t.Error("expected error for empty peer list, got nil")
	}
}
