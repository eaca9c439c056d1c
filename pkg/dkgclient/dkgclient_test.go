// Copyright 2025 Certen Protocol
//
// DKG Client Tests

package dkgclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/radiusxyz/sequencer/pkg/jsonrpc"
	"github.com/radiusxyz/sequencer/pkg/rollup"
)

func TestGetDecryptionKey_ReturnsSecretOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resultRaw, _ := json.Marshal(getDecryptionKeyResult{SecretKey: "top-secret"})
		_ = json.NewEncoder(w).Encode(jsonrpc.Response{JSONRPC: "2.0", Result: resultRaw, ID: json.RawMessage(`1`)})
	}))
	defer srv.Close()

	c := New(srv.URL)
	key, err := c.GetDecryptionKey(context.Background(), "key-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if key != "top-secret" {
		t.Errorf("got %q, want top-secret", key)
	}
}

func TestGetDecryptionKey_FailureWrapsDecryptionKeyUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(jsonrpc.Response{
			JSONRPC: "2.0",
			Error:   &jsonrpc.Error{Code: jsonrpc.CodeNotFound, Message: "unknown key"},
			ID:      json.RawMessage(`1`),
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetDecryptionKey(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, rollup.ErrDecryptionKeyUnavailable) {
		t.Errorf("got %v, want it to wrap ErrDecryptionKeyUnavailable", err)
	}
}
