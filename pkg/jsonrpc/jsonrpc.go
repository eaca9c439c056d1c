// Copyright 2025 Certen Protocol
//
// JSON-RPC 2.0 wire types shared by the RPC client (pkg/rpcclient) and
// server (pkg/rpcserver, pkg/rpcmethods). spec.md lists "the RPC transport
// framing" as an out-of-scope external collaborator — the pack's only
// candidate transport library, github.com/AccumulateNetwork/jsonrpc2/v15,
// is pulled into the teacher's go.mod purely transitively and is never
// imported by any file in the retrieved pack, so its real exported API
// could not be grounded on anything readable in the corpus. Framing is
// implemented directly over net/http + encoding/json instead (see
// DESIGN.md); every other ambient concern still follows the teacher's
// idiom.

package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Request is a JSON-RPC 2.0 request object.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// Response is a JSON-RPC 2.0 response object.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Domain-error code range, above the standard reserved block, shared by
// every server so clients see consistent codes regardless of endpoint.
const (
	CodeNotFound                    = -32001
	CodeDeserialize                 = -32002
	CodeUnsupportedEncryptedMempool = -32003
	CodeEmptyLeaderRPCURL           = -32004
	CodeEmptySequencerList          = -32005
	CodeNotFoundExecutorAddress     = -32006
	CodeDatabase                    = -32007
	CodeNetwork                     = -32008
	CodeSignature                   = -32009
	CodeDecryptionKeyUnavailable    = -32010
	CodeUnimplemented               = -32011
)
