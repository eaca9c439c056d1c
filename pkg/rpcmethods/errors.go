// Copyright 2025 Certen Protocol

package rpcmethods

import (
	"errors"

	"github.com/radiusxyz/sequencer/pkg/jsonrpc"
	"github.com/radiusxyz/sequencer/pkg/rollup"
)

// ToRPCError maps a sequencer sentinel error to a JSON-RPC error object.
// Unrecognized errors become a generic internal error — never leak internal
// messages the caller can't act on beyond Error() text, which domain errors
// already keep terse.
func ToRPCError(err error) *jsonrpc.Error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, rollup.ErrNotFound):
		return &jsonrpc.Error{Code: jsonrpc.CodeNotFound, Message: err.Error()}
	case errors.Is(err, rollup.ErrDeserialize):
		return &jsonrpc.Error{Code: jsonrpc.CodeDeserialize, Message: err.Error()}
	case errors.Is(err, rollup.ErrUnsupportedEncryptedMempool):
		return &jsonrpc.Error{Code: jsonrpc.CodeUnsupportedEncryptedMempool, Message: err.Error()}
	case errors.Is(err, rollup.ErrEmptyLeaderRPCURL):
		return &jsonrpc.Error{Code: jsonrpc.CodeEmptyLeaderRPCURL, Message: err.Error()}
	case errors.Is(err, rollup.ErrEmptySequencerList):
		return &jsonrpc.Error{Code: jsonrpc.CodeEmptySequencerList, Message: err.Error()}
	case errors.Is(err, rollup.ErrNotFoundExecutorAddress):
		return &jsonrpc.Error{Code: jsonrpc.CodeNotFoundExecutorAddress, Message: err.Error()}
	case errors.Is(err, rollup.ErrDatabase):
		return &jsonrpc.Error{Code: jsonrpc.CodeDatabase, Message: err.Error()}
	case errors.Is(err, rollup.ErrNetwork):
		return &jsonrpc.Error{Code: jsonrpc.CodeNetwork, Message: err.Error()}
	case errors.Is(err, rollup.ErrSignature):
		return &jsonrpc.Error{Code: jsonrpc.CodeSignature, Message: err.Error()}
	case errors.Is(err, rollup.ErrDecryptionKeyUnavailable):
		return &jsonrpc.Error{Code: jsonrpc.CodeDecryptionKeyUnavailable, Message: err.Error()}
	case errors.Is(err, rollup.ErrUnimplemented):
		return &jsonrpc.Error{Code: jsonrpc.CodeUnimplemented, Message: err.Error()}
	default:
		return &jsonrpc.Error{Code: jsonrpc.CodeInternalError, Message: err.Error()}
	}
}
