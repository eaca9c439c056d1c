// Copyright 2025 Certen Protocol

package rpcmethods

import (
	"context"
	"encoding/json"

	"github.com/radiusxyz/sequencer/pkg/appstate"
)

// Handler implements one JSON-RPC method against the composed app state. The
// returned value is marshaled as the response's result; a non-nil error is
// translated to a wire error by ToRPCError.
type Handler func(ctx context.Context, app *appstate.AppState, params json.RawMessage) (any, error)
