// Copyright 2025 Certen Protocol

package rollup

import "errors"

// Sentinel error kinds. Handlers map these to RPC error objects; background
// tasks log and continue. Wrap with fmt.Errorf("...: %w", ErrX) to attach
// context while staying errors.Is-distinguishable.
var (
	ErrNotFound                    = errors.New("not found")
	ErrDeserialize                 = errors.New("deserialize")
	ErrUnsupportedEncryptedMempool = errors.New("unsupported encrypted mempool")
	ErrEmptyLeaderRPCURL           = errors.New("empty leader rpc url")
	ErrEmptySequencerList          = errors.New("empty sequencer list")
	ErrNotFoundExecutorAddress     = errors.New("not found executor address")
	ErrDatabase                    = errors.New("database")
	ErrNetwork                     = errors.New("network")
	ErrSignature                   = errors.New("signature")
	ErrDecryptionKeyUnavailable    = errors.New("decryption key unavailable")
	ErrUnimplemented               = errors.New("unimplemented")
)
