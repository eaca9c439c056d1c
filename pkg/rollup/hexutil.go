// Copyright 2025 Certen Protocol

package rollup

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash32 is a 32-byte digest (order hash, raw-transaction hash, block
// commitment). It marshals to JSON as a 0x-prefixed hex string.
type Hash32 [32]byte

// ZeroHash32 is the all-zero digest used as the genesis order hash and the
// empty-block commitment.
var ZeroHash32 Hash32

func (h Hash32) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h Hash32) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, h[:])
	return out
}

func (h Hash32) MarshalJSON() ([]byte, error) {
	return json.Marshal(h.String())
}

func (h *Hash32) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := Hash32FromHex(s)
	if err != nil {
		return err
	}
	*h = decoded
	return nil
}

// Hash32FromHex parses a 0x-prefixed (or bare) hex string into a Hash32.
func Hash32FromHex(s string) (Hash32, error) {
	var h Hash32
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("hash32: %w", err)
	}
	if len(b) != 32 {
		return h, fmt.Errorf("hash32: expected 32 bytes, got %d", len(b))
	}
	copy(h[:], b)
	return h, nil
}

// HexBytes marshals as a 0x-prefixed hex string regardless of length, used
// for signatures and other variable-length binary fields.
type HexBytes []byte

func (b HexBytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (b HexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("hexbytes: %w", err)
	}
	*b = decoded
	return nil
}
