// Copyright 2025 Certen Protocol
//
// Client Construction Tests

package liveness

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/radiusxyz/sequencer/pkg/rollup"
)

const minimalABI = `[{"type":"function","name":"getSequencerList","inputs":[],"outputs":[]}]`

func TestNew_RejectsMalformedABI(t *testing.T) {
	_, err := New("http://127.0.0.1:1", common.Address{}, `not json`, rollup.PlatformEthereum, rollup.ServiceProviderEigenLayer)
	if err == nil {
		t.Error("expected error for malformed contract ABI, got nil")
	}
}

func TestNew_ExposesPlatformAndServiceProvider(t *testing.T) {
	c, err := New("http://127.0.0.1:1", common.Address{}, minimalABI, rollup.PlatformEthereum, rollup.ServiceProviderSymbiotic)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.Platform() != rollup.PlatformEthereum {
		t.Errorf("got platform %v, want ethereum", c.Platform())
	}
	if c.ServiceProvider() != rollup.ServiceProviderSymbiotic {
		t.Errorf("got service provider %v, want symbiotic", c.ServiceProvider())
	}
}
