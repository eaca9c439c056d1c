// Copyright 2025 Certen Protocol
//
// AppState is the composition root wiring every package together, grounded
// on the teacher's main.go start-up sequence (open store, build clients,
// wire handlers, start servers) but reorganized into a struct so the three
// RPC servers and the reconciler supervisors can share one set of handles
// without back-references. Per spec.md §9's "avoid mutual strong
// references" design note: subscriber goroutines are handed the concrete
// sub-handles (store, signer cache, fanout, ...) they need directly, never
// a pointer back to AppState itself.

package appstate

import (
	"context"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/radiusxyz/sequencer/pkg/blockbuilder"
	"github.com/radiusxyz/sequencer/pkg/config"
	"github.com/radiusxyz/sequencer/pkg/dkgclient"
	"github.com/radiusxyz/sequencer/pkg/liveness"
	"github.com/radiusxyz/sequencer/pkg/logging"
	"github.com/radiusxyz/sequencer/pkg/ordering"
	"github.com/radiusxyz/sequencer/pkg/pvde"
	"github.com/radiusxyz/sequencer/pkg/reconciler"
	"github.com/radiusxyz/sequencer/pkg/registrar"
	"github.com/radiusxyz/sequencer/pkg/registrar/eigenlayer"
	"github.com/radiusxyz/sequencer/pkg/registrar/symbiotic"
	"github.com/radiusxyz/sequencer/pkg/replication"
	"github.com/radiusxyz/sequencer/pkg/rollup"
	"github.com/radiusxyz/sequencer/pkg/rpcclient"
	"github.com/radiusxyz/sequencer/pkg/seeder"
	"github.com/radiusxyz/sequencer/pkg/signer"
	"github.com/radiusxyz/sequencer/pkg/store"
)

// AppState wires together every long-lived handle one running node needs.
type AppState struct {
	Config *config.Config

	DB         *store.DB
	Signers    *signer.Cache
	Seeder     *seeder.Client
	DKGClient  *dkgclient.Client
	PVDE       *pvde.Decryptor
	Registrars *registrar.Registry
	RPCClient  *rpcclient.Client
	Fanout     *replication.Fanout

	Ordering     *ordering.Pipeline
	BlockBuilder *blockbuilder.Builder
	Reconciler   *reconciler.Reconciler

	mu              sync.Mutex
	rootCtx         context.Context
	livenessClients []*liveness.Client
}

// New builds every subsystem from cfg. Network dials (liveness contracts,
// registrar contracts) happen here — a failure to reach any configured
// endpoint fails the whole start-up, matching the teacher's main.go
// fail-fast posture.
func New(cfg *config.Config) (*AppState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Raise the open-file limit to its hard ceiling.
	var rl syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rl); err == nil {
		rl.Cur = rl.Max
		_ = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rl)
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("appstate: %w", err)
	}

	signers := signer.NewCache(map[rollup.Platform]string{
		rollup.PlatformEthereum: cfg.SigningKey,
	})

	rpcClient := rpcclient.New(5 * time.Second)
	fanout := replication.NewFanout(rpcClient)
	seederClient := seeder.New(cfg.SeederRPCURL)
	dkgClient := dkgclient.New(cfg.DistributedKeyGenerationRPCURL)
	pvdeDecryptor := pvde.New()

	eigenLayerReg, err := buildEigenLayerRegistrar(cfg.EigenLayer, cfg.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("appstate: eigenlayer registrar: %w", err)
	}
	symbioticReg, err := buildSymbioticRegistrar(cfg.Symbiotic, cfg.SigningKey)
	if err != nil {
		return nil, fmt.Errorf("appstate: symbiotic registrar: %w", err)
	}
	registrars := registrar.NewRegistry(eigenLayerReg, symbioticReg)

	livenessClients := make([]*liveness.Client, 0, len(cfg.LivenessContracts))
	for _, lc := range cfg.LivenessContracts {
		abiJSON, err := os.ReadFile(lc.ContractABIPath)
		if err != nil {
			return nil, fmt.Errorf("appstate: read liveness abi %s: %w", lc.ContractABIPath, err)
		}
		client, err := liveness.New(lc.RPCURL, common.HexToAddress(lc.ContractAddress), string(abiJSON), rollup.Platform(lc.Platform), rollup.ServiceProvider(lc.ServiceProvider))
		if err != nil {
			return nil, fmt.Errorf("appstate: liveness client %s/%s: %w", lc.Platform, lc.ServiceProvider, err)
		}
		livenessClients = append(livenessClients, client)
	}

	return &AppState{
		Config:          cfg,
		DB:              db,
		Signers:         signers,
		Seeder:          seederClient,
		DKGClient:       dkgClient,
		PVDE:            pvdeDecryptor,
		Registrars:      registrars,
		RPCClient:       rpcClient,
		Fanout:          fanout,
		Ordering:        ordering.New(db, signers, fanout, rpcClient),
		BlockBuilder:    blockbuilder.New(db, signers, dkgClient, pvdeDecryptor, registrars, rpcClient),
		Reconciler:      reconciler.New(db, seederClient),
		livenessClients: livenessClients,
	}, nil
}

func buildEigenLayerRegistrar(cfg config.RegistrarConfig, signingKeyHex string) (registrar.Registrar, error) {
	if cfg.ContractAddress == "" {
		return registrar.Local{}, nil
	}
	abiJSON, err := os.ReadFile(cfg.ContractABIPath)
	if err != nil {
		return nil, fmt.Errorf("read abi %s: %w", cfg.ContractABIPath, err)
	}
	return eigenlayer.New(cfg.RPCURL, cfg.ChainID, common.HexToAddress(cfg.ContractAddress), string(abiJSON), signingKeyHex, cfg.GasLimit)
}

func buildSymbioticRegistrar(cfg config.RegistrarConfig, signingKeyHex string) (registrar.Registrar, error) {
	if cfg.ContractAddress == "" {
		return registrar.Local{}, nil
	}
	abiJSON, err := os.ReadFile(cfg.ContractABIPath)
	if err != nil {
		return nil, fmt.Errorf("read abi %s: %w", cfg.ContractABIPath, err)
	}
	return symbiotic.New(cfg.RPCURL, cfg.ChainID, common.HexToAddress(cfg.ContractAddress), string(abiJSON), signingKeyHex, cfg.GasLimit)
}

// StartReconcilers launches one supervised reconciliation loop per
// configured liveness contract. Each goroutine is handed its own
// *liveness.Client and this node's address directly — no reference back to
// AppState crosses the goroutine boundary. ctx is retained as the root
// context for reconcilers started later by AddLivenessClient.
func (a *AppState) StartReconcilers(ctx context.Context) {
	a.mu.Lock()
	a.rootCtx = ctx
	clients := append([]*liveness.Client(nil), a.livenessClients...)
	a.mu.Unlock()

	for _, client := range clients {
		a.spawnReconciler(client)
	}
}

// AddLivenessClient registers a liveness client discovered after start-up
// (add_sequencing_info) and spawns its supervised reconciliation loop
// immediately, under the root context handed to StartReconcilers.
func (a *AppState) AddLivenessClient(client *liveness.Client) {
	a.mu.Lock()
	a.livenessClients = append(a.livenessClients, client)
	a.mu.Unlock()
	a.spawnReconciler(client)
}

func (a *AppState) spawnReconciler(client *liveness.Client) {
	s, err := a.Signers.Get(client.Platform())
	if err != nil {
		logging.New("appstate").Printf("no signer for liveness client %s/%s, skipping reconciler: %v", client.Platform(), client.ServiceProvider(), err)
		return
	}
	a.mu.Lock()
	ctx := a.rootCtx
	a.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	go a.Reconciler.Supervise(ctx, client, s.Address())
}

// Close releases every subsystem handle that owns an OS resource.
func (a *AppState) Close() error {
	return a.DB.Close()
}
