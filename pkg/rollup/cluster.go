// Copyright 2025 Certen Protocol

package rollup

import "fmt"

// Cluster is a snapshot of the sequencer set for one rollup cluster at one
// platform block height, as published by the reconciler. Keyed externally
// by (platform, service_provider, cluster_id, platform_block_height).
type Cluster struct {
	Platform            Platform        `json:"platform"`
	ServiceProvider     ServiceProvider `json:"service_provider"`
	ClusterID           string          `json:"cluster_id"`
	PlatformBlockHeight uint64          `json:"platform_block_height"`

	// SequencerRPCURLList is ordered; a nil entry means the sequencer at
	// that index is registered on-chain but has no resolvable RPC URL.
	SequencerRPCURLList []*string `json:"sequencer_rpc_url_list"`
	RollupIDList        []string  `json:"rollup_id_list"`
	// MyIndex is this node's position in SequencerRPCURLList. Invariant:
	// MyIndex < len(SequencerRPCURLList).
	MyIndex     int    `json:"my_index"`
	BlockMargin uint64 `json:"block_margin"`
}

// LeaderIndex returns the cluster index that leads the given rollup block
// height. Fixed as height mod N (not N mod height) per the resolved design
// question — matches the is_leader helper used throughout.
func (c *Cluster) LeaderIndex(rollupBlockHeight uint64) (int, error) {
	n := len(c.SequencerRPCURLList)
	if n == 0 {
		return 0, fmt.Errorf("cluster %s: %w", c.ClusterID, ErrEmptySequencerList)
	}
	return int(rollupBlockHeight % uint64(n)), nil
}

// IsLeader reports whether this node leads the given rollup block height.
func (c *Cluster) IsLeader(rollupBlockHeight uint64) bool {
	idx, err := c.LeaderIndex(rollupBlockHeight)
	if err != nil {
		return false
	}
	return idx == c.MyIndex
}

// LeaderRPCURL returns the external RPC URL of the leader for the given
// height, or ErrEmptyLeaderRPCURL if the cluster snapshot has no reachable
// URL on record for that index.
func (c *Cluster) LeaderRPCURL(rollupBlockHeight uint64) (string, error) {
	idx, err := c.LeaderIndex(rollupBlockHeight)
	if err != nil {
		return "", err
	}
	url := c.SequencerRPCURLList[idx]
	if url == nil || *url == "" {
		return "", fmt.Errorf("cluster %s height %d: %w", c.ClusterID, rollupBlockHeight, ErrEmptyLeaderRPCURL)
	}
	return *url, nil
}

// OthersRPCURLList returns every reachable peer URL other than this node's
// own, the fan-out target set used by replication.
func (c *Cluster) OthersRPCURLList() []string {
	out := make([]string, 0, len(c.SequencerRPCURLList))
	for i, url := range c.SequencerRPCURLList {
		if i == c.MyIndex || url == nil || *url == "" {
			continue
		}
		out = append(out, *url)
	}
	return out
}
