package main

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/lumeranet/ledgerengine/core/types"
)

// nodeConfig is the on-disk shape loaded from --config, named and
// loaded the way the teacher's cmd/geth loads its gethConfig from a
// TOML file (config_test.go's loadConfig/gethConfig pair).
type nodeConfig struct {
	Self       string // hex-encoded 32-byte Ed25519 public key
	DataDir    string
	LedgerFile string

	Leader    leaderConfig
	Validator validatorConfig
}

type leaderConfig struct {
	ChunkSize      int
	QueueDepth     int
	TickIntervalMs int64
	TickEntryEvery uint64
}

type validatorConfig struct {
	WindowSize     int
	QueueDepth     int
	VerifyBlock    int
	VoteIntervalMs int64
}

func defaultNodeConfig() nodeConfig {
	return nodeConfig{
		DataDir:    "./ledgerdata",
		LedgerFile: "ledger.dat",
		Leader: leaderConfig{
			ChunkSize:      64,
			QueueDepth:     8,
			TickIntervalMs: 10,
			TickEntryEvery: 8,
		},
		Validator: validatorConfig{
			WindowSize:     1024,
			QueueDepth:     8,
			VerifyBlock:    16,
			VoteIntervalMs: 1000,
		},
	}
}

// loadConfig decodes path into cfg, starting from cfg's existing
// (default) values so a TOML file only needs to override what it
// changes, matching the teacher's own loadConfig.
func loadConfig(path string, cfg *nodeConfig) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("ledgernode: load config: %w", err)
	}
	return nil
}

// parseAccountId decodes a hex-encoded 32-byte Ed25519 public key.
func parseAccountId(s string) (types.AccountId, error) {
	var id types.AccountId
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("ledgernode: invalid account id %q: %w", s, err)
	}
	if len(b) != len(id) {
		return id, fmt.Errorf("ledgernode: account id %q must be %d bytes, got %d", s, len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

func (c leaderConfig) tickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

func (c validatorConfig) voteInterval() time.Duration {
	return time.Duration(c.VoteIntervalMs) * time.Millisecond
}
