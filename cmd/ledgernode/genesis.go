package main

import (
	"fmt"
	"os"

	"github.com/lumeranet/ledgerengine/core/lastid"
	"github.com/lumeranet/ledgerengine/core/pod"
	"github.com/lumeranet/ledgerengine/core/program/system"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
	"github.com/lumeranet/ledgerengine/ledgerstore"
)

// writeGenesis appends the distinguished Tick/mint pair ledgerstore's
// ValidateGenesis expects to an empty ledger file: a Tick seeding the
// chain at the zero hash, then a single System Transfer moving the
// entire treasury balance to dest, grounded on the same genesis shape
// ledgerstore's own tests construct (mintGenesisTx/writeGenesisLedger).
func writeGenesis(f *os.File, mint, dest types.AccountId, balance int64) error {
	genesisTip := crypto.Hash{}
	ring := lastid.NewRing()
	recorder := pod.NewRecorder(genesisTip, ring)

	store := ledgerstore.New(f)
	tick := types.Entry{Id: genesisTip}
	if err := store.Append(&tick); err != nil {
		return fmt.Errorf("ledgernode: write genesis tick: %w", err)
	}

	data, err := system.Instruction{Kind: system.KindTransfer, Tokens: balance}.Encode()
	if err != nil {
		return fmt.Errorf("ledgernode: encode genesis mint instruction: %w", err)
	}
	mintTx := types.Transaction{ProgramId: system.ID, KeyList: []types.AccountId{mint, dest}, LastId: genesisTip, Userdata: data}
	mintTx.Signature[0] = 0x01 // genesis mint needs only a unique, not a verified, signature

	mintEntry := recorder.RecordBatch([]types.Transaction{mintTx})
	if err := store.Append(&mintEntry); err != nil {
		return fmt.Errorf("ledgernode: write genesis mint entry: %w", err)
	}
	return nil
}
