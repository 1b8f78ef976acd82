// Package rpcview documents the boundary between the core ledger and
// the JSON-RPC/faucet front-ends, which §1 and §5 name as external
// collaborators out of scope for this module ("referenced only via
// their interfaces"). LedgerView is that interface: the set of
// read/submit operations an external JSON-RPC server would dispatch
// to, named and shaped the way the teacher's internal/ethapi package
// names its PublicEthereumAPI methods, grounded on internal/ethapi for
// the "plain Go method per RPC call, no code-generated stubs" idiom.
//
// No HTTP or JSON-RPC transport lives in this package — that transport
// is the out-of-scope external process. Service is the in-process
// adapter a transport would be wired to.
package rpcview

import (
	"context"
	"errors"
	"time"

	"github.com/lumeranet/ledgerengine/core/executor"
	"github.com/lumeranet/ledgerengine/core/lastid"
	"github.com/lumeranet/ledgerengine/core/state"
	"github.com/lumeranet/ledgerengine/core/types"
	"github.com/lumeranet/ledgerengine/crypto"
	"github.com/lumeranet/ledgerengine/wire"
)

// ErrAccountNotFound is returned by GetAccountInfo/GetBalance for an
// unknown account id.
var ErrAccountNotFound = errors.New("rpcview: account not found")

// AccountInfo mirrors the fields a getAccountInfo response carries.
type AccountInfo struct {
	Owner      types.ProgramId
	Balance    int64
	StateBytes []byte
}

// Finality reports whether a tip is still within the LastIdRing's
// recent window, the Go shape of getFinality's "is this id still
// valid to build a transaction against" answer.
type Finality struct {
	Known     bool
	CreatedAt time.Time
}

// SignatureStatus is the getSignatureStatus / confirmTransaction
// response: whether the signature has been seen at all, and if so,
// its execution outcome.
type SignatureStatus struct {
	Found bool
	Err   error
}

// LedgerView is the read/submit surface named in §6's JSON-RPC list.
// Every method maps directly onto one core read operation or onto
// transaction submission, as the spec requires.
type LedgerView interface {
	GetAccountInfo(ctx context.Context, id types.AccountId) (AccountInfo, error)
	GetBalance(ctx context.Context, id types.AccountId) (int64, error)
	GetLastId(ctx context.Context) (crypto.Hash, error)
	GetTransactionCount(ctx context.Context) (int64, error)
	GetSignatureStatus(ctx context.Context, sig crypto.Signature) (SignatureStatus, error)
	GetFinality(ctx context.Context, tip crypto.Hash) (Finality, error)

	// SendTransaction submits a gob-encoded, already-signed
	// Transaction (the same bytes a client would send over the wire
	// transaction socket) for execution.
	SendTransaction(ctx context.Context, raw []byte) error
	// RequestAirdrop submits a faucet-signed mint Transaction through
	// the identical path as SendTransaction; it is named separately
	// only because the RPC surface names it separately (§6) — minting
	// logic and the faucet's keypair both live in the out-of-scope
	// external faucet process, not here.
	RequestAirdrop(ctx context.Context, raw []byte) error
	// ConfirmTransaction polls GetSignatureStatus once; the retry/
	// timeout loop described in §6 ("airdrop failure is detected by
	// polling the balance and timing out") is the caller's concern.
	ConfirmTransaction(ctx context.Context, sig crypto.Signature) (SignatureStatus, error)
}

var _ LedgerView = (*Service)(nil)

// Service implements LedgerView over a running node's shared state.
type Service struct {
	store *state.AccountStore
	ring  *lastid.Ring
	exec  *executor.Executor
	sink  wire.TransactionSink
}

// NewService returns a Service reading through store/ring/exec and
// submitting transactions through sink.
func NewService(store *state.AccountStore, ring *lastid.Ring, exec *executor.Executor, sink wire.TransactionSink) *Service {
	return &Service{store: store, ring: ring, exec: exec, sink: sink}
}

func (s *Service) GetAccountInfo(ctx context.Context, id types.AccountId) (AccountInfo, error) {
	a, ok := s.store.Get(id)
	if !ok {
		return AccountInfo{}, ErrAccountNotFound
	}
	return AccountInfo{Owner: a.OwnerProgramId, Balance: a.Balance, StateBytes: a.StateBytes}, nil
}

func (s *Service) GetBalance(ctx context.Context, id types.AccountId) (int64, error) {
	a, ok := s.store.Get(id)
	if !ok {
		return 0, ErrAccountNotFound
	}
	return a.Balance, nil
}

// GetLastId reports the chain's deterministic state-snapshot digest as
// the "last id" a client would build a new transaction against. A
// real deployment would instead surface the PoD recorder's live tip;
// this view only has read access to committed state, so it reports
// the most recently committed snapshot's hash.
func (s *Service) GetLastId(ctx context.Context) (crypto.Hash, error) {
	return s.store.SnapshotHash(), nil
}

func (s *Service) GetTransactionCount(ctx context.Context) (int64, error) {
	return s.exec.CommittedCount(), nil
}

func (s *Service) GetSignatureStatus(ctx context.Context, sig crypto.Signature) (SignatureStatus, error) {
	res, ok := s.ring.GetStatus(sig)
	if !ok {
		return SignatureStatus{}, nil
	}
	return SignatureStatus{Found: true, Err: res.Err}, nil
}

func (s *Service) GetFinality(ctx context.Context, tip crypto.Hash) (Finality, error) {
	if !s.ring.Has(tip) {
		return Finality{}, nil
	}
	valid := s.ring.CountValid([]crypto.Hash{tip})
	if len(valid) == 0 {
		return Finality{}, nil
	}
	return Finality{Known: true, CreatedAt: valid[0].CreatedAt}, nil
}

func (s *Service) SendTransaction(ctx context.Context, raw []byte) error {
	return s.sink.SubmitTransaction(ctx, &wire.Packet{Data: raw})
}

func (s *Service) RequestAirdrop(ctx context.Context, raw []byte) error {
	return s.SendTransaction(ctx, raw)
}

func (s *Service) ConfirmTransaction(ctx context.Context, sig crypto.Signature) (SignatureStatus, error) {
	return s.GetSignatureStatus(ctx, sig)
}
