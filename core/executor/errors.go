// Package executor implements the TransactionExecutor (§4.3): the
// single-transaction pipeline of load, reserve, dispatch, and
// post-check steps, and its closed set of error kinds (§7).
package executor

// Error is the executor's closed set of per-transaction failure
// kinds, grounded in the teacher's core/txpool sentinel-error style
// (e.g. ErrNonceTooLow): a string-backed type whose values compare
// equal across packages and satisfy errors.Is without wrapping.
type Error string

func (e Error) Error() string { return string(e) }

// The closed set of executor error kinds (§7). SignatureNotFound is
// query-only: the executor itself never returns it, LastIdRing.GetStatus
// callers do.
const (
	ErrAccountNotFound           Error = "account not found"
	ErrInsufficientFundsForFee   Error = "insufficient funds for fee"
	ErrDuplicateSignature        Error = "duplicate signature"
	ErrLastIdNotFound            Error = "last id not found"
	ErrSignatureNotFound         Error = "signature not found"
	ErrLedgerVerificationFailed  Error = "ledger verification failed"
	ErrUnbalancedTransaction     Error = "unbalanced transaction"
	ErrResultWithNegativeTokens  Error = "result with negative tokens"
	ErrUnknownContractId         Error = "unknown contract id"
	ErrModifiedContractId        Error = "modified contract id"
	ErrExternalAccountTokenSpend Error = "external account token spend"
	ErrProgramRuntimeError       Error = "program runtime error"
)
