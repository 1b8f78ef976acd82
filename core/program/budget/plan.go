// Package budget implements the BudgetPlan program: a small
// conditional-payment state machine grounded in
// original_source/src/payment_plan.rs and fin_plan_instruction.rs
// ("fin_plan" in the original vocabulary), §4.4.
package budget

import (
	"time"

	"github.com/lumeranet/ledgerengine/core/types"
)

// WitnessKind tags a Witness.
type WitnessKind byte

const (
	WitnessTimestamp WitnessKind = iota
	WitnessSignature
)

// Witness is the observation that can satisfy a Condition: either a
// timestamp or a signature, attested by Account — the signer of the
// Apply* transaction that carries this witness (its identity is
// established by the executor, not by this package, since signature
// cryptography is out of scope here).
type Witness struct {
	Kind    WitnessKind
	At      time.Time
	Account types.AccountId
}

// Payment describes a token transfer to an account.
type Payment struct {
	Tokens int64
	To     types.AccountId
}

// ConditionKind tags a Condition.
type ConditionKind byte

const (
	ConditionTimestamp ConditionKind = iota
	ConditionSignature
)

// Condition names the witness account and, for a timestamp condition,
// the earliest time at which it is considered observed.
type Condition struct {
	Kind    ConditionKind
	At      time.Time
	Witness types.AccountId
}

// Satisfied reports whether w satisfies c: the witness kind must
// match, and the attesting account must be the one named by c.
func (c Condition) Satisfied(w Witness) bool {
	if w.Account != c.Witness {
		return false
	}
	switch c.Kind {
	case ConditionTimestamp:
		return w.Kind == WitnessTimestamp && !w.At.Before(c.At)
	case ConditionSignature:
		return w.Kind == WitnessSignature
	default:
		return false
	}
}

// PlanKind tags a Plan.
type PlanKind byte

const (
	PlanPay PlanKind = iota
	PlanAfter
	PlanOr
)

// Branch pairs a Condition with the Payment it releases once satisfied.
type Branch struct {
	Condition Condition
	Payment   Payment
}

// Plan is the BudgetPlan's tagged-union payment schedule:
//
//	Pay(payment)                 — disburses unconditionally.
//	After(condition, payment)    — disburses once condition is observed.
//	Or(branchA, branchB)         — disburses the first branch whose
//	                                condition is observed; the original's
//	                                "cancelable transfer" shape.
type Plan struct {
	Kind PlanKind
	Pay  Payment
	A    Branch
	B    Branch
}

// Verify is the direct port of FinPlanTransaction::verify_plan's
// branch-sum check: every reachable branch of the plan must disburse
// exactly `want` tokens (invariant 3 in the testable-properties list).
func (p Plan) Verify(want int64) bool {
	switch p.Kind {
	case PlanPay:
		return p.Pay.Tokens == want
	case PlanAfter:
		return p.A.Payment.Tokens == want
	case PlanOr:
		return p.A.Payment.Tokens == want && p.B.Payment.Tokens == want
	default:
		return false
	}
}

// Contract is the on-chain state the BudgetPlan program stores in an
// account's StateBytes: the declared token amount plus the plan
// governing its release.
type Contract struct {
	Tokens int64
	Plan   Plan
}
