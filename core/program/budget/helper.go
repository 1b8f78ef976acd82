package budget

import "github.com/lumeranet/ledgerengine/core/types"

// NewTaxedTransfer builds a NewContract instruction that pays
// tokens-fee to recipient unconditionally, the Go equivalent of the
// original's fin_plan_new_taxed test helper (§8, "Supplemented from
// original_source"): it lets scenario tests construct a realistic
// taxed transfer without hand-building userdata.
func NewTaxedTransfer(recipient types.AccountId, tokens, fee int64) Instruction {
	return Instruction{
		Kind: KindNewContract,
		NewContract: Contract{
			Tokens: tokens,
			Plan:   Plan{Kind: PlanPay, Pay: Payment{Tokens: tokens - fee, To: recipient}},
		},
		Fee: fee,
	}
}
