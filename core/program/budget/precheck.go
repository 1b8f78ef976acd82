package budget

import "github.com/lumeranet/ledgerengine/core/types"

// PreCheck runs the BudgetPlan-local validation the LeaderPipeline's
// Execute stage applies before a transaction ever touches the
// executor (§4.6 step 3): a NewContract whose declared fee/plan
// cannot possibly verify is dropped up front rather than paying for a
// full dispatch. Transactions for other programs, or BudgetPlan
// instructions this check has no opinion about, pass through.
func PreCheck(tx *types.Transaction) bool {
	if tx.ProgramId != ID {
		return true
	}
	instr, err := decodeInstruction(tx.Userdata)
	if err != nil {
		return false
	}
	if instr.Kind != KindNewContract {
		return true
	}
	if instr.Fee != tx.Fee {
		return false
	}
	if instr.Fee < 0 || instr.Fee > instr.NewContract.Tokens {
		return false
	}
	return instr.NewContract.Plan.Verify(instr.NewContract.Tokens - instr.Fee)
}
