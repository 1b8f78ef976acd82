package node

import (
	"github.com/lumeranet/ledgerengine/core/program"
	"github.com/lumeranet/ledgerengine/core/program/budget"
	"github.com/lumeranet/ledgerengine/core/program/storage"
	"github.com/lumeranet/ledgerengine/core/program/system"
	"github.com/lumeranet/ledgerengine/core/program/tictactoe"
)

// registerBuiltins installs the fixed set of built-in programs every
// node runs regardless of configuration (§4.4): System is required for
// account creation/transfer/assign, the rest are the reference
// programs the original ships alongside it.
func registerBuiltins(r *program.Registry) {
	r.Register(system.ID, system.Program{})
	r.Register(budget.ID, budget.Program{})
	r.Register(storage.ID, storage.Program{})
	r.Register(tictactoe.ID, tictactoe.Program{})
	r.Register(tictactoe.DashboardID, tictactoe.DashboardProgram{})
}
