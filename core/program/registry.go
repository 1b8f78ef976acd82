package program

import (
	"sync"

	"github.com/lumeranet/ledgerengine/core/types"
)

// Registry is the process-wide program-id → Program dispatch table.
// Read-mostly; writes only happen during dynamic loading (§5).
type Registry struct {
	mu       sync.RWMutex
	programs map[types.ProgramId]Program
}

// NewRegistry returns a registry with no programs installed.
func NewRegistry() *Registry {
	return &Registry{programs: make(map[types.ProgramId]Program)}
}

// Register installs p under id, overwriting any previous registration
// — used both for the fixed built-ins at startup and for dynamically
// loaded programs at runtime.
func (r *Registry) Register(id types.ProgramId, p Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.programs[id] = p
}

// Lookup returns the program registered under id, if any.
func (r *Registry) Lookup(id types.ProgramId) (Program, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.programs[id]
	return p, ok
}
