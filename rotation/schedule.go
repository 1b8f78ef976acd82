// Package rotation implements the LeaderSchedule and the rotation hook
// both pipelines observe to hand over role at a scheduled chain
// height (§4.6/§4.7).
package rotation

import (
	"sort"
	"sync"

	"github.com/lumeranet/ledgerengine/core/types"
)

// Schedule is a sparse mapping of chain-height to leader AccountId,
// queried with greatest-key-less-than-or-equal-to-height semantics.
type Schedule struct {
	mu      sync.RWMutex
	heights []uint64
	leaders map[uint64]types.AccountId
}

// NewSchedule returns an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{leaders: make(map[uint64]types.AccountId)}
}

// Set assigns leadership starting at height, replacing any existing
// assignment at that exact height.
func (s *Schedule) Set(height uint64, leader types.AccountId) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.leaders[height]; !exists {
		s.heights = append(s.heights, height)
		sort.Slice(s.heights, func(i, j int) bool { return s.heights[i] < s.heights[j] })
	}
	s.leaders[height] = leader
}

// LeaderAt returns the leader assigned at the greatest scheduled
// height ≤ h, or ok=false if no leader has been scheduled at or before
// h — the "unscheduled" case resolved as "remain validator" (§9).
func (s *Schedule) LeaderAt(h uint64) (types.AccountId, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := sort.Search(len(s.heights), func(i int) bool { return s.heights[i] > h })
	if idx == 0 {
		return types.AccountId{}, false
	}
	height := s.heights[idx-1]
	return s.leaders[height], true
}

// NextBoundaryAfter returns the smallest scheduled height strictly
// greater than h, used by the leader and validator pipelines' Run to
// find the rotation height that ends their current term.
func (s *Schedule) NextBoundaryAfter(h uint64) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := sort.Search(len(s.heights), func(i int) bool { return s.heights[i] > h })
	if idx == len(s.heights) {
		return 0, false
	}
	return s.heights[idx], true
}
