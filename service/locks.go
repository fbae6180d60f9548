package service

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// RecordLocks hands out one mutex per owner so every operation that touches
// an owner's records — submit, reset, the engine's recompute, and the reveal
// callback's check-and-store — takes the same lock regardless of which
// service it entered through. The catalog makes individual blob operations
// atomic; multi-step record transitions need this shared lock so no
// half-applied state is ever visible to a concurrent caller.
//
// Locks are per owner: operations on different owners never contend.
type RecordLocks struct {
	mu    sync.Mutex
	locks map[common.Address]*sync.Mutex
}

// NewRecordLocks creates an empty lock registry. One instance is shared by
// all services over the same catalog.
func NewRecordLocks() *RecordLocks {
	return &RecordLocks{locks: make(map[common.Address]*sync.Mutex)}
}

// ForOwner returns the mutex serializing record mutations for owner,
// creating it on first use.
func (rl *RecordLocks) ForOwner(owner common.Address) *sync.Mutex {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	lock, exists := rl.locks[owner]
	if !exists {
		lock = &sync.Mutex{}
		rl.locks[owner] = lock
	}
	return lock
}
