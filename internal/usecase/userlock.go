package usecase

import (
	"hash/fnv"
	"sync"
)

// UserLocks serializes mutating operations per user identity with a sharded
// mutex table. Unrelated users proceed in parallel (modulo shard
// collisions); the whole ledger is never locked at once. Settlement acquires
// each affected user's shard independently, one position at a time.
type UserLocks struct {
	shards [lockShards]sync.Mutex
}

// NewUserLocks creates a new sharded lock table.
func NewUserLocks() *UserLocks {
	return &UserLocks{}
}

// Lock acquires the critical section for a user id.
func (l *UserLocks) Lock(userID string) {
	l.shards[l.shard(userID)].Lock()
}

// Unlock releases the critical section for a user id.
func (l *UserLocks) Unlock(userID string) {
	l.shards[l.shard(userID)].Unlock()
}

func (l *UserLocks) shard(userID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return h.Sum32() % lockShards
}
