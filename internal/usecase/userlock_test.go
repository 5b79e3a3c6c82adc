package usecase

import (
	"sync"
	"testing"
)

func TestUserLocks_SerializesSameUser(t *testing.T) {
	locks := NewUserLocks()

	counter := 0
	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.Lock("user-1")
			defer locks.Unlock("user-1")
			counter++
		}()
	}

	wg.Wait()

	if counter != 100 {
		t.Errorf("expected 100 increments, got %d", counter)
	}
}

func TestUserLocks_StableSharding(t *testing.T) {
	locks := NewUserLocks()

	for _, id := range []string{"", "user-1", "user-2", "a-much-longer-user-identity"} {
		if locks.shard(id) != locks.shard(id) {
			t.Errorf("shard for %q is not stable", id)
		}
		if locks.shard(id) >= lockShards {
			t.Errorf("shard for %q out of range", id)
		}
	}
}
