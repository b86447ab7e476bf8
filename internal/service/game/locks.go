package game

import "sync"

// lockTable hands out one mutex per conversation id. Entries are tiny and
// never pruned.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

// get returns the mutex for a conversation, creating it on first use
func (t *lockTable) get(conversationID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()

	lock, ok := t.locks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		t.locks[conversationID] = lock
	}
	return lock
}
