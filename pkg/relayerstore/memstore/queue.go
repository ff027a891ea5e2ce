package memstore

import (
	"sync"

	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
)

var _ relayerstore.QueueStore[int] = (*QueueStore[int])(nil)

// QueueStore is a generic, in-memory FIFO queue store keyed by
// QueueKey.Name, guarded by a single mutex. It implements
// relayerstore.QueueStore[Item] for any Item type.
type QueueStore[Item any] struct {
	mu     sync.Mutex
	queues map[string][]Item
}

// NewQueueStore returns an empty generic in-memory queue store.
func NewQueueStore[Item any]() *QueueStore[Item] {
	return &QueueStore[Item]{queues: make(map[string][]Item)}
}

// EnqueueItem appends item to the tail of key's queue.
func (q *QueueStore[Item]) EnqueueItem(key proposals.QueueKey, item Item) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queues[key.Name] = append(q.queues[key.Name], item)
	return nil
}

// DequeueItem removes and returns the head item of key's queue, if any.
func (q *QueueStore[Item]) DequeueItem(key proposals.QueueKey) (Item, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero Item
	items := q.queues[key.Name]
	if len(items) == 0 {
		return zero, false, nil
	}
	head := items[0]
	q.queues[key.Name] = items[1:]
	return head, true, nil
}

// PeekItem returns the head item of key's queue without removing it.
func (q *QueueStore[Item]) PeekItem(key proposals.QueueKey) (Item, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero Item
	items := q.queues[key.Name]
	if len(items) == 0 {
		return zero, false, nil
	}
	return items[0], true, nil
}

// HasItem reports whether key's queue is non-empty.
func (q *QueueStore[Item]) HasItem(key proposals.QueueKey) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queues[key.Name]) > 0, nil
}

// RemoveItem removes and returns the head item of key's queue, if any.
// The relayer core never relies on removing anything but the head; this
// mirrors DequeueItem so callers get the same destructive contract either
// way.
func (q *QueueStore[Item]) RemoveItem(key proposals.QueueKey) (Item, bool, error) {
	return q.DequeueItem(key)
}
