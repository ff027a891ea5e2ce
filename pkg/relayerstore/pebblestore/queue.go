package pebblestore

import (
	"encoding/binary"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/webb-tools/relayer-core/pkg/proposals"
	"github.com/webb-tools/relayer-core/pkg/relayerstore"
)

// Codec serializes and deserializes queue items for on-disk storage. A
// queue store needs one because pebble only ever stores bytes.
type Codec[Item any] interface {
	Encode(item Item) ([]byte, error)
	Decode(data []byte) (Item, error)
}

// QueueStore is a generic, pebble-backed FIFO queue store. Each named
// queue is a contiguous range of sequence numbers between a head and tail
// counter; dequeuing advances head, enqueuing advances tail. A mutex
// serializes head/tail updates, since pebble has no native compare-and-swap.
type QueueStore[Item any] struct {
	mu    sync.Mutex
	db    *pebble.DB
	codec Codec[Item]
}

// NewQueueStore returns a queue store backed by db, using codec to
// serialize items.
func NewQueueStore[Item any](db *pebble.DB, codec Codec[Item]) *QueueStore[Item] {
	return &QueueStore[Item]{db: db, codec: codec}
}

func headKey(name string) []byte { return append([]byte(prefixQueueHead), []byte(name)...) }
func tailKey(name string) []byte { return append([]byte(prefixQueueTail), []byte(name)...) }

func itemKey(name string, seq uint64) []byte {
	k := append([]byte(prefixQueueItem), []byte(name)...)
	k = append(k, '/')
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, seq)
	return append(k, buf...)
}

func (q *QueueStore[Item]) getCounter(key []byte) (uint64, error) {
	v, closer, err := q.db.Get(key)
	if err == pebble.ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	defer closer.Close()
	return binary.BigEndian.Uint64(v), nil
}

func (q *QueueStore[Item]) setCounter(batch *pebble.Batch, key []byte, value uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)
	return batch.Set(key, buf, nil)
}

// EnqueueItem implements relayerstore.QueueStore.
func (q *QueueStore[Item]) EnqueueItem(key proposals.QueueKey, item Item) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	tail, err := q.getCounter(tailKey(key.Name))
	if err != nil {
		return err
	}
	data, err := q.codec.Encode(item)
	if err != nil {
		return err
	}

	batch := q.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(itemKey(key.Name, tail), data, nil); err != nil {
		return err
	}
	if err := q.setCounter(batch, tailKey(key.Name), tail+1); err != nil {
		return err
	}
	return batch.Commit(pebble.Sync)
}

func (q *QueueStore[Item]) headTail(name string) (uint64, uint64, error) {
	head, err := q.getCounter(headKey(name))
	if err != nil {
		return 0, 0, err
	}
	tail, err := q.getCounter(tailKey(name))
	if err != nil {
		return 0, 0, err
	}
	return head, tail, nil
}

// DequeueItem implements relayerstore.QueueStore. It is destructive: the
// item is removed from the underlying database before it is returned.
func (q *QueueStore[Item]) DequeueItem(key proposals.QueueKey) (Item, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero Item

	head, tail, err := q.headTail(key.Name)
	if err != nil {
		return zero, false, err
	}
	if head >= tail {
		return zero, false, nil
	}

	ik := itemKey(key.Name, head)
	data, closer, err := q.db.Get(ik)
	if err != nil {
		return zero, false, err
	}
	item, decErr := q.codec.Decode(data)
	if cerr := closer.Close(); cerr != nil {
		return zero, false, cerr
	}
	if decErr != nil {
		return zero, false, decErr
	}

	batch := q.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(ik, nil); err != nil {
		return zero, false, err
	}
	if err := q.setCounter(batch, headKey(key.Name), head+1); err != nil {
		return zero, false, err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return zero, false, err
	}
	return item, true, nil
}

// PeekItem implements relayerstore.QueueStore without removing the head
// item.
func (q *QueueStore[Item]) PeekItem(key proposals.QueueKey) (Item, bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero Item

	head, tail, err := q.headTail(key.Name)
	if err != nil {
		return zero, false, err
	}
	if head >= tail {
		return zero, false, nil
	}

	data, closer, err := q.db.Get(itemKey(key.Name, head))
	if err != nil {
		return zero, false, err
	}
	item, decErr := q.codec.Decode(data)
	if cerr := closer.Close(); cerr != nil {
		return zero, false, cerr
	}
	if decErr != nil {
		return zero, false, decErr
	}
	return item, true, nil
}

// HasItem implements relayerstore.QueueStore.
func (q *QueueStore[Item]) HasItem(key proposals.QueueKey) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	head, tail, err := q.headTail(key.Name)
	if err != nil {
		return false, err
	}
	return head < tail, nil
}

// RemoveItem implements relayerstore.QueueStore by removing the head item,
// the only position the relayer core ever removes from.
func (q *QueueStore[Item]) RemoveItem(key proposals.QueueKey) (Item, bool, error) {
	return q.DequeueItem(key)
}

var _ relayerstore.QueueStore[int] = (*QueueStore[int])(nil)
