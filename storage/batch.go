package storage

import (
	"context"
	"fmt"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/hypersdk/state"
)

var _ state.Mutable = (*Batch)(nil)

type pendingWrite struct {
	value   []byte
	removed bool
}

// Batch buffers the writes of one operation over a parent state. Reads see
// the buffered writes. Nothing reaches the parent until Commit, so an
// operation that fails part way leaves the parent untouched.
type Batch struct {
	parent state.Mutable
	writes map[string]*pendingWrite
	order  []string
}

func NewBatch(parent state.Mutable) *Batch {
	return &Batch{
		parent: parent,
		writes: make(map[string]*pendingWrite),
	}
}

func (b *Batch) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if w, ok := b.writes[string(key)]; ok {
		if w.removed {
			return nil, database.ErrNotFound
		}
		return append([]byte(nil), w.value...), nil
	}
	return b.parent.GetValue(ctx, key)
}

func (b *Batch) Insert(_ context.Context, key []byte, value []byte) error {
	b.record(key, &pendingWrite{value: append([]byte(nil), value...)})
	return nil
}

func (b *Batch) Remove(_ context.Context, key []byte) error {
	b.record(key, &pendingWrite{removed: true})
	return nil
}

func (b *Batch) record(key []byte, w *pendingWrite) {
	k := string(key)
	if _, seen := b.writes[k]; !seen {
		b.order = append(b.order, k)
	}
	b.writes[k] = w
}

// Len is the number of distinct keys written.
func (b *Batch) Len() int {
	return len(b.order)
}

// Commit applies the buffered writes to the parent in first-write order
// and resets the batch.
func (b *Batch) Commit(ctx context.Context) error {
	for _, k := range b.order {
		w := b.writes[k]
		if w.removed {
			if err := b.parent.Remove(ctx, []byte(k)); err != nil {
				return fmt.Errorf("failed to commit removal of key %x: %w", k, err)
			}
			continue
		}
		if err := b.parent.Insert(ctx, []byte(k), w.value); err != nil {
			return fmt.Errorf("failed to commit key %x: %w", k, err)
		}
	}
	b.Discard()
	return nil
}

// Discard drops every buffered write.
func (b *Batch) Discard() {
	b.writes = make(map[string]*pendingWrite)
	b.order = nil
}
