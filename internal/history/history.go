// Package history provides the per-conversation bounded state the gateway
// keeps in memory: the conversation transcript, the recently analyzed
// documents, and the recently observed file attachments. All three are built
// on the same keyed bounded-sequence primitive.
package history

import (
	"hash/fnv"
	"sync"
)

// End selects which end of a sequence new items are inserted at.
type End int

const (
	// Tail appends newest items at the end and evicts from the front.
	Tail End = iota
	// Head inserts newest items at the front and evicts from the end.
	Head
)

const shardCount = 32

// Store is a concurrent map of conversation key to a bounded ordered
// sequence. Mutations on the same key are serialized; different keys only
// contend when they land on the same shard.
type Store[T any] struct {
	cap    int
	insert End
	shards [shardCount]shard[T]
}

type shard[T any] struct {
	mu   sync.Mutex
	seqs map[string][]T
}

// NewStore creates a Store holding at most cap items per key, inserting new
// items at the given end.
func NewStore[T any](cap int, insert End) *Store[T] {
	if cap <= 0 {
		cap = 1
	}
	s := &Store[T]{cap: cap, insert: insert}
	for i := range s.shards {
		s.shards[i].seqs = make(map[string][]T)
	}
	return s
}

func (s *Store[T]) shard(key string) *shard[T] {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%shardCount]
}

// Append adds item at the configured insert end, then trims the opposite end
// until the sequence is back within cap. The append and trim happen under
// one lock; the sequence is never observable above cap.
func (s *Store[T]) Append(key string, item T) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	seq := sh.seqs[key]
	if s.insert == Head {
		seq = append([]T{item}, seq...)
		if len(seq) > s.cap {
			seq = seq[:s.cap]
		}
	} else {
		seq = append(seq, item)
		if len(seq) > s.cap {
			seq = seq[len(seq)-s.cap:]
		}
	}
	sh.seqs[key] = seq
}

// Upsert replaces the first element satisfying pred with item and moves it
// to the insert end; when nothing matches, item is inserted as new. The
// sequence is trimmed afterwards.
func (s *Store[T]) Upsert(key string, pred func(T) bool, item T) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	seq := sh.seqs[key]
	for i := range seq {
		if pred(seq[i]) {
			seq = append(seq[:i], seq[i+1:]...)
			break
		}
	}
	if s.insert == Head {
		seq = append([]T{item}, seq...)
		if len(seq) > s.cap {
			seq = seq[:s.cap]
		}
	} else {
		seq = append(seq, item)
		if len(seq) > s.cap {
			seq = seq[len(seq)-s.cap:]
		}
	}
	sh.seqs[key] = seq
}

// Items returns a copy of the sequence for key, in stored order. Unseen keys
// yield an empty slice, never an error.
func (s *Store[T]) Items(key string) []T {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	seq := sh.seqs[key]
	out := make([]T, len(seq))
	copy(out, seq)
	return out
}

// Len reports the current sequence length for key.
func (s *Store[T]) Len(key string) int {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	return len(sh.seqs[key])
}

// Replace swaps the whole sequence for key, trimming to cap from the evict
// end. Used to backfill a key from an external source in one step.
func (s *Store[T]) Replace(key string, items []T) {
	seq := make([]T, len(items))
	copy(seq, items)
	if len(seq) > s.cap {
		if s.insert == Head {
			seq = seq[:s.cap]
		} else {
			seq = seq[len(seq)-s.cap:]
		}
	}

	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.seqs[key] = seq
}

// Clear drops the sequence for key entirely.
func (s *Store[T]) Clear(key string) {
	sh := s.shard(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	delete(sh.seqs, key)
}
