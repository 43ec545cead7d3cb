package memory

import (
	"context"
	"log/slog"
	"sync"

	vmctx "github.com/govm-net/counter/context"
	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/types"
)

// Store keeps committed state in memory. Update calls are serialized, so
// invocations never observe each other's staged writes.
type Store struct {
	mu       sync.RWMutex
	txLock   sync.Mutex
	state    map[string][]byte
	receipts []types.Receipt
}

func init() {
	vmctx.Register(vmctx.MemoryContextType, NewStore)
}

// NewStore creates an empty in-memory store. params are ignored.
func NewStore(params map[string]any) (types.StateStore, error) {
	return New(), nil
}

// New creates an empty in-memory store
func New() *Store {
	return &Store{
		state: make(map[string][]byte),
	}
}

// Update runs fn against a staging overlay and merges it on success
func (s *Store) Update(ctx context.Context, fn func(tx types.StateTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txLock.Lock()
	defer s.txLock.Unlock()

	tx := &overlay{store: s, writes: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		slog.Debug("memory store rollback", "writes", len(tx.writes), "error", err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range tx.writes {
		if v == nil {
			delete(s.state, k)
			continue
		}
		s.state[k] = v
	}
	return nil
}

// View runs fn against committed state
func (s *Store) View(ctx context.Context, fn func(r types.StateReader) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(committed{store: s})
}

// SaveReceipt appends a receipt
func (s *Store) SaveReceipt(ctx context.Context, r types.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, r)
	return nil
}

// Receipts returns the latest receipts of contract, newest first
func (s *Store) Receipts(ctx context.Context, contract core.Address, limit int) ([]types.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Receipt, 0)
	for i := len(s.receipts) - 1; i >= 0; i-- {
		if s.receipts[i].Contract != contract {
			continue
		}
		out = append(out, s.receipts[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *Store) Close() error {
	return nil
}

func (s *Store) get(key string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[key]
	if !ok {
		return nil
	}
	return clone(v)
}

type committed struct {
	store *Store
}

func (c committed) Get(key []byte) ([]byte, error) {
	return c.store.get(string(key)), nil
}

// overlay stages writes of one Update call. A nil value marks a deletion.
type overlay struct {
	store  *Store
	writes map[string][]byte
}

func (o *overlay) Get(key []byte) ([]byte, error) {
	if v, ok := o.writes[string(key)]; ok {
		return clone(v), nil
	}
	return o.store.get(string(key)), nil
}

func (o *overlay) Set(key, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	o.writes[string(key)] = clone(value)
	return nil
}

func (o *overlay) Delete(key []byte) error {
	o.writes[string(key)] = nil
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
