// Package types contains the contracts between the counter, the host that
// dispatches invocations and the storage backends.
package types

import (
	"context"

	"github.com/govm-net/counter/core"
)

// StateReader reads committed or staged state. Missing keys return nil, nil.
type StateReader interface {
	Get(key []byte) ([]byte, error)
}

// StateTx is the storage handle of a single invocation
type StateTx interface {
	StateReader
	Set(key, value []byte) error
	Delete(key []byte) error
}

// StateStore is the durable key-value collaborator.
//
// Update commits the writes made through the StateTx only when fn returns nil.
// Any error returned by fn discards every write of that call.
type StateStore interface {
	Update(ctx context.Context, fn func(tx StateTx) error) error
	View(ctx context.Context, fn func(r StateReader) error) error

	// Receipts
	SaveReceipt(ctx context.Context, r Receipt) error
	Receipts(ctx context.Context, contract core.Address, limit int) ([]Receipt, error)

	Close() error
}
