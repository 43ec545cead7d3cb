// Package counter implements the ledger counter: a single 256-bit unsigned
// value kept in durable storage. Arithmetic never wraps; an update that would
// leave the range fails with ErrArithmeticOverflow and writes nothing.
package counter

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/types"
)

// ErrArithmeticOverflow is returned when an update exceeds 2^256-1
var ErrArithmeticOverflow = errors.New("arithmetic overflow")

var one = uint256.NewInt(1)

// Counter is bound to the storage handle of one invocation.
type Counter struct {
	state types.StateTx
	key   []byte
}

// New returns the counter stored at the well-known slot of contract.
func New(state types.StateTx, contract core.Address) *Counter {
	return &Counter{
		state: state,
		key:   core.SlotKey(contract, core.CounterSlot),
	}
}

// Value returns the current value. A slot that was never written reads as 0.
func (c *Counter) Value() (*uint256.Int, error) {
	return Load(c.state, c.key)
}

// SetValue stores v.
func (c *Counter) SetValue(v *uint256.Int) error {
	word := orZero(v).Bytes32()
	if err := c.state.Set(c.key, word[:]); err != nil {
		return fmt.Errorf("failed to store counter: %w", err)
	}
	return nil
}

// Add adds delta to the value.
func (c *Counter) Add(delta *uint256.Int) error {
	current, err := c.Value()
	if err != nil {
		return err
	}
	sum, overflow := new(uint256.Int).AddOverflow(current, orZero(delta))
	if overflow {
		return fmt.Errorf("%w: %s + %s", ErrArithmeticOverflow, current.Dec(), orZero(delta).Dec())
	}
	return c.SetValue(sum)
}

// Multiply multiplies the value by factor.
func (c *Counter) Multiply(factor *uint256.Int) error {
	current, err := c.Value()
	if err != nil {
		return err
	}
	product, overflow := new(uint256.Int).MulOverflow(current, orZero(factor))
	if overflow {
		return fmt.Errorf("%w: %s * %s", ErrArithmeticOverflow, current.Dec(), orZero(factor).Dec())
	}
	return c.SetValue(product)
}

// Increment adds one to the value through SetValue.
func (c *Counter) Increment() error {
	current, err := c.Value()
	if err != nil {
		return err
	}
	next, overflow := new(uint256.Int).AddOverflow(current, one)
	if overflow {
		return fmt.Errorf("%w: %s + 1", ErrArithmeticOverflow, current.Dec())
	}
	return c.SetValue(next)
}

// AddFromTransfer adds the amount transferred with the invocation.
// A transfer below one leaves the value untouched and still succeeds; the
// transferred amount stays with the host either way.
func (c *Counter) AddFromTransfer(call types.CallContext) error {
	value := call.TransferredValue()
	if value.Lt(one) {
		return nil
	}
	return c.Add(value)
}

// Load decodes the counter word stored at key.
func Load(r types.StateReader, key []byte) (*uint256.Int, error) {
	raw, err := r.Get(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load counter: %w", err)
	}
	if len(raw) > 32 {
		return nil, fmt.Errorf("failed to load counter: stored word is %d bytes", len(raw))
	}
	return new(uint256.Int).SetBytes(raw), nil
}

// Read returns the value of contract's counter without a write handle.
func Read(r types.StateReader, contract core.Address) (*uint256.Int, error) {
	return Load(r, core.SlotKey(contract, core.CounterSlot))
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}
