package counter

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/govm-net/counter/context/memory"
	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/types"
)

var contract = core.AddressFromString("0x1234567890123456789012345678901234567890")

func maxUint256() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// invoke runs fn as one invocation against store, like the host does.
func invoke(t *testing.T, store types.StateStore, fn func(c *Counter) error) error {
	t.Helper()
	return store.Update(context.Background(), func(tx types.StateTx) error {
		return fn(New(tx, contract))
	})
}

func value(t *testing.T, store types.StateStore) *uint256.Int {
	t.Helper()
	var v *uint256.Int
	require.NoError(t, store.View(context.Background(), func(r types.StateReader) error {
		var err error
		v, err = Read(r, contract)
		return err
	}))
	return v
}

func TestInitialValue(t *testing.T) {
	store := memory.New()
	assert.True(t, value(t, store).IsZero())
}

func TestSetValue(t *testing.T) {
	store := memory.New()
	for _, x := range []*uint256.Int{
		uint256.NewInt(0),
		uint256.NewInt(1),
		uint256.NewInt(100),
		uint256.MustFromDecimal("340282366920938463463374607431768211456"),
		maxUint256(),
	} {
		require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(x) }))
		assert.Equal(t, x, value(t, store))
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name  string
		start *uint256.Int
		delta *uint256.Int
		want  *uint256.Int
	}{
		{"zero", uint256.NewInt(0), uint256.NewInt(0), uint256.NewInt(0)},
		{"small", uint256.NewInt(4), uint256.NewInt(3), uint256.NewInt(7)},
		{"carry across limbs", uint256.MustFromHex("0xffffffffffffffff"), uint256.NewInt(1), uint256.MustFromHex("0x10000000000000000")},
		{"reach max", new(uint256.Int).Sub(maxUint256(), uint256.NewInt(5)), uint256.NewInt(5), maxUint256()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(tt.start) }))
			require.NoError(t, invoke(t, store, func(c *Counter) error { return c.Add(tt.delta) }))
			assert.Equal(t, tt.want, value(t, store))
		})
	}
}

func TestAddOverflow(t *testing.T) {
	store := memory.New()
	require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(maxUint256()) }))

	err := invoke(t, store, func(c *Counter) error { return c.Add(uint256.NewInt(1)) })
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, maxUint256(), value(t, store))

	err = invoke(t, store, func(c *Counter) error { return c.Add(maxUint256()) })
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, maxUint256(), value(t, store))
}

func TestMultiply(t *testing.T) {
	tests := []struct {
		name   string
		start  *uint256.Int
		factor *uint256.Int
		want   *uint256.Int
	}{
		{"by zero", uint256.NewInt(42), uint256.NewInt(0), uint256.NewInt(0)},
		{"zero by max", uint256.NewInt(0), maxUint256(), uint256.NewInt(0)},
		{"by one", maxUint256(), uint256.NewInt(1), maxUint256()},
		{"small", uint256.NewInt(4), uint256.NewInt(2), uint256.NewInt(8)},
		{"wide", uint256.MustFromHex("0xffffffffffffffffffffffffffffffff"), uint256.MustFromHex("0x100000000000000000000000000000000"),
			uint256.MustFromHex("0xffffffffffffffffffffffffffffffff00000000000000000000000000000000")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.New()
			require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(tt.start) }))
			require.NoError(t, invoke(t, store, func(c *Counter) error { return c.Multiply(tt.factor) }))
			assert.Equal(t, tt.want, value(t, store))
		})
	}
}

func TestMultiplyOverflow(t *testing.T) {
	store := memory.New()
	start := uint256.MustFromHex("0x8000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(start) }))

	err := invoke(t, store, func(c *Counter) error { return c.Multiply(uint256.NewInt(2)) })
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, start, value(t, store))
}

func TestIncrement(t *testing.T) {
	for _, start := range []uint64{0, 1, 41, ^uint64(0)} {
		incremented := memory.New()
		added := memory.New()
		s := uint256.NewInt(start)

		require.NoError(t, invoke(t, incremented, func(c *Counter) error { return c.SetValue(s) }))
		require.NoError(t, invoke(t, added, func(c *Counter) error { return c.SetValue(s) }))

		require.NoError(t, invoke(t, incremented, func(c *Counter) error { return c.Increment() }))
		require.NoError(t, invoke(t, added, func(c *Counter) error { return c.Add(uint256.NewInt(1)) }))

		assert.Equal(t, value(t, added), value(t, incremented))
	}
}

func TestIncrementOverflow(t *testing.T) {
	store := memory.New()
	require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(maxUint256()) }))

	err := invoke(t, store, func(c *Counter) error { return c.Increment() })
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, maxUint256(), value(t, store))
}

func TestAddFromTransfer(t *testing.T) {
	t.Run("zero transfer is a no-op", func(t *testing.T) {
		store := memory.New()
		require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(uint256.NewInt(5)) }))

		call := types.CallContext{Contract: contract, Value: uint256.NewInt(0)}
		require.NoError(t, invoke(t, store, func(c *Counter) error { return c.AddFromTransfer(call) }))
		assert.Equal(t, uint256.NewInt(5), value(t, store))

		// no value at all behaves the same
		require.NoError(t, invoke(t, store, func(c *Counter) error { return c.AddFromTransfer(types.CallContext{}) }))
		assert.Equal(t, uint256.NewInt(5), value(t, store))
	})

	t.Run("transfer is added", func(t *testing.T) {
		store := memory.New()
		require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(uint256.NewInt(100)) }))

		call := types.CallContext{Contract: contract, Value: uint256.NewInt(2)}
		require.NoError(t, invoke(t, store, func(c *Counter) error { return c.AddFromTransfer(call) }))
		assert.Equal(t, uint256.NewInt(102), value(t, store))
	})

	t.Run("transfer overflow", func(t *testing.T) {
		store := memory.New()
		start := new(uint256.Int).Sub(maxUint256(), uint256.NewInt(1))
		require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(start) }))

		call := types.CallContext{Contract: contract, Value: uint256.NewInt(2)}
		err := invoke(t, store, func(c *Counter) error { return c.AddFromTransfer(call) })
		assert.ErrorIs(t, err, ErrArithmeticOverflow)
		assert.Equal(t, start, value(t, store))
	})
}

func TestScenario(t *testing.T) {
	store := memory.New()
	steps := []struct {
		op   func(c *Counter) error
		want uint64
	}{
		{func(c *Counter) error { return c.Increment() }, 1},
		{func(c *Counter) error { return c.Add(uint256.NewInt(3)) }, 4},
		{func(c *Counter) error { return c.Multiply(uint256.NewInt(2)) }, 8},
		{func(c *Counter) error { return c.SetValue(uint256.NewInt(100)) }, 100},
		{func(c *Counter) error {
			return c.AddFromTransfer(types.CallContext{Contract: contract, Value: uint256.NewInt(2)})
		}, 102},
	}

	assert.True(t, value(t, store).IsZero())
	for _, step := range steps {
		require.NoError(t, invoke(t, store, step.op))
		assert.Equal(t, uint256.NewInt(step.want), value(t, store))
	}
}

// A failed operation aborts the whole invocation, including earlier writes.
func TestOverflowDiscardsInvocation(t *testing.T) {
	store := memory.New()
	require.NoError(t, invoke(t, store, func(c *Counter) error { return c.SetValue(uint256.NewInt(7)) }))

	err := invoke(t, store, func(c *Counter) error {
		if err := c.SetValue(maxUint256()); err != nil {
			return err
		}
		return c.Increment()
	})
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, uint256.NewInt(7), value(t, store))
}

func TestEntitiesAreIsolated(t *testing.T) {
	store := memory.New()
	other := core.AddressFromString("0xbeef")

	require.NoError(t, store.Update(context.Background(), func(tx types.StateTx) error {
		if err := New(tx, contract).SetValue(uint256.NewInt(11)); err != nil {
			return err
		}
		return New(tx, other).SetValue(uint256.NewInt(22))
	}))

	assert.Equal(t, uint256.NewInt(11), value(t, store))
	require.NoError(t, store.View(context.Background(), func(r types.StateReader) error {
		v, err := Read(r, other)
		assert.Equal(t, uint256.NewInt(22), v)
		return err
	}))
}

func TestCorruptWord(t *testing.T) {
	store := memory.New()
	require.NoError(t, store.Update(context.Background(), func(tx types.StateTx) error {
		return tx.Set(core.SlotKey(contract, core.CounterSlot), make([]byte, 33))
	}))

	err := store.View(context.Background(), func(r types.StateReader) error {
		_, err := Read(r, contract)
		return err
	})
	assert.Error(t, err)
}
