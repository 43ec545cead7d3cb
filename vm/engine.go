// Package vm is the host side of the counter: it resolves operations,
// decodes arguments, runs each invocation inside a storage transaction and
// records a receipt for it.
package vm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/govm-net/counter/abi"
	vmctx "github.com/govm-net/counter/context"
	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/counter"
	"github.com/govm-net/counter/types"
)

// Engine dispatches invocations against one state store
type Engine struct {
	config  *Config
	store   types.StateStore
	metrics *metrics
	mu      sync.Mutex // serializes mutating invocations
}

// Config represents engine configuration
type Config struct {
	ContextType   string                // Storage backend type, defaults to the registry default
	ContextParams map[string]any        // Storage backend parameters
	Store         types.StateStore      // Use this store instead of building one from the registry
	Registerer    prometheus.Registerer // Metrics registerer, a private registry when nil
}

// Result is the outcome of a successful invocation
type Result struct {
	Function string
	Value    *uint256.Int // set for get_value
	Receipt  types.Receipt
}

// NewEngine creates a new engine
func NewEngine(config *Config) (*Engine, error) {
	if config == nil {
		return nil, fmt.Errorf("invalid config: config is nil")
	}

	store := config.Store
	if store == nil {
		var err error
		store, err = vmctx.Get(vmctx.ContextType(config.ContextType), config.ContextParams)
		if err != nil {
			return nil, fmt.Errorf("failed to get state store: %w", err)
		}
	}

	reg := config.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m, err := newMetrics(reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	return &Engine{
		config:  config,
		store:   store,
		metrics: m,
	}, nil
}

// Store returns the engine's state store
func (e *Engine) Store() types.StateStore {
	return e.store
}

// Call invokes function with positional arguments
func (e *Engine) Call(ctx context.Context, call types.CallContext, function string, args ...*uint256.Int) (*Result, error) {
	fn, err := abi.Counter.Lookup(function)
	if err != nil {
		return nil, err
	}
	if len(args) != len(fn.Inputs) {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", core.ErrInvalidArgument, fn.Name, len(fn.Inputs), len(args))
	}
	params := make(map[string]*uint256.Int, len(args))
	for i, in := range fn.Inputs {
		params[in.Name] = args[i]
	}
	return e.execute(ctx, call, fn, params)
}

// Execute invokes function with raw parameters, json.Marshal(map[string]any)
// keyed by parameter name.
func (e *Engine) Execute(ctx context.Context, call types.CallContext, function string, args []byte) (*Result, error) {
	fn, err := abi.Counter.Lookup(function)
	if err != nil {
		return nil, err
	}
	params, err := DecodeArgs(fn, args)
	if err != nil {
		e.record(ctx, call, fn, nil, err, 0)
		return nil, err
	}
	return e.execute(ctx, call, fn, params)
}

func (e *Engine) execute(ctx context.Context, call types.CallContext, fn abi.Function, params map[string]*uint256.Int) (*Result, error) {
	start := time.Now()

	if !fn.Payable() && !call.TransferredValue().IsZero() {
		err := fmt.Errorf("%w: %s", core.ErrNotPayable, fn.Name)
		e.record(ctx, call, fn, nil, err, time.Since(start))
		return nil, err
	}

	var (
		out *uint256.Int
		err error
	)
	if fn.ReadOnly() {
		err = e.store.View(ctx, func(r types.StateReader) error {
			out, err = counter.Read(r, call.Contract)
			return err
		})
	} else {
		e.mu.Lock()
		err = e.store.Update(ctx, func(tx types.StateTx) error {
			return apply(counter.New(tx, call.Contract), fn, params, call)
		})
		e.mu.Unlock()
	}

	receipt := e.record(ctx, call, fn, out, err, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrExecutionReverted, fn.Name, err)
	}
	return &Result{Function: fn.Name, Value: out, Receipt: receipt}, nil
}

func apply(c *counter.Counter, fn abi.Function, params map[string]*uint256.Int, call types.CallContext) error {
	switch fn.Name {
	case abi.SetValue:
		return c.SetValue(params["new_value"])
	case abi.Add:
		return c.Add(params["delta"])
	case abi.Multiply:
		return c.Multiply(params["factor"])
	case abi.Increment:
		return c.Increment()
	case abi.AddFromTransfer:
		return c.AddFromTransfer(call)
	}
	return fmt.Errorf("%w: %s", core.ErrFunctionNotFound, fn.Name)
}

// record saves the receipt, updates metrics and logs the invocation
func (e *Engine) record(ctx context.Context, call types.CallContext, fn abi.Function, out *uint256.Int, err error, took time.Duration) types.Receipt {
	receipt := types.Receipt{
		TxHash:      call.TxHash,
		Sender:      call.Sender,
		Contract:    call.Contract,
		Function:    fn.Name,
		Value:       call.TransferredValue().Dec(),
		Status:      types.StatusSuccess,
		BlockHeight: call.BlockHeight,
	}
	if out != nil {
		receipt.Result = out.Dec()
	}
	if err != nil {
		receipt.Status = types.StatusReverted
		receipt.Error = err.Error()
	}

	e.metrics.observe(fn.Name, receipt.Status, errors.Is(err, counter.ErrArithmeticOverflow), took)

	params := []any{
		"function", fn.Name,
		"contract", call.Contract,
		"sender", call.Sender,
		"value", receipt.Value,
		"status", receipt.Status,
	}
	if err != nil {
		slog.Warn("counter invocation reverted", append(params, "error", err)...)
	} else {
		slog.Info("counter invocation", params...)
	}

	if fn.ReadOnly() {
		return receipt
	}
	if saveErr := e.store.SaveReceipt(context.WithoutCancel(ctx), receipt); saveErr != nil {
		slog.Error("failed to save receipt", "tx", call.TxHash, "error", saveErr)
	}
	return receipt
}

// Value reads the committed value of contract's counter
func (e *Engine) Value(ctx context.Context, contract core.Address) (*uint256.Int, error) {
	res, err := e.Call(ctx, types.CallContext{Contract: contract}, abi.GetValue)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// Receipts returns the latest receipts of contract, newest first
func (e *Engine) Receipts(ctx context.Context, contract core.Address, limit int) ([]types.Receipt, error) {
	return e.store.Receipts(ctx, contract, limit)
}

// Close closes the engine
func (e *Engine) Close() error {
	if err := e.store.Close(); err != nil {
		return fmt.Errorf("failed to close state store: %w", err)
	}
	return nil
}
