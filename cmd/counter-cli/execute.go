package main

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/govm-net/counter/abi"
	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/types"
	"github.com/govm-net/counter/vm"
)

// newOperationCmds builds one command per counter operation
func newOperationCmds(opts *options) []*cobra.Command {
	var value string

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the current value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, abi.GetValue, "0", nil)
		},
	}
	set := &cobra.Command{
		Use:   "set <value>",
		Short: "Set the value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, abi.SetValue, "0", args)
		},
	}
	add := &cobra.Command{
		Use:   "add <delta>",
		Short: "Add delta to the value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, abi.Add, "0", args)
		},
	}
	multiply := &cobra.Command{
		Use:   "multiply <factor>",
		Short: "Multiply the value by factor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, abi.Multiply, "0", args)
		},
	}
	increment := &cobra.Command{
		Use:   "increment",
		Short: "Add one to the value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, abi.Increment, "0", nil)
		},
	}
	transfer := &cobra.Command{
		Use:   "add-from-transfer",
		Short: "Add the transferred value to the counter",
		Long: `Add the transferred value to the counter.
A transfer below 1 succeeds without changing the value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOperation(cmd, opts, abi.AddFromTransfer, value, nil)
		},
	}
	transfer.Flags().StringVarP(&value, "value", "v", "0", "Amount transferred with the invocation")

	return []*cobra.Command{get, set, add, multiply, increment, transfer}
}

// newExecuteCmd runs any operation by name or selector with JSON arguments
func newExecuteCmd(opts *options) *cobra.Command {
	var (
		argsJSON string
		value    string
	)
	cmd := &cobra.Command{
		Use:   "execute <function>",
		Short: "Execute an operation by name or selector",
		Long: `Execute an operation by name or selector with JSON arguments.
Example: counter-cli execute add --args '{"delta":"3"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			defer engine.Close()

			call, err := opts.callContext(value)
			if err != nil {
				return err
			}
			var params []byte
			if argsJSON != "" {
				params = []byte(argsJSON)
			}
			result, err := engine.Execute(cmd.Context(), call, args[0], params)
			if err != nil {
				return fmt.Errorf("failed to execute contract: %w", err)
			}
			printResult(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&argsJSON, "args", "a", "", "Arguments as a JSON object")
	cmd.Flags().StringVarP(&value, "value", "v", "0", "Amount transferred with the invocation")
	return cmd
}

func runOperation(cmd *cobra.Command, opts *options, function, value string, args []string) error {
	engine, err := opts.engine()
	if err != nil {
		return err
	}
	defer engine.Close()

	call, err := opts.callContext(value)
	if err != nil {
		return err
	}

	values := make([]*uint256.Int, 0, len(args))
	for _, arg := range args {
		v, err := vm.ParseUint256(arg)
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", arg, err)
		}
		values = append(values, v)
	}

	result, err := engine.Call(cmd.Context(), call, function, values...)
	if err != nil {
		return fmt.Errorf("failed to execute %s: %w", function, err)
	}
	printResult(cmd, result)
	return nil
}

func (o *options) callContext(value string) (types.CallContext, error) {
	amount, err := vm.ParseUint256(value)
	if err != nil {
		return types.CallContext{}, fmt.Errorf("invalid transfer value %q: %w", value, err)
	}

	var txHash core.Hash
	if _, err := rand.Read(txHash[:]); err != nil {
		return types.CallContext{}, fmt.Errorf("failed to generate transaction hash: %w", err)
	}

	return types.CallContext{
		TxHash:      txHash,
		Sender:      core.AddressFromString(o.sender),
		Contract:    o.contractAddress(),
		Value:       amount,
		BlockHeight: o.height,
		BlockTime:   time.Now().Unix(),
	}, nil
}

func printResult(cmd *cobra.Command, result *vm.Result) {
	out := cmd.OutOrStdout()
	if result.Value != nil {
		fmt.Fprintln(out, result.Value.Dec())
		return
	}
	fmt.Fprintf(out, "%s: %s (tx 0x%s)\n", result.Function, result.Receipt.Status, result.Receipt.TxHash)
}
