package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/govm-net/counter/context/db"
	_ "github.com/govm-net/counter/context/memory"
	"github.com/govm-net/counter/core"
	"github.com/govm-net/counter/vm"
)

type options struct {
	backend  string
	dbPath   string
	contract string
	sender   string
	height   uint64
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:   "counter-cli",
		Short: "Ledger counter command line tool",
		Long: `Ledger counter command line tool for reading and updating a persistent 256-bit counter.
Every mutating command runs as one atomic invocation: it either commits or leaves the value unchanged.`,
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.backend, "backend", "b", "db", "Storage backend (db, memory)")
	flags.StringVarP(&opts.dbPath, "db", "d", "./counter.db", "SQLite database path")
	flags.StringVarP(&opts.contract, "contract", "c", "0x0000000000000000000000000000000000000001", "Counter contract address")
	flags.StringVarP(&opts.sender, "sender", "s", "0x0000000000000000000000000000000000000000", "Sender address")
	flags.Uint64Var(&opts.height, "height", 0, "Block height recorded in receipts")

	rootCmd.AddCommand(newOperationCmds(opts)...)
	rootCmd.AddCommand(newExecuteCmd(opts))
	rootCmd.AddCommand(newReceiptsCmd(opts))
	rootCmd.AddCommand(newABICmd())
	return rootCmd
}

func (o *options) engine() (*vm.Engine, error) {
	config := &vm.Config{
		ContextType:   o.backend,
		ContextParams: map[string]any{"db_path": o.dbPath},
	}
	engine, err := vm.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create VM engine: %w", err)
	}
	return engine, nil
}

func (o *options) contractAddress() core.Address {
	return core.AddressFromString(o.contract)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
