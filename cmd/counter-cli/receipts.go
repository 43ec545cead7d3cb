package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/govm-net/counter/abi"
)

func newReceiptsCmd(opts *options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "List the latest invocation receipts of the contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := opts.engine()
			if err != nil {
				return err
			}
			defer engine.Close()

			receipts, err := engine.Receipts(cmd.Context(), opts.contractAddress(), limit)
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(receipts, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal receipts: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of receipts, 0 for all")
	return cmd
}

func newABICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abi",
		Short: "Print the counter interface as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(abi.Counter, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal ABI: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
