package types

import (
	"github.com/holiman/uint256"

	"github.com/govm-net/counter/core"
)

// CallContext carries the per-invocation data supplied by the host.
// The counter only reads it.
type CallContext struct {
	TxHash      core.Hash
	Sender      core.Address
	Contract    core.Address
	Value       *uint256.Int // amount transferred with the invocation, nil means zero
	BlockHeight uint64
	BlockTime   int64
}

// TransferredValue returns a copy of the transferred amount
func (c CallContext) TransferredValue() *uint256.Int {
	if c.Value == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(c.Value)
}

// ReceiptStatus is the outcome of an invocation
type ReceiptStatus string

const (
	StatusSuccess  ReceiptStatus = "success"
	StatusReverted ReceiptStatus = "reverted"
)

// Receipt is the host's record of one invocation
type Receipt struct {
	TxHash      core.Hash     `json:"tx_hash"`
	Sender      core.Address  `json:"sender"`
	Contract    core.Address  `json:"contract"`
	Function    string        `json:"function"`
	Value       string        `json:"value"`
	Status      ReceiptStatus `json:"status"`
	Error       string        `json:"error,omitempty"`
	Result      string        `json:"result,omitempty"`
	BlockHeight uint64        `json:"block_height"`
}
