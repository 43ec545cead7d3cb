package types

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

func TestTransferredValue(t *testing.T) {
	var call CallContext
	assert.True(t, call.TransferredValue().IsZero())

	call.Value = uint256.NewInt(7)
	v := call.TransferredValue()
	assert.Equal(t, uint64(7), v.Uint64())

	// the copy must not alias the caller's value
	v.SetUint64(9)
	assert.Equal(t, uint64(7), call.Value.Uint64())
}
