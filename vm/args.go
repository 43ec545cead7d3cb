package vm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/govm-net/counter/abi"
	"github.com/govm-net/counter/core"
)

// DecodeArgs decodes a JSON object keyed by parameter name. Values are JSON
// numbers, decimal strings or 0x-prefixed hex strings.
func DecodeArgs(fn abi.Function, args []byte) (map[string]*uint256.Int, error) {
	params := make(map[string]*uint256.Int, len(fn.Inputs))
	if len(fn.Inputs) == 0 {
		return params, nil
	}
	if len(bytes.TrimSpace(args)) == 0 {
		return nil, fmt.Errorf("%w: %s requires arguments", core.ErrInvalidArgument, fn.Name)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(args, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal params: %v", core.ErrInvalidArgument, err)
	}

	for _, in := range fn.Inputs {
		msg, ok := raw[in.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing argument %s", core.ErrInvalidArgument, in.Name)
		}
		v, err := decodeUint256(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %s: %v", core.ErrInvalidArgument, in.Name, err)
		}
		params[in.Name] = v
	}
	return params, nil
}

func decodeUint256(msg json.RawMessage) (*uint256.Int, error) {
	var s string
	if err := json.Unmarshal(msg, &s); err != nil {
		var n json.Number
		dec := json.NewDecoder(bytes.NewReader(msg))
		dec.UseNumber()
		if err := dec.Decode(&n); err != nil {
			return nil, err
		}
		s = n.String()
	}
	return ParseUint256(s)
}

// ParseUint256 parses a decimal or 0x-prefixed hex string
func ParseUint256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			if len(s) == 2 {
				return nil, fmt.Errorf("empty hex value")
			}
			digits = "0"
		}
		return uint256.FromHex("0x" + digits)
	}
	return uint256.FromDecimal(s)
}
