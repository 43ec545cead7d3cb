// Package abi describes the operations a counter exposes to its host:
// names, argument types, state mutability and 4-byte selectors.
package abi

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/govm-net/counter/core"
)

// StateMutability tells the host how a function touches state
type StateMutability string

const (
	View       StateMutability = "view"
	NonPayable StateMutability = "nonpayable"
	Payable    StateMutability = "payable"
)

// Operation names
const (
	GetValue        = "get_value"
	SetValue        = "set_value"
	Multiply        = "multiply"
	Add             = "add"
	Increment       = "increment"
	AddFromTransfer = "add_from_transfer"
)

// ABI represents the interface of a contract
type ABI struct {
	Contract  string     `json:"contract,omitempty"`
	Functions []Function `json:"functions,omitempty"`
}

// Function represents a function of the contract
type Function struct {
	Name            string          `json:"name,omitempty"`
	Inputs          []Parameter     `json:"inputs"`
	Outputs         []Parameter     `json:"outputs"`
	StateMutability StateMutability `json:"stateMutability"`
}

// Parameter represents a function parameter or result
type Parameter struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Counter is the interface of the ledger counter
var Counter = &ABI{
	Contract: "Counter",
	Functions: []Function{
		{Name: GetValue, Outputs: []Parameter{{Name: "", Type: "uint256"}}, StateMutability: View},
		{Name: SetValue, Inputs: []Parameter{{Name: "new_value", Type: "uint256"}}, StateMutability: NonPayable},
		{Name: Multiply, Inputs: []Parameter{{Name: "factor", Type: "uint256"}}, StateMutability: NonPayable},
		{Name: Add, Inputs: []Parameter{{Name: "delta", Type: "uint256"}}, StateMutability: NonPayable},
		{Name: Increment, StateMutability: NonPayable},
		{Name: AddFromTransfer, StateMutability: Payable},
	},
}

// MethodName converts the snake_case name to the lowerCamel form used in
// signatures, e.g. add_from_transfer -> addFromTransfer.
func (f Function) MethodName() string {
	parts := strings.Split(f.Name, "_")
	title := cases.Title(language.English)
	for i := 1; i < len(parts); i++ {
		parts[i] = title.String(parts[i])
	}
	return strings.Join(parts, "")
}

// Signature returns the canonical signature, e.g. setValue(uint256)
func (f Function) Signature() string {
	types := make([]string, 0, len(f.Inputs))
	for _, in := range f.Inputs {
		types = append(types, in.Type)
	}
	return fmt.Sprintf("%s(%s)", f.MethodName(), strings.Join(types, ","))
}

// Selector returns the first 4 bytes of the Keccak-256 hash of the signature
func (f Function) Selector() [4]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(f.Signature()))
	var sel [4]byte
	copy(sel[:], h.Sum(nil))
	return sel
}

// SelectorHex returns the selector as 0x-prefixed hex
func (f Function) SelectorHex() string {
	sel := f.Selector()
	return "0x" + hex.EncodeToString(sel[:])
}

func (f Function) Payable() bool {
	return f.StateMutability == Payable
}

func (f Function) ReadOnly() bool {
	return f.StateMutability == View
}

// Lookup finds a function by snake_case name, lowerCamel method name or
// 0x-prefixed selector.
func (a *ABI) Lookup(name string) (Function, error) {
	isSelector := strings.HasPrefix(name, "0x") && len(name) == 10
	for _, fn := range a.Functions {
		if fn.Name == name || fn.MethodName() == name {
			return fn, nil
		}
		if isSelector && strings.EqualFold(fn.SelectorHex(), name) {
			return fn, nil
		}
	}
	return Function{}, fmt.Errorf("%w: %s", core.ErrFunctionNotFound, name)
}

type jsonEntry struct {
	Type            string          `json:"type"`
	Name            string          `json:"name"`
	Selector        string          `json:"selector"`
	Inputs          []Parameter     `json:"inputs"`
	Outputs         []Parameter     `json:"outputs"`
	StateMutability StateMutability `json:"stateMutability"`
}

// MarshalJSON renders the functions in the Solidity JSON ABI layout
func (a *ABI) MarshalJSON() ([]byte, error) {
	entries := make([]jsonEntry, 0, len(a.Functions))
	for _, fn := range a.Functions {
		inputs, outputs := fn.Inputs, fn.Outputs
		if inputs == nil {
			inputs = []Parameter{}
		}
		if outputs == nil {
			outputs = []Parameter{}
		}
		entries = append(entries, jsonEntry{
			Type:            "function",
			Name:            fn.MethodName(),
			Selector:        fn.SelectorHex(),
			Inputs:          inputs,
			Outputs:         outputs,
			StateMutability: fn.StateMutability,
		})
	}
	return json.Marshal(entries)
}
