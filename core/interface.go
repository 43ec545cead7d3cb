// Package core defines the identifiers shared by the counter, its storage
// backends and the host that dispatches invocations.
package core

import (
	"encoding/hex"
	"strings"
)

// Address identifies an account or a contract
type Address [20]byte

// Hash identifies a transaction or a storage slot
type Hash [32]byte

var ZeroAddress = Address{}
var ZeroHash = Hash{}

func (addr Address) String() string {
	return hex.EncodeToString(addr[:])
}

// AddressFromString decodes a hex address, with or without the 0x prefix.
// Short input is left-padded, invalid input yields the zero address.
func AddressFromString(str string) Address {
	var addr Address
	fill(addr[:], str)
	return addr
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// HashFromString decodes a hex hash, with or without the 0x prefix.
func HashFromString(str string) Hash {
	var h Hash
	fill(h[:], str)
	return h
}

func fill(dst []byte, str string) {
	str = strings.TrimPrefix(strings.TrimPrefix(str, "0x"), "0X")
	if len(str)%2 == 1 {
		str = "0" + str
	}
	b, err := hex.DecodeString(str)
	if err != nil || len(b) > len(dst) {
		return
	}
	copy(dst[len(dst)-len(b):], b)
}

// MarshalText renders the address as 0x-prefixed hex
func (addr Address) MarshalText() ([]byte, error) {
	return []byte("0x" + addr.String()), nil
}

func (addr *Address) UnmarshalText(text []byte) error {
	*addr = AddressFromString(string(text))
	return nil
}

// MarshalText renders the hash as 0x-prefixed hex
func (h Hash) MarshalText() ([]byte, error) {
	return []byte("0x" + h.String()), nil
}

func (h *Hash) UnmarshalText(text []byte) error {
	*h = HashFromString(string(text))
	return nil
}
