package core

// CounterSlot is the storage slot holding the counter value
var CounterSlot = ZeroHash

// SlotKey generates the storage key of a contract slot.
// Format: 's' + contract_address + slot
func SlotKey(contract Address, slot Hash) []byte {
	key := make([]byte, 0, 1+len(contract)+len(slot))
	key = append(key, 's')
	key = append(key, contract[:]...)
	return append(key, slot[:]...)
}

// ExtractContractAddressFromKey extracts the contract address from a slot key.
func ExtractContractAddressFromKey(key []byte) Address {
	if len(key) < 1+20 {
		return Address{}
	}

	var addr Address
	copy(addr[:], key[1:1+20])
	return addr
}
