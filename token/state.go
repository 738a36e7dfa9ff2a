package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/core/vm"
)

var totalSupplySlot = crypto.Keccak256Hash([]byte("tos20\x00totalSupply"))

// accountSlot hashes (addr[20B] || 0x00 || field) for a per-account slot.
func accountSlot(addr common.Address, field string) common.Hash {
	key := make([]byte, 0, common.AddressLength+1+len(field))
	key = append(key, addr.Bytes()...)
	key = append(key, 0x00)
	key = append(key, field...)
	return crypto.Keccak256Hash(key)
}

// allowanceSlot hashes (owner[20B] || spender[20B] || 0x00 || "allowance").
func allowanceSlot(owner, spender common.Address) common.Hash {
	key := make([]byte, 0, 2*common.AddressLength+1+len("allowance"))
	key = append(key, owner.Bytes()...)
	key = append(key, spender.Bytes()...)
	key = append(key, 0x00)
	key = append(key, "allowance"...)
	return crypto.Keccak256Hash(key)
}

func readAmount(db vm.StateDB, owner common.Address, slot common.Hash) *uint256.Int {
	raw := db.GetState(owner, slot)
	return new(uint256.Int).SetBytes32(raw[:])
}

func writeAmount(db vm.StateDB, owner common.Address, slot common.Hash, v *uint256.Int) {
	db.SetState(owner, slot, common.Hash(v.Bytes32()))
}
