package vault

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/core/vm"
	"github.com/tos-network/lockvault/params"
)

// globalSlot hashes ("vault" || 0x00 || field) for a vault-wide slot.
func globalSlot(field string) common.Hash {
	return crypto.Keccak256Hash([]byte("vault\x00" + field))
}

// holderSlot hashes (addr[20B] || 0x00 || field) for a per-holder slot.
// addr is always exactly 20 bytes, so fields cannot collide across holders.
func holderSlot(addr common.Address, field string) common.Hash {
	key := make([]byte, 0, 21+len(field))
	key = append(key, addr.Bytes()...)
	key = append(key, 0x00)
	key = append(key, field...)
	return crypto.Keccak256Hash(key)
}

// holderListSlot returns the slot for the i-th listed holder (0-based).
// Only holders with a live lock are listed.
func holderListSlot(i uint64) common.Hash {
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], i)
	return crypto.Keccak256Hash(append([]byte("vault\x00holderList\x00"), idx[:]...))
}

var (
	initializedSlot    = globalSlot("initialized")
	adminSlot          = globalSlot("admin")
	tokenSlot          = globalSlot("token")
	statusSlot         = globalSlot("status")
	totalLockedSlot    = globalSlot("totalLocked")
	rewardsPoolSlot    = globalSlot("rewardsPool")
	lockDurationSlot   = globalSlot("lockDuration")
	rewardRateSlot     = globalSlot("rewardRate")
	holderCountSlot    = globalSlot("holderCount")
	rewardPerShareSlot = globalSlot("rewardPerShare")
	unallocatedSlot    = globalSlot("unallocated")
	logCountSlot       = globalSlot("logCount")
)

// --- word codecs ---

func readAmount(db vm.StateDB, slot common.Hash) *uint256.Int {
	raw := db.GetState(params.VaultAddress, slot)
	return new(uint256.Int).SetBytes32(raw[:])
}

func writeAmount(db vm.StateDB, slot common.Hash, v *uint256.Int) {
	db.SetState(params.VaultAddress, slot, common.Hash(v.Bytes32()))
}

func readUint64(db vm.StateDB, slot common.Hash) uint64 {
	raw := db.GetState(params.VaultAddress, slot)
	return binary.BigEndian.Uint64(raw[24:])
}

func writeUint64(db vm.StateDB, slot common.Hash, n uint64) {
	var word common.Hash
	binary.BigEndian.PutUint64(word[24:], n) // right-aligned in 32 bytes
	db.SetState(params.VaultAddress, slot, word)
}

func readAddress(db vm.StateDB, slot common.Hash) common.Address {
	raw := db.GetState(params.VaultAddress, slot)
	return common.BytesToAddress(raw[12:]) // address is right-aligned
}

func writeAddress(db vm.StateDB, slot common.Hash, addr common.Address) {
	var word common.Hash
	copy(word[12:], addr.Bytes())
	db.SetState(params.VaultAddress, slot, word)
}

func readBool(db vm.StateDB, slot common.Hash) bool {
	return db.GetState(params.VaultAddress, slot)[31] != 0
}

func writeBool(db vm.StateDB, slot common.Hash, v bool) {
	var word common.Hash
	if v {
		word[31] = 1
	}
	db.SetState(params.VaultAddress, slot, word)
}

// --- vault-wide state ---

func readStatus(db vm.StateDB) LockStatus {
	return LockStatus(db.GetState(params.VaultAddress, statusSlot)[31])
}

func writeStatus(db vm.StateDB, s LockStatus) {
	var word common.Hash
	word[31] = byte(s)
	db.SetState(params.VaultAddress, statusSlot, word)
}

func readTotalLocked(db vm.StateDB) *uint256.Int { return readAmount(db, totalLockedSlot) }

func writeTotalLocked(db vm.StateDB, v *uint256.Int) { writeAmount(db, totalLockedSlot, v) }

func readRewardsPool(db vm.StateDB) *uint256.Int { return readAmount(db, rewardsPoolSlot) }

func writeRewardsPool(db vm.StateDB, v *uint256.Int) { writeAmount(db, rewardsPoolSlot, v) }

// rewardPerShare accumulates seeded rewards per locked unit, scaled by
// params.RewardPrecision. It only grows.
func readRewardPerShare(db vm.StateDB) *uint256.Int { return readAmount(db, rewardPerShareSlot) }

func writeRewardPerShare(db vm.StateDB, v *uint256.Int) { writeAmount(db, rewardPerShareSlot, v) }

// unallocated is the part of the pool not yet credited to rewardPerShare.
func readUnallocated(db vm.StateDB) *uint256.Int { return readAmount(db, unallocatedSlot) }

func writeUnallocated(db vm.StateDB, v *uint256.Int) { writeAmount(db, unallocatedSlot, v) }

func readAdmin(db vm.StateDB) common.Address { return readAddress(db, adminSlot) }

func readToken(db vm.StateDB) common.Address { return readAddress(db, tokenSlot) }

// --- per-holder lock records ---

// readLock returns the live lock of holder. A zero amount means no lock.
func readLock(db vm.StateDB, holder common.Address) (*Lock, bool) {
	amount := readAmount(db, holderSlot(holder, "amount"))
	if amount.IsZero() {
		return nil, false
	}
	return &Lock{
		Holder:    readAddress(db, holderSlot(holder, "holder")),
		Amount:    amount,
		LockedAt:  readUint64(db, holderSlot(holder, "lockedAt")),
		MaturesAt: readUint64(db, holderSlot(holder, "maturesAt")),
	}, true
}

func writeLock(db vm.StateDB, l *Lock) {
	writeAddress(db, holderSlot(l.Holder, "holder"), l.Holder)
	writeAmount(db, holderSlot(l.Holder, "amount"), l.Amount)
	writeUint64(db, holderSlot(l.Holder, "lockedAt"), l.LockedAt)
	writeUint64(db, holderSlot(l.Holder, "maturesAt"), l.MaturesAt)
}

// readRewardDebt returns the rewardPerShare snapshot taken when holder locked.
func readRewardDebt(db vm.StateDB, holder common.Address) *uint256.Int {
	return readAmount(db, holderSlot(holder, "rewardDebt"))
}

func writeRewardDebt(db vm.StateDB, holder common.Address, v *uint256.Int) {
	writeAmount(db, holderSlot(holder, "rewardDebt"), v)
}

// deleteLock zeroes every field of holder's lock record.
func deleteLock(db vm.StateDB, holder common.Address) {
	for _, field := range []string{"holder", "amount", "lockedAt", "maturesAt", "rewardDebt"} {
		db.SetState(params.VaultAddress, holderSlot(holder, field), common.Hash{})
	}
}

// --- holder index ---

func readHolderCount(db vm.StateDB) uint64 { return readUint64(db, holderCountSlot) }

func readHolderAt(db vm.StateDB, i uint64) common.Address {
	return readAddress(db, holderListSlot(i))
}

// listHolder appends holder to the index. Its position plus one is kept in
// the holder's "index" slot.
func listHolder(db vm.StateDB, holder common.Address) {
	if readUint64(db, holderSlot(holder, "index")) != 0 {
		return
	}
	n := readHolderCount(db)
	writeAddress(db, holderListSlot(n), holder)
	writeUint64(db, holderCountSlot, n+1)
	writeUint64(db, holderSlot(holder, "index"), n+1)
}

// unlistHolder removes holder from the index by moving the last listed holder
// into its position.
func unlistHolder(db vm.StateDB, holder common.Address) {
	pos := readUint64(db, holderSlot(holder, "index"))
	if pos == 0 {
		return
	}
	last := readHolderCount(db) - 1
	if pos-1 != last {
		moved := readHolderAt(db, last)
		writeAddress(db, holderListSlot(pos-1), moved)
		writeUint64(db, holderSlot(moved, "index"), pos)
	}
	writeAddress(db, holderListSlot(last), common.Address{})
	writeUint64(db, holderCountSlot, last)
	writeUint64(db, holderSlot(holder, "index"), 0)
}

// readLiveLocks returns every live lock sorted by holder address ascending.
// It reads only listed holders.
func readLiveLocks(db vm.StateDB) []*Lock {
	count := readHolderCount(db)
	locks := make([]*Lock, 0, count)
	for i := uint64(0); i < count; i++ {
		if l, ok := readLock(db, readHolderAt(db, i)); ok {
			locks = append(locks, l)
		}
	}
	sort.Slice(locks, func(i, j int) bool {
		return bytes.Compare(locks[i].Holder[:], locks[j].Holder[:]) < 0
	})
	return locks
}
