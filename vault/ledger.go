package vault

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/core/vm"
	"github.com/tos-network/lockvault/params"
)

// createLock records a new lock for holder and pulls amount into custody.
// Bookkeeping is written before the pull; a failed pull is reverted by the
// enclosing snapshot.
func (v *Vault) createLock(db vm.StateDB, holder common.Address, amount *uint256.Int, now uint64) error {
	if _, ok := readLock(db, holder); ok {
		return ErrDuplicateLock
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	total, overflow := new(uint256.Int).AddOverflow(readTotalLocked(db), amount)
	if overflow {
		return ErrAmountOverflow
	}
	maturesAt := now + readUint64(db, lockDurationSlot)
	if maturesAt < now {
		maturesAt = math.MaxUint64
	}
	writeLock(db, &Lock{
		Holder:    holder,
		Amount:    new(uint256.Int).Set(amount),
		LockedAt:  now,
		MaturesAt: maturesAt,
	})
	writeRewardDebt(db, holder, readRewardPerShare(db))
	listHolder(db, holder)
	writeTotalLocked(db, total)

	ledger := v.ledgerFn(db, readToken(db))
	if err := ledger.TransferFrom(params.VaultAddress, holder, params.VaultAddress, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return v.emit(db, EventLocked, holder, amount, now)
}

// clearLock removes holder's lock and releases its amount from totalLocked.
func clearLock(db vm.StateDB, l *Lock) {
	deleteLock(db, l.Holder)
	unlistHolder(db, l.Holder)
	writeTotalLocked(db, new(uint256.Int).Sub(readTotalLocked(db), l.Amount))
}

// GetLock returns holder's live lock, if any.
func (v *Vault) GetLock(holder common.Address) (*Lock, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readLock(v.state, holder)
}

// LockedTokens returns the amount held by holder's live lock, or zero.
func (v *Vault) LockedTokens(holder common.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if l, ok := readLock(v.state, holder); ok {
		return l.Amount
	}
	return new(uint256.Int)
}

// Locks returns every live lock ordered by holder address.
func (v *Vault) Locks() []*Lock {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readLiveLocks(v.state)
}

// TotalLocked returns the sum of all live lock amounts.
func (v *Vault) TotalLocked() *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readTotalLocked(v.state)
}
