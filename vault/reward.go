package vault

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/core/vm"
	"github.com/tos-network/lockvault/params"
)

// AccruedReward returns the pool units credited to a lock of lockAmount since
// it was opened: lockAmount * (rewardPerShare - debt) / params.RewardPrecision.
// It depends only on the lock and the seeds made while it was live, so locks
// of equal amount opened at the same time accrue the same reward regardless
// of the order in which they unlock. An overflowing product saturates.
func AccruedReward(lockAmount, rewardPerShare, debt *uint256.Int) *uint256.Int {
	if !rewardPerShare.Gt(debt) {
		return new(uint256.Int)
	}
	diff := new(uint256.Int).Sub(rewardPerShare, debt)
	accrued, overflow := new(uint256.Int).MulDivOverflow(lockAmount, diff, uint256.NewInt(params.RewardPrecision))
	if overflow {
		return new(uint256.Int).SetAllOne()
	}
	return accrued
}

// ComputeReward returns the reward paid to a matured lock of lockAmount that
// has accrued the given pool units.
//
//	reward = min(lockAmount*rateBPS/10000, accrued, pool)
//
// The result never exceeds pool. rateBPS above params.MaxRewardRateBPS is
// clamped.
func ComputeReward(lockAmount, accrued, pool *uint256.Int, rateBPS uint64) *uint256.Int {
	if lockAmount.IsZero() || accrued.IsZero() || pool.IsZero() {
		return new(uint256.Int)
	}
	if rateBPS > params.MaxRewardRateBPS {
		rateBPS = params.MaxRewardRateBPS
	}
	reward := new(uint256.Int).Set(pool)
	if accrued.Lt(reward) {
		reward.Set(accrued)
	}
	yield, overflow := new(uint256.Int).MulDivOverflow(lockAmount, uint256.NewInt(rateBPS), uint256.NewInt(params.BPSDenominator))
	if !overflow && yield.Lt(reward) {
		reward = yield
	}
	return reward
}

// distributeRewards credits amount plus any unallocated pool units to every
// live lock in proportion to its principal. With nothing locked, or when the
// accumulator would overflow, the units wait for the next seed. Rounding dust
// stays unallocated.
func distributeRewards(db vm.StateDB, amount *uint256.Int) {
	pending := new(uint256.Int).Add(readUnallocated(db), amount)
	total := readTotalLocked(db)
	if total.IsZero() {
		writeUnallocated(db, pending)
		return
	}
	precision := uint256.NewInt(params.RewardPrecision)
	delta, overflow := new(uint256.Int).MulDivOverflow(pending, precision, total)
	if overflow || delta.IsZero() {
		writeUnallocated(db, pending)
		return
	}
	rps, overflow := new(uint256.Int).AddOverflow(readRewardPerShare(db), delta)
	if overflow {
		writeUnallocated(db, pending)
		return
	}
	writeRewardPerShare(db, rps)

	credited, _ := new(uint256.Int).MulDivOverflow(delta, total, precision)
	writeUnallocated(db, pending.Sub(pending, credited))
}

// settleReward computes the reward of a matured lock and debits it from the
// pool. The accrued part the yield cap withholds goes back to the unallocated
// units.
func settleReward(db vm.StateDB, l *Lock) *uint256.Int {
	pool := readRewardsPool(db)
	accrued := AccruedReward(l.Amount, readRewardPerShare(db), readRewardDebt(db, l.Holder))
	reward := ComputeReward(l.Amount, accrued, pool, readUint64(db, rewardRateSlot))

	remaining := new(uint256.Int).Sub(pool, reward)
	writeRewardsPool(db, remaining)

	unallocated, overflow := new(uint256.Int).AddOverflow(readUnallocated(db), new(uint256.Int).Sub(accrued, reward))
	if overflow || unallocated.Gt(remaining) {
		unallocated = remaining
	}
	writeUnallocated(db, unallocated)
	return reward
}

// seedRewards credits the reward pool with amount pulled from the admin.
func (v *Vault) seedRewards(db vm.StateDB, caller common.Address, amount *uint256.Int, now uint64) error {
	if err := requireAdmin(db, caller); err != nil {
		return err
	}
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	pool, overflow := new(uint256.Int).AddOverflow(readRewardsPool(db), amount)
	if overflow {
		return ErrAmountOverflow
	}
	writeRewardsPool(db, pool)
	distributeRewards(db, amount)

	ledger := v.ledgerFn(db, readToken(db))
	if err := ledger.TransferFrom(params.VaultAddress, caller, params.VaultAddress, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return v.emit(db, EventRewardsSeeded, caller, amount, now)
}

// SeedRewards moves amount from the admin into the reward pool. The admin must
// have approved the vault for at least amount.
func (v *Vault) SeedRewards(caller common.Address, amount *uint256.Int) (*Receipt, error) {
	return v.transact(func(db vm.StateDB, now uint64) error {
		return v.seedRewards(db, caller, amount, now)
	})
}

// RewardsPool returns the undistributed reward balance.
func (v *Vault) RewardsPool() *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readRewardsPool(v.state)
}

// PendingReward returns the reward holder's live lock would receive if it
// were unlocked now, ignoring maturity.
func (v *Vault) PendingReward(holder common.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()

	l, ok := readLock(v.state, holder)
	if !ok {
		return new(uint256.Int)
	}
	accrued := AccruedReward(l.Amount, readRewardPerShare(v.state), readRewardDebt(v.state, holder))
	return ComputeReward(l.Amount, accrued, readRewardsPool(v.state), readUint64(v.state, rewardRateSlot))
}

// RewardRate returns the reward yield cap in basis points.
func (v *Vault) RewardRate() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readUint64(v.state, rewardRateSlot)
}
