// Package vault implements a custodial token lock vault as a native system
// contract.
//
// Accounts deposit the vault token with Lock and may hold at most one live
// lock each. An administrator seeds a shared reward pool and may pause new
// deposits. Once a lock matures its holder calls Unlock and receives the
// principal plus a share of the pool. All state lives in storage slots under
// params.VaultAddress; every operation either applies completely or leaves the
// state untouched.
package vault

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/token"
)

// LockStatus is the state of the pause gate.
type LockStatus uint8

const (
	// Active accepts new deposits.
	Active LockStatus = 0
	// Paused rejects new deposits; existing locks are unaffected.
	Paused LockStatus = 1
)

func (s LockStatus) String() string {
	switch s {
	case Active:
		return "active"
	case Paused:
		return "paused"
	}
	return "unknown"
}

// Lock is one account's outstanding deposit.
type Lock struct {
	Holder    common.Address
	Amount    *uint256.Int
	LockedAt  uint64 // unix seconds
	MaturesAt uint64 // unix seconds
}

// Matured reports whether the lock may be withdrawn at now.
func (l *Lock) Matured(now uint64) bool {
	return now >= l.MaturesAt
}

// Sentinel errors returned by vault operations.
var (
	ErrUnauthorized     = errors.New("vault: caller is not the owner")
	ErrPaused           = errors.New("vault: lock is currently paused")
	ErrAlreadyPaused    = errors.New("vault: lock is currently paused")
	ErrAlreadyActive    = errors.New("vault: lock is currently active")
	ErrDuplicateLock    = errors.New("vault: Active lock found")
	ErrNoActiveLock     = errors.New("vault: No active lock found")
	ErrStillLocked      = errors.New("vault: stakes is currently locked")
	ErrZeroAmount       = errors.New("vault: amount must be positive")
	ErrAmountOverflow   = errors.New("vault: amount overflows 256 bits")
	ErrTransferFailed   = errors.New("vault: token transfer failed")
	ErrCustodyInvariant = errors.New("vault: custody balance below payout")

	ErrNoAdmin         = errors.New("vault: admin address not configured")
	ErrGenesisMismatch = errors.New("vault: stored genesis does not match configuration")
)

// ErrInsufficientAllowance is propagated from the token ledger when a deposit
// exceeds what the caller approved. It is always wrapped in ErrTransferFailed.
var ErrInsufficientAllowance = token.ErrInsufficientAllowance
