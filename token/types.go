// Package token defines the deposit-token capability consumed by the vault
// and a storage-slot backed TOS20 ledger implementing it.
package token

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Ledger is the token capability the vault depends on. The vault never mints
// or burns; it only moves existing balances.
type Ledger interface {
	// Address returns the ledger's own address.
	Address() common.Address

	BalanceOf(account common.Address) *uint256.Int
	Allowance(owner, spender common.Address) *uint256.Int

	// Transfer moves amount from from to to.
	Transfer(from, to common.Address, amount *uint256.Int) error

	// TransferFrom moves amount from from to to on behalf of spender,
	// consuming spender's allowance.
	TransferFrom(spender, from, to common.Address, amount *uint256.Int) error
}

// Sentinel errors returned by the TOS20 ledger.
var (
	ErrInsufficientBalance   = errors.New("TOS20: insufficient balance")
	ErrInsufficientAllowance = errors.New("TOS20: insufficient allowance")
	ErrZeroAddress           = errors.New("TOS20: zero address")
	ErrBalanceOverflow       = errors.New("TOS20: balance overflow")
	ErrCustodyAccount        = errors.New("TOS20: custody account cannot act")
)
