package token

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/core/vm"
)

// TOS20 is a fungible token ledger whose balances and allowances live in
// storage slots under its address. It shares the caller's StateDB, so its
// writes commit and revert together with the caller's own.
type TOS20 struct {
	db   vm.StateDB
	addr common.Address
}

var _ Ledger = (*TOS20)(nil)

// New binds a TOS20 ledger at addr to db.
func New(db vm.StateDB, addr common.Address) *TOS20 {
	return &TOS20{db: db, addr: addr}
}

// Address returns the ledger address.
func (t *TOS20) Address() common.Address { return t.addr }

// BalanceOf returns the balance of account.
func (t *TOS20) BalanceOf(account common.Address) *uint256.Int {
	return readAmount(t.db, t.addr, accountSlot(account, "balance"))
}

// Allowance returns how much spender may still move out of owner's balance.
func (t *TOS20) Allowance(owner, spender common.Address) *uint256.Int {
	return readAmount(t.db, t.addr, allowanceSlot(owner, spender))
}

// TotalSupply returns the sum of all credited balances.
func (t *TOS20) TotalSupply() *uint256.Int {
	return readAmount(t.db, t.addr, totalSupplySlot)
}

// Transfer moves amount from from to to.
func (t *TOS20) Transfer(from, to common.Address, amount *uint256.Int) error {
	if amount == nil {
		amount = new(uint256.Int)
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	fromBal := t.BalanceOf(from)
	if fromBal.Lt(amount) {
		return ErrInsufficientBalance
	}
	if from == to {
		return nil
	}
	toBal, overflow := new(uint256.Int).AddOverflow(t.BalanceOf(to), amount)
	if overflow {
		return ErrBalanceOverflow
	}
	writeAmount(t.db, t.addr, accountSlot(from, "balance"), new(uint256.Int).Sub(fromBal, amount))
	writeAmount(t.db, t.addr, accountSlot(to, "balance"), toBal)
	return nil
}

// TransferFrom moves amount from from to to, consuming spender's allowance.
// Every check runs before the first write.
func (t *TOS20) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	if amount == nil {
		amount = new(uint256.Int)
	}
	allowed := t.Allowance(from, spender)
	if allowed.Lt(amount) {
		return ErrInsufficientAllowance
	}
	if t.BalanceOf(from).Lt(amount) {
		return ErrInsufficientBalance
	}
	if err := t.Transfer(from, to, amount); err != nil {
		return err
	}
	writeAmount(t.db, t.addr, allowanceSlot(from, spender), new(uint256.Int).Sub(allowed, amount))
	return nil
}

// Approve sets spender's allowance over owner's balance to amount.
func (t *TOS20) Approve(owner, spender common.Address, amount *uint256.Int) error {
	if amount == nil {
		amount = new(uint256.Int)
	}
	if spender == (common.Address{}) {
		return ErrZeroAddress
	}
	writeAmount(t.db, t.addr, allowanceSlot(owner, spender), amount)
	return nil
}

// Credit adds amount to account's balance and to the total supply. It is
// only used to apply genesis allocations.
func (t *TOS20) Credit(account common.Address, amount *uint256.Int) error {
	if account == (common.Address{}) {
		return ErrZeroAddress
	}
	bal, overflow := new(uint256.Int).AddOverflow(t.BalanceOf(account), amount)
	if overflow {
		return ErrBalanceOverflow
	}
	supply, overflow := new(uint256.Int).AddOverflow(t.TotalSupply(), amount)
	if overflow {
		return ErrBalanceOverflow
	}
	writeAmount(t.db, t.addr, accountSlot(account, "balance"), bal)
	writeAmount(t.db, t.addr, totalSupplySlot, supply)
	return nil
}
