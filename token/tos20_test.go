package token

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/core/state"
	"github.com/tos-network/lockvault/params"
	"github.com/tos-network/lockvault/tosdb/leveldb"
)

func newTestState(t *testing.T) *state.StateDB {
	t.Helper()
	db := leveldb.NewMemory()
	t.Cleanup(func() { db.Close() })
	s, err := state.New(db, 0)
	if err != nil {
		t.Fatalf("failed to create state db: %v", err)
	}
	return s
}

var (
	alice = common.HexToAddress("0x00000000000000000000000000000000000a11ce")
	bob   = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
	vault = params.VaultAddress
)

func u(n uint64) *uint256.Int { return uint256.NewInt(n) }

func TestCreditAndTransfer(t *testing.T) {
	st := newTestState(t)
	tok := New(st, params.TokenAddress)

	if err := tok.Credit(alice, u(100)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := tok.Transfer(alice, bob, u(30)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := tok.BalanceOf(alice); !got.Eq(u(70)) {
		t.Fatalf("alice balance: have %v want 70", got)
	}
	if got := tok.BalanceOf(bob); !got.Eq(u(30)) {
		t.Fatalf("bob balance: have %v want 30", got)
	}
	if got := tok.TotalSupply(); !got.Eq(u(100)) {
		t.Fatalf("total supply: have %v want 100", got)
	}
}

func TestTransferRejections(t *testing.T) {
	st := newTestState(t)
	tok := New(st, params.TokenAddress)
	tok.Credit(alice, u(10))

	if err := tok.Transfer(alice, bob, u(11)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
	if err := tok.Transfer(alice, common.Address{}, u(1)); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("want ErrZeroAddress, got %v", err)
	}
	// Self-transfer is a no-op.
	if err := tok.Transfer(alice, alice, u(10)); err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	if got := tok.BalanceOf(alice); !got.Eq(u(10)) {
		t.Fatalf("alice balance after failures: have %v want 10", got)
	}
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	st := newTestState(t)
	tok := New(st, params.TokenAddress)
	tok.Credit(alice, u(100))

	if err := tok.TransferFrom(vault, alice, vault, u(1)); !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("want ErrInsufficientAllowance, got %v", err)
	}
	if err := tok.Approve(alice, vault, u(60)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := tok.TransferFrom(vault, alice, vault, u(40)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	if got := tok.Allowance(alice, vault); !got.Eq(u(20)) {
		t.Fatalf("allowance: have %v want 20", got)
	}
	if got := tok.BalanceOf(vault); !got.Eq(u(40)) {
		t.Fatalf("vault balance: have %v want 40", got)
	}
}

func TestTransferFromInsufficientBalanceLeavesAllowance(t *testing.T) {
	st := newTestState(t)
	tok := New(st, params.TokenAddress)
	tok.Credit(alice, u(5))
	tok.Approve(alice, vault, u(50))

	if err := tok.TransferFrom(vault, alice, vault, u(6)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("want ErrInsufficientBalance, got %v", err)
	}
	if got := tok.Allowance(alice, vault); !got.Eq(u(50)) {
		t.Fatalf("allowance changed on failure: have %v want 50", got)
	}
}

func TestCreditOverflow(t *testing.T) {
	st := newTestState(t)
	tok := New(st, params.TokenAddress)
	maxAmount := new(uint256.Int).SetAllOne()

	if err := tok.Credit(alice, maxAmount); err != nil {
		t.Fatalf("credit max: %v", err)
	}
	if err := tok.Credit(bob, u(1)); !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("want supply overflow, got %v", err)
	}
}
