package token

import (
	"errors"
	"testing"

	"github.com/tos-network/lockvault/params"
	"github.com/tos-network/lockvault/sysaction"
)

func TestHandlerApproveAndTransfer(t *testing.T) {
	st := newTestState(t)
	tok := New(st, params.TokenAddress)
	tok.Credit(alice, u(100))

	reg := sysaction.NewRegistry(NewHandler(params.TokenAddress))
	ctx := &sysaction.Context{From: alice, StateDB: st}

	data, err := sysaction.MakeSysAction(sysaction.ActionTokenApprove, sysaction.TokenApprovePayload{
		Spender: vault.Hex(),
		Amount:  "25",
	})
	if err != nil {
		t.Fatalf("failed to encode sysaction: %v", err)
	}
	if gas, err := reg.Execute(ctx, data); err != nil {
		t.Fatalf("approve: %v", err)
	} else if gas != params.SysActionGas {
		t.Fatalf("gas: have %d want %d", gas, params.SysActionGas)
	}
	if got := tok.Allowance(alice, vault); !got.Eq(u(25)) {
		t.Fatalf("allowance: have %v want 25", got)
	}

	data, _ = sysaction.MakeSysAction(sysaction.ActionTokenTransfer, sysaction.TokenTransferPayload{
		To:     bob.Hex(),
		Amount: "40",
	})
	if _, err := reg.Execute(ctx, data); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if got := tok.BalanceOf(bob); !got.Eq(u(40)) {
		t.Fatalf("bob balance: have %v want 40", got)
	}
}

func TestHandlerRejectsInvalidPayload(t *testing.T) {
	st := newTestState(t)
	reg := sysaction.NewRegistry(NewHandler(params.TokenAddress))
	ctx := &sysaction.Context{From: alice, StateDB: st}

	data, _ := sysaction.MakeSysAction(sysaction.ActionTokenTransfer, sysaction.TokenTransferPayload{
		To:     bob.Hex(),
		Amount: "-3",
	})
	if _, err := reg.Execute(ctx, data); !errors.Is(err, sysaction.ErrInvalidAmount) {
		t.Fatalf("want ErrInvalidAmount, got %v", err)
	}

	data, _ = sysaction.MakeSysAction(sysaction.ActionTokenApprove, sysaction.TokenApprovePayload{
		Spender: "not-an-address",
		Amount:  "1",
	})
	if _, err := reg.Execute(ctx, data); err == nil {
		t.Fatalf("expected invalid spender error")
	}
}

func TestHandlerRejectsCustodyAccount(t *testing.T) {
	st := newTestState(t)
	tok := New(st, params.TokenAddress)
	tok.Credit(params.VaultAddress, u(100))

	reg := sysaction.NewRegistry(NewHandler(params.TokenAddress))
	ctx := &sysaction.Context{From: params.VaultAddress, StateDB: st}

	data, _ := sysaction.MakeSysAction(sysaction.ActionTokenTransfer, sysaction.TokenTransferPayload{
		To:     bob.Hex(),
		Amount: "40",
	})
	if _, err := reg.Execute(ctx, data); !errors.Is(err, ErrCustodyAccount) {
		t.Fatalf("transfer: want ErrCustodyAccount, got %v", err)
	}
	data, _ = sysaction.MakeSysAction(sysaction.ActionTokenApprove, sysaction.TokenApprovePayload{
		Spender: bob.Hex(),
		Amount:  "40",
	})
	if _, err := reg.Execute(ctx, data); !errors.Is(err, ErrCustodyAccount) {
		t.Fatalf("approve: want ErrCustodyAccount, got %v", err)
	}
	if got := tok.BalanceOf(params.VaultAddress); !got.Eq(u(100)) {
		t.Fatalf("custody balance: have %v want 100", got)
	}
	if got := tok.Allowance(params.VaultAddress, bob); !got.IsZero() {
		t.Fatalf("custody allowance: have %v want 0", got)
	}
}
