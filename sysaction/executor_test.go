package sysaction

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tos-network/lockvault/params"
)

type recordingHandler struct {
	kinds []ActionKind
	seen  []*Context
}

func (h *recordingHandler) CanHandle(kind ActionKind) bool {
	for _, k := range h.kinds {
		if k == kind {
			return true
		}
	}
	return false
}

func (h *recordingHandler) Handle(ctx *Context, sa *SysAction) error {
	h.seen = append(h.seen, ctx)
	return nil
}

func TestRegistryDispatch(t *testing.T) {
	vaultH := &recordingHandler{kinds: []ActionKind{ActionVaultPause}}
	tokenH := &recordingHandler{kinds: []ActionKind{ActionTokenApprove}}
	reg := NewRegistry(vaultH)
	reg.Register(tokenH)

	ctx := &Context{From: common.HexToAddress("0x01"), Time: 42}
	data, _ := MakeSysAction(ActionTokenApprove, nil)
	gas, err := reg.Execute(ctx, data)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if gas != params.SysActionGas {
		t.Fatalf("gas: have %d want %d", gas, params.SysActionGas)
	}
	if len(tokenH.seen) != 1 || len(vaultH.seen) != 0 {
		t.Fatalf("dispatched to wrong handler: vault %d token %d", len(vaultH.seen), len(tokenH.seen))
	}
	if tokenH.seen[0].Time != 42 {
		t.Fatalf("context time: have %d want 42", tokenH.seen[0].Time)
	}

	data, _ = MakeSysAction(ActionVaultUnlock, nil)
	if _, err := reg.Execute(ctx, data); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("want ErrUnknownAction, got %v", err)
	}
	if gas, err := reg.Execute(ctx, nil); !errors.Is(err, ErrInvalidSysAction) || gas != params.SysActionGas {
		t.Fatalf("empty data: gas %d err %v", gas, err)
	}
}
