package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/tos-network/lockvault/params"
	"github.com/tos-network/lockvault/sysaction"
)

// Handler implements sysaction.Handler for TOKEN_* actions against the ledger
// at a fixed address.
type Handler struct {
	addr common.Address
}

// NewHandler returns a handler for the TOS20 ledger at addr.
func NewHandler(addr common.Address) *Handler {
	return &Handler{addr: addr}
}

func (h *Handler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionTokenApprove, sysaction.ActionTokenTransfer:
		return true
	}
	return false
}

func (h *Handler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	// Vault custody moves only through vault operations.
	if ctx.From == params.VaultAddress {
		return ErrCustodyAccount
	}
	ledger := New(ctx.StateDB, h.addr)

	switch sa.Action {
	case sysaction.ActionTokenApprove:
		var p sysaction.TokenApprovePayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("approve: %w", err)
		}
		if !common.IsHexAddress(p.Spender) {
			return fmt.Errorf("approve: invalid spender address: %s", p.Spender)
		}
		amount, err := sysaction.ParseAmount(p.Amount)
		if err != nil {
			return fmt.Errorf("approve: %w", err)
		}
		return ledger.Approve(ctx.From, common.HexToAddress(p.Spender), amount)

	case sysaction.ActionTokenTransfer:
		var p sysaction.TokenTransferPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("transfer: %w", err)
		}
		if !common.IsHexAddress(p.To) {
			return fmt.Errorf("transfer: invalid recipient address: %s", p.To)
		}
		amount, err := sysaction.ParseAmount(p.Amount)
		if err != nil {
			return fmt.Errorf("transfer: %w", err)
		}
		return ledger.Transfer(ctx.From, common.HexToAddress(p.To), amount)
	}
	return fmt.Errorf("token handler: unsupported action %q", sa.Action)
}
