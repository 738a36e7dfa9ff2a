package vault

import (
	"fmt"

	"github.com/tos-network/lockvault/sysaction"
)

// handler dispatches VAULT_* system actions. It runs inside the vault's own
// transaction, so it calls the unlocked operation bodies directly.
type handler struct {
	v *Vault
}

func (h *handler) CanHandle(kind sysaction.ActionKind) bool {
	switch kind {
	case sysaction.ActionVaultLock,
		sysaction.ActionVaultUnlock,
		sysaction.ActionVaultSeedRewards,
		sysaction.ActionVaultPause,
		sysaction.ActionVaultUnpause:
		return true
	}
	return false
}

func (h *handler) Handle(ctx *sysaction.Context, sa *sysaction.SysAction) error {
	switch sa.Action {
	case sysaction.ActionVaultLock:
		var p sysaction.AmountPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("lock: %w", err)
		}
		amount, err := sysaction.ParseAmount(p.Amount)
		if err != nil {
			return fmt.Errorf("lock: %w", err)
		}
		return h.v.lock(ctx.StateDB, ctx.From, amount, ctx.Time)

	case sysaction.ActionVaultSeedRewards:
		var p sysaction.AmountPayload
		if err := sysaction.DecodePayload(sa, &p); err != nil {
			return fmt.Errorf("seed rewards: %w", err)
		}
		amount, err := sysaction.ParseAmount(p.Amount)
		if err != nil {
			return fmt.Errorf("seed rewards: %w", err)
		}
		return h.v.seedRewards(ctx.StateDB, ctx.From, amount, ctx.Time)

	case sysaction.ActionVaultUnlock:
		return h.v.unlock(ctx.StateDB, ctx.From, ctx.Time)

	case sysaction.ActionVaultPause:
		return h.v.pause(ctx.StateDB, ctx.From, ctx.Time)

	case sysaction.ActionVaultUnpause:
		return h.v.unpause(ctx.StateDB, ctx.From, ctx.Time)
	}
	return fmt.Errorf("vault handler: unsupported action %q", sa.Action)
}
