// Package sysaction implements the system action protocol used to drive the
// vault and its deposit token.
//
// A system action is a JSON-encoded SysAction message. There is no
// interpreter; the registry dispatches the decoded action to the native
// handler that claims its kind.
package sysaction

import "encoding/json"

// ActionKind identifies the type of system action.
type ActionKind string

const (
	// Vault lifecycle
	ActionVaultLock        ActionKind = "VAULT_LOCK"
	ActionVaultUnlock      ActionKind = "VAULT_UNLOCK"
	ActionVaultSeedRewards ActionKind = "VAULT_SEED_REWARDS"
	ActionVaultPause       ActionKind = "VAULT_PAUSE"
	ActionVaultUnpause     ActionKind = "VAULT_UNPAUSE"

	// Deposit token
	ActionTokenApprove  ActionKind = "TOKEN_APPROVE"
	ActionTokenTransfer ActionKind = "TOKEN_TRANSFER"
)

// SysAction is the top-level envelope of a system action message.
type SysAction struct {
	Action  ActionKind      `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// AmountPayload is the payload for VAULT_LOCK / VAULT_SEED_REWARDS.
// Amount is a base-10 integer in the token's smallest unit.
type AmountPayload struct {
	Amount string `json:"amount"`
}

// TokenApprovePayload is the payload for TOKEN_APPROVE.
type TokenApprovePayload struct {
	Spender string `json:"spender"`
	Amount  string `json:"amount"`
}

// TokenTransferPayload is the payload for TOKEN_TRANSFER.
type TokenTransferPayload struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}
