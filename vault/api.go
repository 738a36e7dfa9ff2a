package vault

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// API exposes a read-only, JSON-friendly view of a vault.
type API struct {
	v *Vault
}

// NewAPI creates an API backed by v.
func NewAPI(v *Vault) *API {
	return &API{v: v}
}

// StatusResult summarizes the vault.
type StatusResult struct {
	Admin         common.Address `json:"admin"`
	Token         common.Address `json:"token"`
	Status        string         `json:"status"`
	TotalLocked   *hexutil.U256  `json:"totalLocked"`
	RewardsPool   *hexutil.U256  `json:"rewardsPool"`
	LockDuration  hexutil.Uint64 `json:"lockDuration"`
	RewardRateBPS hexutil.Uint64 `json:"rewardRateBps"`
	Locks         hexutil.Uint   `json:"locks"`
	Logs          hexutil.Uint64 `json:"logs"`
}

// LockResult is the JSON form of a Lock.
type LockResult struct {
	Holder    common.Address `json:"holder"`
	Amount    *hexutil.U256  `json:"amount"`
	LockedAt  hexutil.Uint64 `json:"lockedAt"`
	MaturesAt hexutil.Uint64 `json:"maturesAt"`
}

// LogResult is the JSON form of a Log.
type LogResult struct {
	Kind    string         `json:"kind"`
	Account common.Address `json:"account"`
	Amount  *hexutil.U256  `json:"amount,omitempty"`
	Time    hexutil.Uint64 `json:"time"`
	Index   hexutil.Uint64 `json:"index"`
}

func newLockResult(l *Lock) *LockResult {
	return &LockResult{
		Holder:    l.Holder,
		Amount:    (*hexutil.U256)(l.Amount),
		LockedAt:  hexutil.Uint64(l.LockedAt),
		MaturesAt: hexutil.Uint64(l.MaturesAt),
	}
}

// Status returns the vault totals and parameters.
func (api *API) Status(_ context.Context) *StatusResult {
	v := api.v
	v.mu.Lock()
	defer v.mu.Unlock()
	return &StatusResult{
		Admin:         readAdmin(v.state),
		Token:         readToken(v.state),
		Status:        readStatus(v.state).String(),
		TotalLocked:   (*hexutil.U256)(readTotalLocked(v.state)),
		RewardsPool:   (*hexutil.U256)(readRewardsPool(v.state)),
		LockDuration:  hexutil.Uint64(readUint64(v.state, lockDurationSlot)),
		RewardRateBPS: hexutil.Uint64(readUint64(v.state, rewardRateSlot)),
		Locks:         hexutil.Uint(len(readLiveLocks(v.state))),
		Logs:          hexutil.Uint64(readUint64(v.state, logCountSlot)),
	}
}

// GetLock returns holder's live lock, or nil.
func (api *API) GetLock(_ context.Context, holder common.Address) *LockResult {
	l, ok := api.v.GetLock(holder)
	if !ok {
		return nil
	}
	return newLockResult(l)
}

// Locks returns every live lock ordered by holder address.
func (api *API) Locks(_ context.Context) []*LockResult {
	locks := api.v.Locks()
	results := make([]*LockResult, len(locks))
	for i, l := range locks {
		results[i] = newLockResult(l)
	}
	return results
}

// LockedTokens returns the amount locked by holder.
func (api *API) LockedTokens(_ context.Context, holder common.Address) *hexutil.U256 {
	return (*hexutil.U256)(api.v.LockedTokens(holder))
}

// Logs returns committed logs from index from, at most limit of them.
func (api *API) Logs(_ context.Context, from, limit hexutil.Uint64) ([]*LogResult, error) {
	logs, err := api.v.Logs(uint64(from), uint64(limit))
	if err != nil {
		return nil, err
	}
	results := make([]*LogResult, len(logs))
	for i, l := range logs {
		results[i] = &LogResult{
			Kind:    l.Kind.String(),
			Account: l.Account,
			Amount:  (*hexutil.U256)(l.Amount),
			Time:    hexutil.Uint64(l.Time),
			Index:   hexutil.Uint64(l.Index),
		}
	}
	return results, nil
}
