package vault

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/lockvault/core/vm"
	"github.com/tos-network/lockvault/params"
	"github.com/tos-network/lockvault/token"
	"github.com/tos-network/lockvault/tosdb"
	"github.com/tos-network/lockvault/tosdb/leveldb"
)

// reentrantLedger calls back into the vault from inside the payout transfer,
// the way a hostile token contract would.
type reentrantLedger struct {
	*token.TOS20
	db vm.StateDB
	v  **Vault

	observed struct {
		called      bool
		lockLive    bool
		totalLocked *uint256.Int
		pool        *uint256.Int
		reentryErr  error
	}
}

func (l *reentrantLedger) Transfer(from, to common.Address, amount *uint256.Int) error {
	if from == params.VaultAddress && !l.observed.called {
		l.observed.called = true
		_, l.observed.lockLive = readLock(l.db, to)
		l.observed.totalLocked = readTotalLocked(l.db)
		l.observed.pool = readRewardsPool(l.db)
		l.observed.reentryErr = (*l.v).unlock(l.db, to, ^uint64(0))
	}
	return l.TOS20.Transfer(from, to, amount)
}

func TestUnlockSettlesBeforePayout(t *testing.T) {
	var (
		vp     *Vault
		ledger *reentrantLedger
	)
	v, clock := newTestVault(t, WithLedger(func(db vm.StateDB, addr common.Address) token.Ledger {
		ledger = &reentrantLedger{TOS20: token.New(db, addr), db: db, v: &vp}
		return ledger
	}))
	vp = v

	approve(t, v, alice, 100)
	approve(t, v, admin, 100)
	_, err := v.Lock(alice, u(100))
	require.NoError(t, err)
	_, err = v.SeedRewards(admin, u(100))
	require.NoError(t, err)

	clock.Advance(params.DefaultLockDuration)
	receipt, err := v.Unlock(alice)
	require.NoError(t, err)
	require.Equal(t, u(140), receipt.Logs[0].Amount)

	obs := ledger.observed
	require.True(t, obs.called)
	require.False(t, obs.lockLive, "lock still live during payout")
	require.True(t, obs.totalLocked.IsZero(), "totalLocked not settled during payout")
	require.Equal(t, u(60), obs.pool, "pool not debited during payout")
	require.ErrorIs(t, obs.reentryErr, ErrNoActiveLock)

	// The reentrant attempt paid nothing extra.
	require.Equal(t, u(1040), v.BalanceOf(alice))
	require.Equal(t, u(60), v.RewardsPool())
	checkInvariants(t, v)
}

// hollowLedger accepts deposits without moving any tokens.
type hollowLedger struct {
	*token.TOS20
}

func (hollowLedger) TransferFrom(spender, from, to common.Address, amount *uint256.Int) error {
	return nil
}

func TestUnlockRefusesUnderfundedCustody(t *testing.T) {
	v, clock := newTestVault(t, WithLedger(func(db vm.StateDB, addr common.Address) token.Ledger {
		return hollowLedger{token.New(db, addr)}
	}))
	_, err := v.Lock(alice, u(100))
	require.NoError(t, err)

	clock.Advance(params.DefaultLockDuration)
	before := viewOf(v)
	_, err = v.Unlock(alice)
	require.ErrorIs(t, err, ErrCustodyInvariant)
	require.Equal(t, before, viewOf(v))

	l, ok := v.GetLock(alice)
	require.True(t, ok)
	require.Equal(t, u(100), l.Amount)
}

// failingLedger rejects every payout.
type failingLedger struct {
	*token.TOS20
}

func (failingLedger) Transfer(from, to common.Address, amount *uint256.Int) error {
	return token.ErrZeroAddress
}

func TestFailedPayoutRevertsUnlock(t *testing.T) {
	v, clock := newTestVault(t, WithLedger(func(db vm.StateDB, addr common.Address) token.Ledger {
		return failingLedger{token.New(db, addr)}
	}))
	approve(t, v, alice, 100)
	_, err := v.Lock(alice, u(100))
	require.NoError(t, err)

	clock.Advance(params.DefaultLockDuration)
	before := viewOf(v)
	_, err = v.Unlock(alice)
	require.ErrorIs(t, err, ErrTransferFailed)
	require.ErrorIs(t, err, token.ErrZeroAddress)
	require.Equal(t, before, viewOf(v))
}

var errFlakyRead = errors.New("flaky read")

// flakyStore fails every Get while fail is set.
type flakyStore struct {
	tosdb.KeyValueStore
	fail bool
}

func (f *flakyStore) Get(key []byte) ([]byte, error) {
	if f.fail {
		return nil, errFlakyRead
	}
	return f.KeyValueStore.Get(key)
}

func TestTransientReadErrorRejectsOnlyOneOperation(t *testing.T) {
	mem := leveldb.NewMemory()
	t.Cleanup(func() { mem.Close() })
	db := &flakyStore{KeyValueStore: mem}

	clock := NewManualClock(genesisTime)
	v, err := New(db, testConfig(), WithClock(clock), WithGenesisAlloc(testAlloc(1000, actors...)))
	require.NoError(t, err)
	approve(t, v, alice, 100)

	db.fail = true
	_, err = v.Lock(alice, u(100))
	require.ErrorIs(t, err, errFlakyRead)

	db.fail = false
	_, err = v.Lock(alice, u(100))
	require.NoError(t, err)
	require.Equal(t, u(100), v.TotalLocked())
	checkInvariants(t, v)
}
