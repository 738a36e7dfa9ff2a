package vault

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/tos-network/lockvault/params"
	"github.com/tos-network/lockvault/tosdb/leveldb"
)

func TestEventJournal(t *testing.T) {
	v, clock := newTestVault(t)
	approve(t, v, alice, 100)
	approve(t, v, admin, 50)

	_, err := v.Lock(alice, u(100))
	require.NoError(t, err)
	_, err = v.SeedRewards(admin, u(50))
	require.NoError(t, err)
	_, err = v.Pause(admin)
	require.NoError(t, err)
	_, err = v.Lock(bob, u(1)) // rejected, leaves no log
	require.ErrorIs(t, err, ErrPaused)
	_, err = v.Unpause(admin)
	require.NoError(t, err)
	clock.Advance(params.DefaultLockDuration)
	_, err = v.Unlock(alice)
	require.NoError(t, err)

	logs, err := v.Logs(0, 0)
	require.NoError(t, err)
	kinds := make([]EventKind, len(logs))
	for i, l := range logs {
		require.Equal(t, uint64(i), l.Index)
		kinds[i] = l.Kind
	}
	require.Equal(t, []EventKind{EventLocked, EventRewardsSeeded, EventPaused, EventUnpaused, EventUnlocked}, kinds)
	require.Equal(t, uint64(5), v.LogCount())

	require.Equal(t, alice, logs[0].Account)
	require.Equal(t, u(100), logs[0].Amount)
	require.Equal(t, genesisTime, logs[0].Time)
	require.Nil(t, logs[2].Amount)
	require.Equal(t, admin, logs[3].Account)
	require.Equal(t, u(140), logs[4].Amount)
	require.Equal(t, genesisTime+uint64(params.DefaultLockDuration/time.Second), logs[4].Time)

	page, err := v.Logs(1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	require.Equal(t, EventRewardsSeeded, page[0].Kind)
	require.Equal(t, EventPaused, page[1].Kind)

	tail, err := v.Logs(10, 0)
	require.NoError(t, err)
	require.Empty(t, tail)
}

func TestSubscribeLogs(t *testing.T) {
	v, _ := newTestVault(t)
	approve(t, v, alice, 100)

	ch := make(chan []*Log, 4)
	sub := v.SubscribeLogs(ch)
	defer sub.Unsubscribe()

	_, err := v.Lock(alice, u(100))
	require.NoError(t, err)
	_, err = v.Lock(alice, u(100))
	require.ErrorIs(t, err, ErrDuplicateLock)

	select {
	case logs := <-ch:
		require.Len(t, logs, 1)
		require.Equal(t, EventLocked, logs[0].Kind)
	case <-time.After(time.Second):
		t.Fatal("no logs delivered")
	}
	select {
	case logs := <-ch:
		t.Fatalf("unexpected delivery for rejected operation: %v", logs)
	default:
	}
}

func TestEventKindString(t *testing.T) {
	require.Equal(t, "Locked", EventLocked.String())
	require.Equal(t, "Unpaused", EventUnpaused.String())
	require.Equal(t, "EventKind(42)", EventKind(42).String())
	require.Equal(t, "paused", Paused.String())
}

func TestReopenPersistedVault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault")
	clock := NewManualClock(genesisTime)

	db, err := leveldb.New(path, 16, 16, "", false)
	require.NoError(t, err)
	v, err := New(db, testConfig(), WithClock(clock), WithGenesisAlloc(testAlloc(1000, actors...)))
	require.NoError(t, err)
	approve(t, v, alice, 100)
	_, err = v.Lock(alice, u(100))
	require.NoError(t, err)
	_, err = v.Pause(admin)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = leveldb.New(path, 16, 16, "", false)
	require.NoError(t, err)
	defer db.Close()

	cfg := testConfig()
	cfg.LockDuration = time.Hour // stored parameters win
	v, err = New(db, cfg, WithClock(clock), WithGenesisAlloc(testAlloc(5, bob)))
	require.NoError(t, err)
	require.Equal(t, Paused, v.Status())
	require.Equal(t, u(100), v.TotalLocked())
	require.Equal(t, u(100), v.LockedTokens(alice))
	require.Equal(t, u(1000), v.BalanceOf(bob))
	require.Equal(t, params.DefaultLockDuration, v.LockDuration())
	require.Equal(t, uint64(2), v.LogCount())

	logs, err := v.Logs(0, 0)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	require.Equal(t, EventPaused, logs[1].Kind)
}

func TestGenesisMismatch(t *testing.T) {
	db := leveldb.NewMemory()
	defer db.Close()

	_, err := New(db, testConfig())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Admin = bob
	_, err = New(db, cfg)
	require.ErrorIs(t, err, ErrGenesisMismatch)

	cfg = testConfig()
	cfg.Token = common.HexToAddress("0x1234")
	_, err = New(db, cfg)
	require.ErrorIs(t, err, ErrGenesisMismatch)

	// A zero admin adopts the stored one.
	cfg = testConfig()
	cfg.Admin = common.Address{}
	v, err := New(db, cfg)
	require.NoError(t, err)
	require.Equal(t, admin, v.Admin())
}

func TestNewRequiresAdmin(t *testing.T) {
	db := leveldb.NewMemory()
	defer db.Close()

	_, err := New(db, DefaultConfig)
	require.ErrorIs(t, err, ErrNoAdmin)
}
