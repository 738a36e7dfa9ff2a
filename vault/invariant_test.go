package vault

import (
	"math/rand"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	mapset "github.com/deckarep/golang-set"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/params"
)

const actorSupply = 1000

// checkInvariants verifies the properties every reachable state must hold.
func checkInvariants(t testing.TB, v *Vault) {
	t.Helper()

	sum := new(uint256.Int)
	seen := mapset.NewThreadUnsafeSet()
	for _, l := range v.Locks() {
		if !seen.Add(l.Holder) {
			t.Fatalf("holder %s has more than one lock", l.Holder.Hex())
		}
		if l.Amount.IsZero() {
			t.Fatalf("live lock with zero amount: %s", spew.Sdump(l))
		}
		sum.Add(sum, l.Amount)
	}
	if n := readHolderCount(v.state); n != uint64(seen.Cardinality()) {
		t.Fatalf("holder index lists %d holders, %d live locks", n, seen.Cardinality())
	}
	total, pool := v.TotalLocked(), v.RewardsPool()
	if !sum.Eq(total) {
		t.Fatalf("totalLocked %v != sum of locks %v\n%s", total, sum, spew.Sdump(viewOf(v)))
	}

	if un := readUnallocated(v.state); un.Gt(pool) {
		t.Fatalf("unallocated %v exceeds pool %v", un, pool)
	}

	// Every token the vault holds is either locked principal or pool.
	custody := v.BalanceOf(params.VaultAddress)
	if want := new(uint256.Int).Add(total, pool); !custody.Eq(want) {
		t.Fatalf("custody %v != totalLocked+pool %v\n%s", custody, want, spew.Sdump(viewOf(v)))
	}

	// Tokens are only moved, never minted or burned.
	supply := new(uint256.Int).Set(custody)
	for _, a := range actors {
		supply.Add(supply, v.BalanceOf(a))
	}
	if want := u(uint64(len(actors)) * actorSupply); !supply.Eq(want) {
		t.Fatalf("supply %v, want %v", supply, want)
	}
}

// walk drives the vault with one operation per input byte pair and checks the
// invariants after every step.
func walk(t testing.TB, v *Vault, clock *ManualClock, input []byte) {
	for i := 0; i+1 < len(input); i += 2 {
		op, arg := input[i], input[i+1]
		who := actors[int(arg)%len(actors)]
		amount := uint64(arg) * 3

		poolBefore := v.RewardsPool()
		lockBefore, hadLock := v.GetLock(who)

		switch op % 7 {
		case 0:
			approve(t, v, who, amount)
			v.Lock(who, u(amount))
		case 1:
			receipt, err := v.Unlock(who)
			if err == nil {
				paid := receipt.Logs[0].Amount
				if !hadLock {
					t.Fatalf("unlock paid %v without a lock", paid)
				}
				reward := new(uint256.Int).Sub(paid, lockBefore.Amount)
				if reward.Gt(poolBefore) {
					t.Fatalf("reward %v exceeds pool %v", reward, poolBefore)
				}
				if got := new(uint256.Int).Sub(poolBefore, reward); !got.Eq(v.RewardsPool()) {
					t.Fatalf("pool %v, want %v", v.RewardsPool(), got)
				}
			}
		case 2:
			approve(t, v, who, amount)
			v.SeedRewards(who, u(amount))
		case 3:
			v.Pause(who)
		case 4:
			v.Unpause(who)
		case 5:
			clock.Advance(time.Duration(arg) * 24 * time.Hour)
		case 6:
			v.Lock(who, u(amount)) // without approval
		}
		checkInvariants(t, v)
	}
}

func TestRandomWalkInvariants(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		v, clock := newTestVault(t)
		rng := rand.New(rand.NewSource(seed))
		input := make([]byte, 400)
		rng.Read(input)
		walk(t, v, clock, input)
	}
}

func FuzzVaultInvariants(f *testing.F) {
	f.Add([]byte{0, 33, 2, 0, 5, 40, 1, 33})
	f.Add([]byte{0, 1, 0, 2, 0, 3, 3, 0, 0, 1, 4, 0, 5, 255, 1, 1, 1, 2})
	f.Add([]byte{2, 100, 0, 101, 0, 101, 5, 30, 1, 101, 1, 101})
	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > 512 {
			input = input[:512]
		}
		v, clock := newTestVault(t)
		walk(t, v, clock, input)
	})
}
