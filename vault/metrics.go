package vault

import (
	"math"

	"github.com/ethereum/go-ethereum/metrics"
	"github.com/holiman/uint256"
)

var (
	lockMeter   = metrics.NewRegisteredMeter("vault/lock", nil)
	unlockMeter = metrics.NewRegisteredMeter("vault/unlock", nil)
	seedMeter   = metrics.NewRegisteredMeter("vault/seed", nil)
	pauseMeter  = metrics.NewRegisteredMeter("vault/pause", nil)
	rejectMeter = metrics.NewRegisteredMeter("vault/reject", nil)

	totalLockedGauge = metrics.NewRegisteredGauge("vault/total_locked", nil)
	rewardsPoolGauge = metrics.NewRegisteredGauge("vault/rewards_pool", nil)
)

// gaugeValue saturates x to the int64 range of a gauge.
func gaugeValue(x *uint256.Int) int64 {
	if !x.IsUint64() || x.Uint64() > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(x.Uint64())
}

func markLogs(logs []*Log) {
	for _, l := range logs {
		switch l.Kind {
		case EventLocked:
			lockMeter.Mark(1)
		case EventUnlocked:
			unlockMeter.Mark(1)
		case EventRewardsSeeded:
			seedMeter.Mark(1)
		case EventPaused, EventUnpaused:
			pauseMeter.Mark(1)
		}
	}
}
