package state

import "github.com/ethereum/go-ethereum/metrics"

var (
	storageUpdatedMeter   = metrics.NewRegisteredMeter("state/update/storage", nil)
	storageDeletedMeter   = metrics.NewRegisteredMeter("state/delete/storage", nil)
	storageCommittedMeter = metrics.NewRegisteredMeter("state/commit/storage", nil)
	storageRevertedMeter  = metrics.NewRegisteredMeter("state/revert/storage", nil)
	cacheHitMeter         = metrics.NewRegisteredMeter("state/cache/hit", nil)
	cacheMissMeter        = metrics.NewRegisteredMeter("state/cache/miss", nil)
)
