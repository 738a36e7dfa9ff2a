package vault

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/tos-network/lockvault/core/state"
	"github.com/tos-network/lockvault/params"
)

// Config holds the vault initialization parameters. Admin, Token,
// LockDuration and RewardRateBPS are persisted when the vault is first
// created; later opens keep the stored values.
type Config struct {
	Admin         common.Address
	Token         common.Address `toml:",omitempty"`
	LockDuration  time.Duration
	RewardRateBPS uint64
	CacheSize     int `toml:",omitempty"`
}

// DefaultConfig contains default settings for a new vault.
var DefaultConfig = Config{
	Token:         params.TokenAddress,
	LockDuration:  params.DefaultLockDuration,
	RewardRateBPS: params.DefaultRewardRateBPS,
	CacheSize:     state.DefaultCacheSize,
}

// sanitize checks the provided user configurations and changes anything
// that's unreasonable or unworkable.
func (c Config) sanitize() Config {
	conf := c
	if conf.LockDuration < 0 {
		log.Warn("Sanitizing invalid vault lock duration", "provided", conf.LockDuration, "updated", DefaultConfig.LockDuration)
		conf.LockDuration = DefaultConfig.LockDuration
	}
	if rem := conf.LockDuration % time.Second; rem != 0 {
		log.Warn("Truncating vault lock duration to whole seconds", "provided", conf.LockDuration, "updated", conf.LockDuration-rem)
		conf.LockDuration -= rem
	}
	if conf.RewardRateBPS > params.MaxRewardRateBPS {
		log.Warn("Sanitizing invalid vault reward rate", "provided", conf.RewardRateBPS, "updated", params.MaxRewardRateBPS)
		conf.RewardRateBPS = params.MaxRewardRateBPS
	}
	if conf.CacheSize < 1 {
		log.Warn("Sanitizing invalid vault cache size", "provided", conf.CacheSize, "updated", DefaultConfig.CacheSize)
		conf.CacheSize = DefaultConfig.CacheSize
	}
	return conf
}
