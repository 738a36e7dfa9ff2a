package vault

import (
	"testing"
	"time"

	"github.com/tos-network/lockvault/core/state"
	"github.com/tos-network/lockvault/params"
)

func TestConfigSanitize(t *testing.T) {
	cfg := Config{
		Admin:         admin,
		LockDuration:  -time.Hour,
		RewardRateBPS: 20_000,
		CacheSize:     0,
	}
	got := cfg.sanitize()
	if got.LockDuration != params.DefaultLockDuration {
		t.Errorf("lock duration: have %v want %v", got.LockDuration, params.DefaultLockDuration)
	}
	if got.RewardRateBPS != params.MaxRewardRateBPS {
		t.Errorf("reward rate: have %d want %d", got.RewardRateBPS, params.MaxRewardRateBPS)
	}
	if got.CacheSize != state.DefaultCacheSize {
		t.Errorf("cache size: have %d want %d", got.CacheSize, state.DefaultCacheSize)
	}
	if got.Admin != admin {
		t.Errorf("admin changed: %s", got.Admin.Hex())
	}

	cfg = Config{LockDuration: 90*time.Second + 500*time.Millisecond, CacheSize: 1}
	if got := cfg.sanitize(); got.LockDuration != 90*time.Second {
		t.Errorf("truncated duration: have %v want 90s", got.LockDuration)
	}
	if got := DefaultConfig.sanitize(); got != DefaultConfig {
		t.Errorf("default config changed by sanitize: %+v", got)
	}
}

func TestZeroLockDurationMaturesImmediately(t *testing.T) {
	cfg := testConfig()
	cfg.LockDuration = 0
	v, _ := newTestVaultWithConfig(t, cfg)

	approve(t, v, alice, 10)
	if _, err := v.Lock(alice, u(10)); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if _, err := v.Unlock(alice); err != nil {
		t.Fatalf("unlock: %v", err)
	}
}
