// Copyright 2015 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

// Package utils contains internal helper functions for lockvault commands.
package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/fdlimit"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	gopsutil "github.com/shirou/gopsutil/mem"
	"github.com/tos-network/lockvault/internal/flags"
	"github.com/tos-network/lockvault/metrics"
	"github.com/tos-network/lockvault/params"
	"github.com/tos-network/lockvault/tosdb/leveldb"
	"github.com/tos-network/lockvault/vault"
	"github.com/urfave/cli/v2"
)

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// General settings
	DataDirFlag = &cli.PathFlag{
		Name:     "datadir",
		Usage:    "Data directory for the vault database",
		Value:    DefaultDataDir(),
		Category: flags.DatabaseCategory,
	}
	ConfigFileFlag = &cli.PathFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}

	// Vault settings
	VaultAdminFlag = &cli.StringFlag{
		Name:     "vault.admin",
		Usage:    "Administrator address of a new vault",
		Category: flags.VaultCategory,
	}
	VaultTokenFlag = &cli.StringFlag{
		Name:     "vault.token",
		Usage:    "Deposit token address of a new vault",
		Value:    params.TokenAddress.Hex(),
		Category: flags.VaultCategory,
	}
	VaultLockDurationFlag = &cli.DurationFlag{
		Name:     "vault.duration",
		Usage:    "Holding period of new locks",
		Value:    vault.DefaultConfig.LockDuration,
		Category: flags.VaultCategory,
	}
	VaultRewardRateFlag = &cli.Uint64Flag{
		Name:     "vault.rate",
		Usage:    "Reward yield cap of a matured lock, in basis points",
		Value:    vault.DefaultConfig.RewardRateBPS,
		Category: flags.VaultCategory,
	}
	VaultAllocFlag = &cli.StringFlag{
		Name:     "vault.alloc",
		Usage:    "Comma separated genesis token balances (address=amount,...)",
		Category: flags.VaultCategory,
	}

	// Performance tuning settings
	CacheFlag = &cli.IntFlag{
		Name:     "cache",
		Usage:    "Megabytes of memory allocated to database caching",
		Value:    16,
		Category: flags.PerfCategory,
	}
	FDLimitFlag = &cli.IntFlag{
		Name:     "fdlimit",
		Usage:    "Raise the open file descriptor resource limit (default = system fd limit)",
		Category: flags.PerfCategory,
	}

	// Logging and debug settings
	VerbosityFlag = &cli.IntFlag{
		Name:     "verbosity",
		Usage:    "Logging verbosity: 0=silent, 1=error, 2=warn, 3=info, 4=debug, 5=detail",
		Value:    3,
		Category: flags.LoggingCategory,
	}
	LogJSONFlag = &cli.BoolFlag{
		Name:     "log.json",
		Usage:    "Format logs with JSON",
		Category: flags.LoggingCategory,
	}

	// Metrics flags
	MetricsEnabledFlag = &cli.BoolFlag{
		Name:     "metrics",
		Usage:    "Enable metrics collection",
		Category: flags.MetricsCategory,
	}
)

var (
	// DatabaseFlags is the flag group of all database flags.
	DatabaseFlags = []cli.Flag{
		DataDirFlag,
		CacheFlag,
		FDLimitFlag,
	}
	// VaultFlags is the flag group of the vault genesis parameters.
	VaultFlags = []cli.Flag{
		VaultAdminFlag,
		VaultTokenFlag,
		VaultLockDurationFlag,
		VaultRewardRateFlag,
		VaultAllocFlag,
	}
	// LoggingFlags is the flag group of the logging and metrics flags.
	LoggingFlags = []cli.Flag{
		VerbosityFlag,
		LogJSONFlag,
		MetricsEnabledFlag,
	}
)

// DefaultDataDir is the default data directory to use for the databases.
func DefaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".lockvault")
	}
	return ""
}

// MakeDataDir retrieves the currently requested data directory, terminating
// if none (or the empty string) is specified.
func MakeDataDir(ctx *cli.Context) string {
	if path := ctx.Path(DataDirFlag.Name); path != "" {
		return path
	}
	Fatalf("Cannot determine default data directory, please set manually (--datadir)")
	return ""
}

// SplitAndTrim splits input separated by a comma
// and trims excessive white space from the substrings.
func SplitAndTrim(input string) (ret []string) {
	l := strings.Split(input, ",")
	for _, r := range l {
		if r = strings.TrimSpace(r); r != "" {
			ret = append(ret, r)
		}
	}
	return ret
}

// ParseAlloc decodes an address=amount list into genesis balances.
func ParseAlloc(input string) (map[common.Address]*uint256.Int, error) {
	alloc := make(map[common.Address]*uint256.Int)
	for _, entry := range SplitAndTrim(input) {
		kv := strings.Split(entry, "=")
		if len(kv) != 2 || !common.IsHexAddress(kv[0]) {
			return nil, fmt.Errorf("invalid allocation %q, want address=amount", entry)
		}
		amount, err := uint256.FromDecimal(kv[1])
		if err != nil {
			return nil, fmt.Errorf("invalid allocation amount %q: %v", kv[1], err)
		}
		alloc[common.HexToAddress(kv[0])] = amount
	}
	return alloc, nil
}

// SetVaultConfig applies vault related command line flags to the config.
func SetVaultConfig(ctx *cli.Context, cfg *vault.Config) error {
	if ctx.IsSet(VaultAdminFlag.Name) {
		addr := ctx.String(VaultAdminFlag.Name)
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid admin address %q", addr)
		}
		cfg.Admin = common.HexToAddress(addr)
	}
	if ctx.IsSet(VaultTokenFlag.Name) {
		addr := ctx.String(VaultTokenFlag.Name)
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid token address %q", addr)
		}
		cfg.Token = common.HexToAddress(addr)
	}
	if ctx.IsSet(VaultLockDurationFlag.Name) {
		cfg.LockDuration = ctx.Duration(VaultLockDurationFlag.Name)
	}
	if ctx.IsSet(VaultRewardRateFlag.Name) {
		cfg.RewardRateBPS = ctx.Uint64(VaultRewardRateFlag.Name)
	}
	return nil
}

// SetMetricsConfig applies metrics related command line flags to the config.
func SetMetricsConfig(ctx *cli.Context, cfg *metrics.Config) {
	if ctx.IsSet(MetricsEnabledFlag.Name) {
		cfg.Enabled = ctx.Bool(MetricsEnabledFlag.Name)
	}
}

// MakeDatabaseCache caps the requested database cache (in megabytes) at a
// third of the system memory.
func MakeDatabaseCache(cache int) int {
	mem, err := gopsutil.VirtualMemory()
	if err != nil {
		return cache
	}
	if 32<<(^uintptr(0)>>63) == 32 && mem.Total > 2*1024*1024*1024 {
		log.Warn("Lowering memory allowance on 32bit arch", "available", mem.Total/1024/1024, "addressable", 2*1024)
		mem.Total = 2 * 1024 * 1024 * 1024
	}
	allowance := int(mem.Total / 1024 / 1024 / 3)
	if cache > allowance {
		log.Warn("Sanitizing cache to Go's GC limits", "provided", cache, "updated", allowance)
		return allowance
	}
	return cache
}

// MakeDatabaseHandles raises out the number of allowed file handles per process
// and returns half of the allowance to assign to the database.
func MakeDatabaseHandles(max int) int {
	limit, err := fdlimit.Maximum()
	if err != nil {
		Fatalf("Failed to retrieve file descriptor allowance: %v", err)
	}
	switch {
	case max == 0:
		// User didn't specify a meaningful value, use system limits
	case max < 128:
		// User specified something unhealthy, just use system defaults
		log.Error("File descriptor limit invalid (<128)", "had", max, "updated", limit)
	case max > limit:
		// User requested more than the OS allows, notify that we can't allocate it
		log.Warn("Requested file descriptors denied by OS", "req", max, "limit", limit)
	default:
		// User limit is meaningful and within allowed range, use that
		limit = max
	}
	raised, err := fdlimit.Raise(uint64(limit))
	if err != nil {
		Fatalf("Failed to raise file descriptor allowance: %v", err)
	}
	return int(raised / 2) // Leave half for other files
}

// OpenDatabase opens the vault LevelDB under datadir.
func OpenDatabase(datadir string, cache, handles int, readonly bool) (*leveldb.Database, error) {
	start := time.Now()
	db, err := leveldb.New(filepath.Join(datadir, "vaultdata"), cache, handles, "vault/db/", readonly)
	if err != nil {
		return nil, err
	}
	log.Debug("Opened vault database", "path", db.Path(), "elapsed", common.PrettyDuration(time.Since(start)))
	return db, nil
}
