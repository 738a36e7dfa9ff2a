// Copyright 2024 The gtos Authors
// This file is part of the gtos library.
//
// The gtos library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gtos library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gtos library. If not, see <http://www.gnu.org/licenses/>.

package params

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// System addresses — fixed, well-known addresses used by the vault.
var (
	// SystemActionAddress is the sentinel To-address for system action messages.
	SystemActionAddress = common.HexToAddress("0x0000000000000000000000000000000054534F31") // "TOS1"

	// VaultAddress holds the vault's storage slots and custodies every locked
	// and seeded token unit.
	VaultAddress = common.HexToAddress("0x0000000000000000000000000000000054534F56") // "TOSV"

	// TokenAddress is the default address of the deposit token ledger.
	TokenAddress = common.HexToAddress("0x0000000000000000000000000000000054534F54") // "TOST"
)

// Vault parameters.
const (
	// DefaultLockDuration is the mandatory holding period of a lock.
	DefaultLockDuration = 30 * 24 * time.Hour

	// DefaultRewardRateBPS caps the reward of a matured lock at this yield of
	// its principal, in basis points. Default: 40%.
	DefaultRewardRateBPS = uint64(4_000)

	// MaxRewardRateBPS is the highest configurable yield (100%).
	MaxRewardRateBPS = uint64(10_000)

	// BPSDenominator is the basis point scale.
	BPSDenominator = uint64(10_000)

	// RewardPrecision scales the per-unit reward accumulator (1e18).
	RewardPrecision = uint64(1_000_000_000_000_000_000)
)

// SysActionGas is the fixed gas cost charged for any system action.
const SysActionGas uint64 = 100_000
