// Copyright 2016 The go-ethereum Authors
// This file is part of the go-ethereum library.
//
// The go-ethereum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-ethereum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-ethereum library. If not, see <http://www.gnu.org/licenses/>.

// Package vm provides the execution environment shared by the native system
// contracts. There is no interpreter: contracts are Go code reading and writing
// 32-byte storage slots through StateDB.
package vm

import "github.com/ethereum/go-ethereum/common"

// StateDB is the storage interface native contracts execute against.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash)

	// PutRecord stages an opaque record, such as an event log, that commits
	// and reverts together with the slot writes.
	PutRecord(key, value []byte)

	// Snapshot returns an identifier for the current revision of the state.
	Snapshot() int
	// RevertToSnapshot reverts all state changes made since the given revision.
	RevertToSnapshot(revid int)
}
