// Copyright 2014 The go-ethereum Authors
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

// Package state provides a journaled storage-slot cache on top of the
// key/value database.
package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	lru "github.com/hashicorp/golang-lru"
	"github.com/tos-network/lockvault/tosdb"
)

// storagePrefix + address + slot -> value
var storagePrefix = []byte("s")

// DefaultCacheSize is the number of clean slots kept in memory.
const DefaultCacheSize = 4096

type revision struct {
	id           int
	journalIndex int
}

type slotKey struct {
	addr common.Address
	slot common.Hash
}

func storageKey(k slotKey) []byte {
	key := make([]byte, 0, len(storagePrefix)+common.AddressLength+common.HashLength)
	key = append(key, storagePrefix...)
	key = append(key, k.addr.Bytes()...)
	key = append(key, k.slot.Bytes()...)
	return key
}

// StateDB keeps pending slot writes in memory until Commit flushes them to
// the database in a single batch. Every write is journalled so that a
// Snapshot can be rolled back.
//
// StateDB is not safe for concurrent use; callers serialize access.
type StateDB struct {
	db    tosdb.KeyValueStore
	clean *lru.ARCCache // slotKey -> common.Hash, committed values only
	dirty map[slotKey]common.Hash

	// Opaque records written alongside the slots in the same commit batch.
	records map[string][]byte

	// DB error.
	// Native contracts read slots without an error path. Any error that
	// occurs during a database read is memoized here and will eventually
	// be returned by StateDB.Commit.
	dbErr error

	journal        *journal
	validRevisions []revision
	nextRevisionId int
}

// New creates a StateDB reading committed slots from db. cacheSize bounds the
// number of clean slots held in memory; values below one use DefaultCacheSize.
func New(db tosdb.KeyValueStore, cacheSize int) (*StateDB, error) {
	if cacheSize < 1 {
		cacheSize = DefaultCacheSize
	}
	clean, err := lru.NewARC(cacheSize)
	if err != nil {
		return nil, err
	}
	return &StateDB{
		db:      db,
		clean:   clean,
		dirty:   make(map[slotKey]common.Hash),
		records: make(map[string][]byte),
		journal: newJournal(),
	}, nil
}

// setError remembers the first non-nil error it is called with.
func (s *StateDB) setError(err error) {
	if s.dbErr == nil {
		s.dbErr = err
	}
}

// Error returns the memorized database failure occurred earlier.
func (s *StateDB) Error() error {
	return s.dbErr
}

// ResetError forgets the memorized database failure. Failed reads are never
// cached, so later reads go to the database again.
func (s *StateDB) ResetError() {
	s.dbErr = nil
}

// GetState retrieves a value from the given account's storage slot. Missing
// slots read as the zero hash.
func (s *StateDB) GetState(addr common.Address, key common.Hash) common.Hash {
	k := slotKey{addr, key}
	if value, dirty := s.dirty[k]; dirty {
		return value
	}
	return s.committedState(k)
}

// GetCommittedState retrieves the value of a slot as of the last Commit,
// ignoring any pending writes.
func (s *StateDB) GetCommittedState(addr common.Address, key common.Hash) common.Hash {
	return s.committedState(slotKey{addr, key})
}

func (s *StateDB) committedState(k slotKey) common.Hash {
	if cached, ok := s.clean.Get(k); ok {
		cacheHitMeter.Mark(1)
		return cached.(common.Hash)
	}
	cacheMissMeter.Mark(1)

	enc, err := s.db.Get(storageKey(k))
	if err != nil && !errors.Is(err, tosdb.ErrNotFound) {
		s.setError(fmt.Errorf("state: read %x/%x: %w", k.addr, k.slot, err))
		return common.Hash{}
	}
	value := common.BytesToHash(enc)
	s.clean.Add(k, value)
	return value
}

// SetState updates a value in an account's storage slot.
func (s *StateDB) SetState(addr common.Address, key common.Hash, value common.Hash) {
	k := slotKey{addr, key}
	prev, wasDirty := s.dirty[k]
	if !wasDirty {
		prev = s.committedState(k)
	}
	if prev == value {
		return
	}
	s.journal.append(storageChange{
		key:      k,
		prevalue: prev,
		wasDirty: wasDirty,
	})
	s.dirty[k] = value
}

// PutRecord stages an opaque key/value record for the next Commit. Record
// keys must not start with the storage prefix.
func (s *StateDB) PutRecord(key, value []byte) {
	k := string(key)
	prev, existed := s.records[k]
	s.journal.append(recordChange{key: k, prev: prev, existed: existed})
	s.records[k] = common.CopyBytes(value)
}

// NewRecordIterator iterates committed records under prefix, starting at
// start. Pending records are not visible until Commit.
func (s *StateDB) NewRecordIterator(prefix, start []byte) tosdb.Iterator {
	return s.db.NewIterator(prefix, start)
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	id := s.nextRevisionId
	s.nextRevisionId++
	s.validRevisions = append(s.validRevisions, revision{id, s.journal.length()})
	return id
}

// RevertToSnapshot reverts all state changes made since the given revision.
func (s *StateDB) RevertToSnapshot(revid int) {
	// Find the snapshot in the stack of valid snapshots.
	idx := sort.Search(len(s.validRevisions), func(i int) bool {
		return s.validRevisions[i].id >= revid
	})
	if idx == len(s.validRevisions) || s.validRevisions[idx].id != revid {
		panic(fmt.Errorf("revision id %v cannot be reverted", revid))
	}
	snapshot := s.validRevisions[idx].journalIndex

	storageRevertedMeter.Mark(int64(s.journal.length() - snapshot))

	// Replay the journal to undo changes and remove invalidated snapshots
	s.journal.revert(s, snapshot)
	s.validRevisions = s.validRevisions[:idx]
}

// Dirty reports the number of slots with pending writes.
func (s *StateDB) Dirty() int {
	return len(s.dirty)
}

// Pending reports the number of records staged for the next Commit.
func (s *StateDB) Pending() int {
	return len(s.records)
}

// Commit writes every pending slot to the database in one batch. Zero values
// delete the slot. On failure the pending writes are kept so the caller may
// retry or revert.
func (s *StateDB) Commit() error {
	if s.dbErr != nil {
		return s.dbErr
	}
	if len(s.dirty) == 0 && len(s.records) == 0 {
		s.resetJournal()
		return nil
	}
	var (
		batch   = s.db.NewBatch()
		updated int64
		deleted int64
	)
	for k, value := range s.dirty {
		if value == (common.Hash{}) {
			if err := batch.Delete(storageKey(k)); err != nil {
				return err
			}
			deleted++
			continue
		}
		if err := batch.Put(storageKey(k), value.Bytes()); err != nil {
			return err
		}
		updated++
	}
	for k, value := range s.records {
		if err := batch.Put([]byte(k), value); err != nil {
			return err
		}
	}
	if err := batch.Write(); err != nil {
		log.Error("Failed to commit state", "slots", len(s.dirty), "err", err)
		return err
	}
	for k, value := range s.dirty {
		s.clean.Add(k, value)
	}
	storageUpdatedMeter.Mark(updated)
	storageDeletedMeter.Mark(deleted)
	storageCommittedMeter.Mark(updated + deleted)

	s.dirty = make(map[slotKey]common.Hash)
	s.records = make(map[string][]byte)
	s.resetJournal()
	return nil
}

func (s *StateDB) resetJournal() {
	s.journal.reset()
	s.validRevisions = s.validRevisions[:0]
}
