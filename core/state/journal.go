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

package state

import "github.com/ethereum/go-ethereum/common"

// journalEntry is a modification entry in the state change journal that can be
// reverted on demand.
type journalEntry interface {
	// revert undoes the changes introduced by this journal entry.
	revert(*StateDB)
}

// journal contains the list of state modifications applied since the last state
// commit. These are tracked to be able to be reverted in the case of an execution
// exception or request for reversal.
type journal struct {
	entries []journalEntry
}

// newJournal creates a new initialized journal.
func newJournal() *journal {
	return new(journal)
}

// append inserts a new modification entry to the end of the change journal.
func (j *journal) append(entry journalEntry) {
	j.entries = append(j.entries, entry)
}

// revert undoes a batch of journalled modifications.
func (j *journal) revert(statedb *StateDB, snapshot int) {
	for i := len(j.entries) - 1; i >= snapshot; i-- {
		j.entries[i].revert(statedb)
	}
	j.entries = j.entries[:snapshot]
}

// length returns the current number of entries in the journal.
func (j *journal) length() int {
	return len(j.entries)
}

// reset clears the journal after a commit.
func (j *journal) reset() {
	j.entries = j.entries[:0]
}

// storageChange records a slot write. If the slot had no pending write before
// this change, reverting drops it from the dirty set entirely.
type storageChange struct {
	key      slotKey
	prevalue common.Hash
	wasDirty bool
}

func (ch storageChange) revert(s *StateDB) {
	if ch.wasDirty {
		s.dirty[ch.key] = ch.prevalue
	} else {
		delete(s.dirty, ch.key)
	}
}

// recordChange records a staged opaque record.
type recordChange struct {
	key     string
	prev    []byte
	existed bool
}

func (ch recordChange) revert(s *StateDB) {
	if ch.existed {
		s.records[ch.key] = ch.prev
	} else {
		delete(s.records, ch.key)
	}
}
