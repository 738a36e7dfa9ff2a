package vault

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/core/vm"
)

// EventKind identifies an observable vault event.
type EventKind uint8

const (
	EventLocked EventKind = iota + 1
	EventRewardsSeeded
	EventUnlocked
	EventPaused
	EventUnpaused
)

func (k EventKind) String() string {
	switch k {
	case EventLocked:
		return "Locked"
	case EventRewardsSeeded:
		return "RewardsSeeded"
	case EventUnlocked:
		return "Unlocked"
	case EventPaused:
		return "Paused"
	case EventUnpaused:
		return "Unpaused"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Log is an event emitted by a successful vault operation. Account is the
// holder for lock events and the admin for the others. Amount is nil for
// Paused and Unpaused.
type Log struct {
	Kind    EventKind
	Account common.Address
	Amount  *uint256.Int
	Time    uint64 // unix seconds
	Index   uint64 // position in the event journal
}

// Receipt is the outcome of a successful operation.
type Receipt struct {
	Logs    []*Log
	GasUsed uint64
}

// logPrefix + be64(index) -> rlp(Log)
var logPrefix = []byte("l")

func logKey(index uint64) []byte {
	key := make([]byte, len(logPrefix)+8)
	copy(key, logPrefix)
	binary.BigEndian.PutUint64(key[len(logPrefix):], index)
	return key
}

type rlpLog struct {
	Kind    uint8
	Account common.Address
	Amount  *big.Int
	Time    uint64
	Index   uint64
}

func encodeLog(l *Log) ([]byte, error) {
	enc := rlpLog{
		Kind:    uint8(l.Kind),
		Account: l.Account,
		Amount:  new(big.Int),
		Time:    l.Time,
		Index:   l.Index,
	}
	if l.Amount != nil {
		enc.Amount = l.Amount.ToBig()
	}
	return rlp.EncodeToBytes(&enc)
}

func decodeLog(blob []byte) (*Log, error) {
	var dec rlpLog
	if err := rlp.DecodeBytes(blob, &dec); err != nil {
		return nil, err
	}
	l := &Log{
		Kind:    EventKind(dec.Kind),
		Account: dec.Account,
		Time:    dec.Time,
		Index:   dec.Index,
	}
	if l.Kind != EventPaused && l.Kind != EventUnpaused {
		amount, overflow := uint256.FromBig(dec.Amount)
		if overflow {
			return nil, fmt.Errorf("log %d: %w", dec.Index, ErrAmountOverflow)
		}
		l.Amount = amount
	}
	return l, nil
}

// emit stages a log in the event journal. The record and the log counter
// revert together with the rest of the operation.
func (v *Vault) emit(db vm.StateDB, kind EventKind, account common.Address, amount *uint256.Int, now uint64) error {
	index := readUint64(db, logCountSlot)
	l := &Log{Kind: kind, Account: account, Time: now, Index: index}
	if amount != nil {
		l.Amount = new(uint256.Int).Set(amount)
	}
	blob, err := encodeLog(l)
	if err != nil {
		return err
	}
	db.PutRecord(logKey(index), blob)
	writeUint64(db, logCountSlot, index+1)
	v.pending = append(v.pending, l)
	return nil
}
