package vault

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/tos-network/lockvault/core/vm"
)

func (v *Vault) pause(db vm.StateDB, caller common.Address, now uint64) error {
	if err := requireAdmin(db, caller); err != nil {
		return err
	}
	if readStatus(db) == Paused {
		return ErrAlreadyPaused
	}
	writeStatus(db, Paused)
	return v.emit(db, EventPaused, caller, nil, now)
}

func (v *Vault) unpause(db vm.StateDB, caller common.Address, now uint64) error {
	if err := requireAdmin(db, caller); err != nil {
		return err
	}
	if readStatus(db) == Active {
		return ErrAlreadyActive
	}
	writeStatus(db, Active)
	return v.emit(db, EventUnpaused, caller, nil, now)
}

// Pause stops new deposits. Existing locks may still be withdrawn.
func (v *Vault) Pause(caller common.Address) (*Receipt, error) {
	return v.transact(func(db vm.StateDB, now uint64) error {
		return v.pause(db, caller, now)
	})
}

// Unpause re-enables deposits.
func (v *Vault) Unpause(caller common.Address) (*Receipt, error) {
	return v.transact(func(db vm.StateDB, now uint64) error {
		return v.unpause(db, caller, now)
	})
}

// Status returns the pause gate state.
func (v *Vault) Status() LockStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readStatus(v.state)
}
