package vault

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/tos-network/lockvault/core/vm"
)

func requireAdmin(db vm.StateDB, caller common.Address) error {
	if readAdmin(db) != caller {
		return ErrUnauthorized
	}
	return nil
}

// IsAdmin reports whether id is the vault administrator.
func (v *Vault) IsAdmin(id common.Address) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readAdmin(v.state) == id
}

// Admin returns the administrator fixed at initialization.
func (v *Vault) Admin() common.Address {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readAdmin(v.state)
}
