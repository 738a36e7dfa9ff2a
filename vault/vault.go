package vault

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/tos-network/lockvault/core/state"
	"github.com/tos-network/lockvault/core/vm"
	"github.com/tos-network/lockvault/params"
	"github.com/tos-network/lockvault/sysaction"
	"github.com/tos-network/lockvault/token"
	"github.com/tos-network/lockvault/tosdb"
)

// LedgerFunc binds the deposit token at addr to the state an operation runs
// against.
type LedgerFunc func(db vm.StateDB, addr common.Address) token.Ledger

func tos20Ledger(db vm.StateDB, addr common.Address) token.Ledger {
	return token.New(db, addr)
}

// Option configures a Vault.
type Option func(*Vault)

// WithClock sets the time source. The default is SystemClock.
func WithClock(c Clock) Option {
	return func(v *Vault) { v.clock = c }
}

// WithLedger replaces the TOS20 deposit token with another ledger.
func WithLedger(fn LedgerFunc) Option {
	return func(v *Vault) { v.ledgerFn = fn }
}

// WithGenesisAlloc credits the given TOS20 balances when the vault is first
// initialized. It is ignored when opening an initialized database.
func WithGenesisAlloc(alloc map[common.Address]*uint256.Int) Option {
	return func(v *Vault) { v.alloc = alloc }
}

// Vault is the lock vault state machine. All methods are safe for concurrent
// use; operations are applied one at a time.
type Vault struct {
	mu sync.Mutex

	db       tosdb.KeyValueStore
	state    *state.StateDB
	clock    Clock
	ledgerFn LedgerFunc
	registry *sysaction.Registry
	alloc    map[common.Address]*uint256.Int

	pending []*Log // logs of the running operation
	logFeed event.Feed

	log log.Logger
}

// New opens the vault stored in db, initializing it from config if the
// database is empty.
func New(db tosdb.KeyValueStore, config Config, opts ...Option) (*Vault, error) {
	config = config.sanitize()
	st, err := state.New(db, config.CacheSize)
	if err != nil {
		return nil, err
	}
	v := &Vault{
		db:       db,
		state:    st,
		clock:    SystemClock{},
		ledgerFn: tos20Ledger,
		log:      log.New("module", "vault"),
	}
	for _, opt := range opts {
		opt(v)
	}
	if err := v.setup(config); err != nil {
		return nil, err
	}
	v.registry = sysaction.NewRegistry(
		&handler{v: v},
		token.NewHandler(readToken(v.state)),
	)
	v.updateGauges()
	return v, nil
}

func (v *Vault) setup(config Config) error {
	st := v.state
	if readBool(st, initializedSlot) {
		admin, tok := readAdmin(st), readToken(st)
		if config.Admin != (common.Address{}) && config.Admin != admin {
			return fmt.Errorf("%w: admin %s, stored %s", ErrGenesisMismatch, config.Admin.Hex(), admin.Hex())
		}
		if config.Token != (common.Address{}) && config.Token != tok {
			return fmt.Errorf("%w: token %s, stored %s", ErrGenesisMismatch, config.Token.Hex(), tok.Hex())
		}
		duration := time.Duration(readUint64(st, lockDurationSlot)) * time.Second
		if rate := readUint64(st, rewardRateSlot); config.LockDuration != duration || config.RewardRateBPS != rate {
			v.log.Debug("Using stored vault parameters", "duration", duration, "rate", rate)
		}
		if len(v.alloc) > 0 {
			v.log.Warn("Ignoring genesis allocation of initialized vault", "accounts", len(v.alloc))
		}
		return st.Error()
	}

	if config.Admin == (common.Address{}) {
		return ErrNoAdmin
	}
	if config.Token == (common.Address{}) {
		config.Token = params.TokenAddress
	}
	writeAddress(st, adminSlot, config.Admin)
	writeAddress(st, tokenSlot, config.Token)
	writeStatus(st, Active)
	writeUint64(st, lockDurationSlot, uint64(config.LockDuration/time.Second))
	writeUint64(st, rewardRateSlot, config.RewardRateBPS)
	writeBool(st, initializedSlot, true)

	accounts := make([]common.Address, 0, len(v.alloc))
	for addr := range v.alloc {
		accounts = append(accounts, addr)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].Cmp(accounts[j]) < 0 })
	ledger := token.New(st, config.Token)
	for _, addr := range accounts {
		if err := ledger.Credit(addr, v.alloc[addr]); err != nil {
			return fmt.Errorf("genesis alloc %s: %w", addr.Hex(), err)
		}
	}
	if err := st.Commit(); err != nil {
		return err
	}
	v.log.Info("Initialized vault", "admin", config.Admin, "token", config.Token,
		"duration", config.LockDuration, "rate", config.RewardRateBPS, "alloc", len(accounts))
	return nil
}

// transact runs fn against the vault state under a snapshot. Any error
// reverts every write fn made, including token transfers and staged logs.
func (v *Vault) transact(fn func(db vm.StateDB, now uint64) error) (*Receipt, error) {
	v.mu.Lock()
	now := v.clock.Now()
	// Only read failures of this operation may fail its commit.
	v.state.ResetError()
	snap := v.state.Snapshot()
	v.pending = nil

	err := fn(v.state, now)
	if err == nil {
		err = v.state.Commit()
	}
	if err != nil {
		v.state.RevertToSnapshot(snap)
		v.pending = nil
		v.mu.Unlock()

		rejectMeter.Mark(1)
		v.log.Debug("Rejected vault operation", "err", err)
		return nil, err
	}
	logs := v.pending
	v.pending = nil
	v.updateGauges()
	v.mu.Unlock()

	markLogs(logs)
	for _, l := range logs {
		v.log.Info("Vault "+l.Kind.String(), "account", l.Account, "amount", l.Amount, "index", l.Index)
	}
	if len(logs) > 0 {
		v.logFeed.Send(logs)
	}
	return &Receipt{Logs: logs}, nil
}

func (v *Vault) updateGauges() {
	totalLockedGauge.Update(gaugeValue(readTotalLocked(v.state)))
	rewardsPoolGauge.Update(gaugeValue(readRewardsPool(v.state)))
}

func (v *Vault) lock(db vm.StateDB, caller common.Address, amount *uint256.Int, now uint64) error {
	if readStatus(db) == Paused {
		return ErrPaused
	}
	return v.createLock(db, caller, amount, now)
}

// unlock releases a matured lock with its reward. Every vault slot is
// settled before the payout transfer runs.
func (v *Vault) unlock(db vm.StateDB, caller common.Address, now uint64) error {
	l, ok := readLock(db, caller)
	if !ok {
		return ErrNoActiveLock
	}
	if !l.Matured(now) {
		return ErrStillLocked
	}
	reward := settleReward(db, l)
	payout, overflow := new(uint256.Int).AddOverflow(l.Amount, reward)
	if overflow {
		return ErrAmountOverflow
	}
	clearLock(db, l)

	ledger := v.ledgerFn(db, readToken(db))
	if ledger.BalanceOf(params.VaultAddress).Lt(payout) {
		return ErrCustodyInvariant
	}
	if err := ledger.Transfer(params.VaultAddress, caller, payout); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return v.emit(db, EventUnlocked, caller, payout, now)
}

// Lock deposits amount from caller into a new lock. The caller must have
// approved the vault for at least amount.
func (v *Vault) Lock(caller common.Address, amount *uint256.Int) (*Receipt, error) {
	return v.transact(func(db vm.StateDB, now uint64) error {
		return v.lock(db, caller, amount, now)
	})
}

// Unlock pays out caller's matured lock plus its reward.
func (v *Vault) Unlock(caller common.Address) (*Receipt, error) {
	return v.transact(func(db vm.StateDB, now uint64) error {
		return v.unlock(db, caller, now)
	})
}

// Execute applies one encoded system action sent by from.
func (v *Vault) Execute(from common.Address, data []byte) (*Receipt, error) {
	var gas uint64
	receipt, err := v.transact(func(db vm.StateDB, now uint64) error {
		var err error
		gas, err = v.registry.Execute(&sysaction.Context{From: from, StateDB: db, Time: now}, data)
		return err
	})
	if err != nil {
		return nil, err
	}
	receipt.GasUsed = gas
	return receipt, nil
}

// Token returns the address of the deposit token.
func (v *Vault) Token() common.Address {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readToken(v.state)
}

// LockDuration returns the holding period applied to new locks.
func (v *Vault) LockDuration() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	return time.Duration(readUint64(v.state, lockDurationSlot)) * time.Second
}

// BalanceOf returns account's deposit token balance.
func (v *Vault) BalanceOf(account common.Address) *uint256.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ledgerFn(v.state, readToken(v.state)).BalanceOf(account)
}

// LogCount returns the number of committed event logs.
func (v *Vault) LogCount() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return readUint64(v.state, logCountSlot)
}

// Logs returns up to limit committed logs starting at index from. A zero
// limit returns all of them.
func (v *Vault) Logs(from, limit uint64) ([]*Log, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	it := v.state.NewRecordIterator(logPrefix, logKey(from)[len(logPrefix):])
	defer it.Release()

	var logs []*Log
	for it.Next() {
		if limit > 0 && uint64(len(logs)) >= limit {
			break
		}
		l, err := decodeLog(it.Value())
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, it.Error()
}

// SubscribeLogs delivers the logs of every successful operation to ch.
func (v *Vault) SubscribeLogs(ch chan<- []*Log) event.Subscription {
	return v.logFeed.Subscribe(ch)
}

// Initialized reports whether db already holds a vault.
func Initialized(db tosdb.KeyValueStore) (bool, error) {
	st, err := state.New(db, 1)
	if err != nil {
		return false, err
	}
	ok := readBool(st, initializedSlot)
	return ok, st.Error()
}
