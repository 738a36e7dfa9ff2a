package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"github.com/naoina/toml"
	"github.com/tos-network/lockvault/cmd/utils"
	"github.com/tos-network/lockvault/metrics"
	"github.com/tos-network/lockvault/tosdb/leveldb"
	"github.com/tos-network/lockvault/vault"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "[dumpfile]",
	Flags:       utils.VaultFlags,
	Description: `The dumpconfig command shows configuration values.`,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type nodeConfig struct {
	DataDir         string
	DatabaseCache   int
	DatabaseHandles int `toml:",omitempty"`
}

type genesisAccount struct {
	Address common.Address
	Balance string
}

type genesisConfig struct {
	Alloc []genesisAccount `toml:",omitempty"`
}

type vaultctlConfig struct {
	Vault   vault.Config
	Node    nodeConfig
	Metrics metrics.Config
	Genesis genesisConfig
}

func defaultConfig() vaultctlConfig {
	return vaultctlConfig{
		Vault: vault.DefaultConfig,
		Node: nodeConfig{
			DataDir:       utils.DefaultDataDir(),
			DatabaseCache: utils.CacheFlag.Value,
		},
		Metrics: metrics.DefaultConfig,
	}
}

func loadConfig(file string, cfg *vaultctlConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

// makeConfig layers the defaults, the config file and the command line flags.
func makeConfig(ctx *cli.Context) (vaultctlConfig, error) {
	cfg := defaultConfig()
	if file := ctx.Path(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			return cfg, err
		}
	}
	if ctx.IsSet(utils.DataDirFlag.Name) {
		cfg.Node.DataDir = ctx.Path(utils.DataDirFlag.Name)
	}
	if ctx.IsSet(utils.CacheFlag.Name) {
		cfg.Node.DatabaseCache = ctx.Int(utils.CacheFlag.Name)
	}
	if ctx.IsSet(utils.FDLimitFlag.Name) {
		cfg.Node.DatabaseHandles = ctx.Int(utils.FDLimitFlag.Name)
	}
	if err := utils.SetVaultConfig(ctx, &cfg.Vault); err != nil {
		return cfg, err
	}
	utils.SetMetricsConfig(ctx, &cfg.Metrics)

	if ctx.IsSet(utils.VaultAllocFlag.Name) {
		alloc, err := utils.ParseAlloc(ctx.String(utils.VaultAllocFlag.Name))
		if err != nil {
			return cfg, err
		}
		cfg.Genesis.Alloc = cfg.Genesis.Alloc[:0]
		for addr, amount := range alloc {
			cfg.Genesis.Alloc = append(cfg.Genesis.Alloc, genesisAccount{Address: addr, Balance: amount.Dec()})
		}
		sort.Slice(cfg.Genesis.Alloc, func(i, j int) bool {
			return cfg.Genesis.Alloc[i].Address.Cmp(cfg.Genesis.Alloc[j].Address) < 0
		})
	}
	if cfg.Node.DataDir == "" {
		return cfg, errors.New("cannot determine data directory, please set manually (--datadir)")
	}
	return cfg, nil
}

// allocation decodes the genesis balances.
func (g genesisConfig) allocation() (map[common.Address]*uint256.Int, error) {
	alloc := make(map[common.Address]*uint256.Int, len(g.Alloc))
	for _, account := range g.Alloc {
		if _, dup := alloc[account.Address]; dup {
			return nil, fmt.Errorf("duplicate genesis account %s", account.Address.Hex())
		}
		balance, err := uint256.FromDecimal(account.Balance)
		if err != nil {
			return nil, fmt.Errorf("genesis account %s: invalid balance %q: %v", account.Address.Hex(), account.Balance, err)
		}
		alloc[account.Address] = balance
	}
	return alloc, nil
}

// openVault opens the vault database described by cfg. Unless create is set
// the database must already hold a vault.
func openVault(cfg vaultctlConfig, create bool, opts ...vault.Option) (*vault.Vault, *leveldb.Database, error) {
	cfg.Metrics.Setup()

	var (
		cache   = utils.MakeDatabaseCache(cfg.Node.DatabaseCache)
		handles = utils.MakeDatabaseHandles(cfg.Node.DatabaseHandles)
	)
	db, err := utils.OpenDatabase(cfg.Node.DataDir, cache, handles, false)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open database: %v", err)
	}
	initialized, err := vault.Initialized(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	switch {
	case create && initialized:
		db.Close()
		return nil, nil, fmt.Errorf("vault already initialized in %s", cfg.Node.DataDir)
	case !create && !initialized:
		db.Close()
		return nil, nil, fmt.Errorf("no vault in %s, run '%s init' first", cfg.Node.DataDir, clientIdentifier)
	}
	v, err := vault.New(db, cfg.Vault, opts...)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return v, db, nil
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	comment := ""
	if cfg.Vault.Admin == (common.Address{}) {
		comment += "# Note: Vault.Admin must be set before running init.\n\n"
	}
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := ctx.App.Writer
	if ctx.NArg() > 0 {
		f, err := os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		dump = f
		log.Info("Writing configuration", "file", ctx.Args().Get(0))
	}
	if _, err := io.WriteString(dump, comment); err != nil {
		return err
	}
	_, err = dump.Write(out)
	return err
}
