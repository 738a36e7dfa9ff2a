package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/log"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/tos-network/lockvault/cmd/utils"
	"github.com/tos-network/lockvault/params"
	"github.com/tos-network/lockvault/vault"
	"github.com/urfave/cli/v2"
)

var (
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "output JSON instead of human-readable format",
	}
	fromFlag = &cli.StringFlag{
		Name:     "from",
		Usage:    "sender address of the system action",
		Required: true,
	}
	timeFlag = &cli.Uint64Flag{
		Name:  "time",
		Usage: "unix time to execute at (default = wall clock)",
	}
	dataFlag = &cli.StringFlag{
		Name:  "data",
		Usage: "system action JSON (default = read from the file argument or stdin)",
	}
	startFlag = &cli.Uint64Flag{
		Name:  "start",
		Usage: "index of the first log to print",
	}
	limitFlag = &cli.Uint64Flag{
		Name:  "limit",
		Usage: "maximum number of logs to print (0 = all)",
	}
)

var initCommand = &cli.Command{
	Action:    initVault,
	Name:      "init",
	Usage:     "Create a new vault database",
	ArgsUsage: " ",
	Flags:     utils.VaultFlags,
	Description: `
The init command writes the vault genesis (admin, deposit token, lock duration
and reward rate) and the initial token balances into a fresh database.`,
}

var inspectCommand = &cli.Command{
	Action:    inspectVault,
	Name:      "inspect",
	Usage:     "Print the vault totals and live locks",
	ArgsUsage: " ",
	Flags:     []cli.Flag{jsonFlag},
}

var applyCommand = &cli.Command{
	Action:    applyAction,
	Name:      "apply",
	Usage:     "Execute a system action against the vault",
	ArgsUsage: "[<actionfile>]",
	Flags:     []cli.Flag{fromFlag, timeFlag, dataFlag},
	Description: `
Executes one system action, for example

    {"action":"VAULT_LOCK","payload":{"amount":"100"}}

as the --from account and commits the result. A rejected action leaves the
vault untouched.`,
}

var logsCommand = &cli.Command{
	Action:    printLogs,
	Name:      "logs",
	Usage:     "Print the vault event journal",
	ArgsUsage: " ",
	Flags:     []cli.Flag{startFlag, limitFlag, jsonFlag},
}

func initVault(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	alloc, err := cfg.Genesis.allocation()
	if err != nil {
		return err
	}
	v, db, err := openVault(cfg, true, vault.WithGenesisAlloc(alloc))
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Fprintf(ctx.App.Writer, "Initialized vault in %s (admin %s, %d funded accounts)\n", cfg.Node.DataDir, v.Admin().Hex(), len(alloc))
	return nil
}

func inspectVault(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	v, db, err := openVault(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	api := vault.NewAPI(v)
	if ctx.Bool(jsonFlag.Name) {
		return writeJSON(ctx.App.Writer, struct {
			Status *vault.StatusResult `json:"status"`
			Locks  []*vault.LockResult `json:"locks"`
		}{api.Status(context.Background()), api.Locks(context.Background())})
	}

	status := v.Status()
	statusText := color.New(color.FgGreen).Sprint(status)
	if status == vault.Paused {
		statusText = color.New(color.FgYellow).Sprint(status)
	}
	summary := tablewriter.NewWriter(ctx.App.Writer)
	summary.SetBorder(false)
	summary.SetColumnSeparator("")
	summary.AppendBulk([][]string{
		{"Vault", params.VaultAddress.Hex()},
		{"Admin", v.Admin().Hex()},
		{"Token", v.Token().Hex()},
		{"Status", statusText},
		{"Total locked", v.TotalLocked().Dec()},
		{"Rewards pool", v.RewardsPool().Dec()},
		{"Custody", v.BalanceOf(params.VaultAddress).Dec()},
		{"Lock duration", v.LockDuration().String()},
		{"Reward rate", fmt.Sprintf("%d bps", v.RewardRate())},
	})
	summary.Render()

	locks := v.Locks()
	fmt.Fprintf(ctx.App.Writer, "\n%d live locks\n", len(locks))
	if len(locks) == 0 {
		return nil
	}
	now := uint64(time.Now().Unix())
	table := tablewriter.NewWriter(ctx.App.Writer)
	table.SetHeader([]string{"Holder", "Amount", "Locked at", "Matures at", "Matured"})
	for _, l := range locks {
		table.Append([]string{
			l.Holder.Hex(),
			l.Amount.Dec(),
			params.UnixTimestampToTime(l.LockedAt).UTC().Format(time.RFC3339),
			params.UnixTimestampToTime(l.MaturesAt).UTC().Format(time.RFC3339),
			strconv.FormatBool(l.Matured(now)),
		})
	}
	table.Render()
	return nil
}

func applyAction(ctx *cli.Context) error {
	from := ctx.String(fromFlag.Name)
	if !common.IsHexAddress(from) {
		return fmt.Errorf("invalid sender address %q", from)
	}
	data, err := readAction(ctx)
	if err != nil {
		return err
	}
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	var opts []vault.Option
	if ctx.IsSet(timeFlag.Name) {
		opts = append(opts, vault.WithClock(vault.NewManualClock(ctx.Uint64(timeFlag.Name))))
	}
	v, db, err := openVault(cfg, false, opts...)
	if err != nil {
		return err
	}
	defer db.Close()

	receipt, err := v.Execute(common.HexToAddress(from), data)
	if err != nil {
		log.Debug("System action rejected", "from", from, "err", err)
		return fmt.Errorf("action rejected: %w", err)
	}
	fmt.Fprintf(ctx.App.Writer, "Gas used: %d\n", receipt.GasUsed)
	for _, l := range receipt.Logs {
		fmt.Fprintln(ctx.App.Writer, formatLog(l))
	}
	return nil
}

func readAction(ctx *cli.Context) ([]byte, error) {
	if ctx.IsSet(dataFlag.Name) {
		return []byte(ctx.String(dataFlag.Name)), nil
	}
	switch file := ctx.Args().First(); file {
	case "", "-":
		data, err := io.ReadAll(ctx.App.Reader)
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, errors.New("no system action given")
		}
		return data, nil
	default:
		return os.ReadFile(file)
	}
}

func printLogs(ctx *cli.Context) error {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return err
	}
	v, db, err := openVault(cfg, false)
	if err != nil {
		return err
	}
	defer db.Close()

	if ctx.Bool(jsonFlag.Name) {
		logs, err := vault.NewAPI(v).Logs(context.Background(), hexUint64(ctx.Uint64(startFlag.Name)), hexUint64(ctx.Uint64(limitFlag.Name)))
		if err != nil {
			return err
		}
		return writeJSON(ctx.App.Writer, logs)
	}
	logs, err := v.Logs(ctx.Uint64(startFlag.Name), ctx.Uint64(limitFlag.Name))
	if err != nil {
		return err
	}
	for _, l := range logs {
		fmt.Fprintln(ctx.App.Writer, formatLog(l))
	}
	return nil
}

func formatLog(l *vault.Log) string {
	s := fmt.Sprintf("#%d %s %-13s account=%s", l.Index,
		params.UnixTimestampToTime(l.Time).UTC().Format(time.RFC3339), l.Kind, l.Account.Hex())
	if l.Amount != nil {
		s += " amount=" + l.Amount.Dec()
	}
	return s
}

func writeJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}

func hexUint64(n uint64) hexutil.Uint64 { return hexutil.Uint64(n) }
