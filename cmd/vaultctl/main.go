// vaultctl is the operator tool of a lock vault database.
package main

import (
	"fmt"
	"os"

	"github.com/tos-network/lockvault/cmd/utils"
	"github.com/tos-network/lockvault/internal/flags"
	"github.com/urfave/cli/v2"
)

const clientIdentifier = "vaultctl"

// Git SHA1 commit hash of the release (set via linker flags)
var gitCommit = ""
var gitDate = ""

var app *cli.App

func init() {
	app = flags.NewApp(gitCommit, gitDate, "the lock vault operator tool")
	app.Name = clientIdentifier
	app.Flags = append(append([]cli.Flag{utils.ConfigFileFlag}, utils.DatabaseFlags...), utils.LoggingFlags...)
	app.Commands = []*cli.Command{
		initCommand,
		inspectCommand,
		applyCommand,
		logsCommand,
		dumpConfigCommand,
	}
	app.Before = func(ctx *cli.Context) error {
		utils.SetupLogging(ctx)
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
