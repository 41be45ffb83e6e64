package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/campass/campass/cmd/common"
	"github.com/urfave/cli"
)

var fetchFlags = []cli.Flag{
	cli.BoolFlag{
		Name:        "portal, e",
		Usage:       "fetch through the legacy portal account instead of sso (default: false)",
		Destination: &usePortal,
	},
	cli.BoolFlag{
		Name:        "vpn, w",
		Usage:       "route the request through the web gateway (default: false)",
		Destination: &useVPN,
	},
	cli.BoolFlag{
		Name:        "verbose, V",
		Usage:       "log the exchange to stderr (default: false)",
		Destination: &verbose,
	},
}

func fetch(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" || path == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := newSession(verbose)
	if err != nil {
		common.PrintRuntimeErr(ctx, "fetch", "new_session", err)
		return nil
	}
	defer s.Close()

	acc := pickAccount(s)
	resp, err := acc.Get(context.Background(), path)
	if err != nil {
		common.PrintRuntimeErr(ctx, "fetch", "get", err)
		return nil
	}
	if !resp.OK() {
		fmt.Fprintf(os.Stderr, "fetch: status %d\n", resp.Status)
	}
	os.Stdout.Write(resp.Data)
	return nil
}
