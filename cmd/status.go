package cmd

import (
	"context"
	"fmt"

	"github.com/campass/campass/cmd/common"
	"github.com/campass/campass/pkg/account"
	"github.com/urfave/cli"
)

var statusFlags = []cli.Flag{
	cli.BoolFlag{
		Name:        "portal, e",
		Usage:       "check the legacy portal account instead of sso (default: false)",
		Destination: &usePortal,
	},
	cli.BoolFlag{
		Name:        "verbose, V",
		Usage:       "log the probe to stderr (default: false)",
		Destination: &verbose,
	},
}

func status(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := newSession(verbose)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "new_session", err)
		return nil
	}
	defer s.Close()

	acc := pickAccount(s)
	if acc.CheckLogin(context.Background()) {
		fmt.Println("session: active")
	} else {
		fmt.Println("session: signed out")
	}
	if sso, isSso := acc.(*account.SsoAccount); isSso {
		if sso.UseVPN() {
			fmt.Println("routing: web gateway")
		} else {
			fmt.Println("routing: direct")
		}
		if t := sso.VPNTicket(); t != "" {
			fmt.Println("gateway ticket: present")
		}
	}
	return nil
}
