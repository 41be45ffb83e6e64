package cmd

import (
	"fmt"

	"github.com/campass/campass/cmd/common"
	"github.com/urfave/cli"
)

var logoutFlags = []cli.Flag{
	cli.BoolFlag{
		Name:        "portal, e",
		Usage:       "sign out of the legacy portal account instead of sso (default: false)",
		Destination: &usePortal,
	},
}

func logout(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := newSession(false)
	if err != nil {
		common.PrintRuntimeErr(ctx, "logout", "new_session", err)
		return nil
	}
	defer s.Close()

	pickAccount(s).Logout()
	fmt.Println("signed out")
	return nil
}
