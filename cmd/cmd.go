package cmd

import (
	"fmt"
	"runtime"

	"github.com/campass/campass/cmd/common"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

func Execute(args []string, bArgs BuildArgs) error {
	app := cli.App{
		Name:         "campass",
		HelpName:     "campass",
		Usage:        "A campus portal session tool.",
		Version:      fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:    "campass <command> [arguments...]",
		OnUsageError: common.UsageErrorCallback,
		Commands: []cli.Command{
			{
				Name:                   "login",
				Aliases:                []string{"i"},
				Usage:                  "sign in to the campus portal",
				Action:                 login,
				OnUsageError:           common.UsageErrorCallback,
				UseShortOptionHandling: true,
				Flags:                  loginFlags,
			},
			{
				Name:    "status",
				Aliases: []string{"s"},
				Usage:   "show current session state",
				Action:  status,
				Flags:   statusFlags,
			},
			{
				Name:                   "fetch",
				Aliases:                []string{"f"},
				Usage:                  "perform an authenticated GET and print the body",
				Action:                 fetch,
				OnUsageError:           common.UsageErrorCallback,
				UseShortOptionHandling: true,
				Flags:                  fetchFlags,
			},
			{
				Name:   "logout",
				Usage:  "drop all stored session cookies",
				Action: logout,
				Flags:  logoutFlags,
			},
			{
				Name:  "creds",
				Usage: "manage stored credentials",
				Subcommands: []cli.Command{
					{
						Name:   "set",
						Usage:  "store credentials without logging in",
						Action: credsSet,
						Flags:  credsFlags,
					},
					{
						Name:   "show",
						Usage:  "show which credentials are stored",
						Action: credsShow,
					},
					{
						Name:   "clear",
						Usage:  "remove stored credentials",
						Action: credsClear,
						Flags:  credsFlags,
					},
				},
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:    "version",
				Aliases: []string{"v"},
				Usage:   "prints installed version of campass",
				Action:  common.GetVersion,
			},
		},
		Action:      status,
		Flags:       statusFlags,
		HideHelp:    true,
		HideVersion: true,
	}
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
