package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/campass/campass/cmd/common"
	"github.com/campass/campass/pkg/account"
	"github.com/campass/campass/pkg/credman"
	"github.com/urfave/cli"
	"golang.org/x/term"
)

var (
	usePortal bool
	useVPN    bool
	saveCreds bool
	verbose   bool
	userArg   string
	passArg   string

	loginFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "portal, e",
			Usage:       "use the legacy portal account instead of sso (default: false)",
			Destination: &usePortal,
		},
		cli.BoolFlag{
			Name:        "vpn, w",
			Usage:       "route the session through the web gateway (default: false)",
			Destination: &useVPN,
		},
		cli.BoolFlag{
			Name:        "save, r",
			Usage:       "store the credentials for later sessions (default: false)",
			Destination: &saveCreds,
		},
		cli.StringFlag{
			Name:        "user, u",
			Usage:       "account name (prompted when absent)",
			Destination: &userArg,
		},
		cli.StringFlag{
			Name:        "pass, p",
			Usage:       "account password (prompted when absent)",
			Destination: &passArg,
		},
		cli.BoolFlag{
			Name:        "verbose, V",
			Usage:       "log the session handshake to stderr (default: false)",
			Destination: &verbose,
		},
	}
)

// pickAccount returns the account implementation the flags select.
func pickAccount(s *session) account.Account {
	if usePortal {
		return s.portalAccount()
	}
	return s.ssoAccount(useVPN)
}

// Swapped out in tests.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

func promptCredentials() (*credman.Credentials, error) {
	r := bufio.NewReader(os.Stdin)
	user := userArg
	if user == "" {
		fmt.Print("account: ")
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		user = strings.TrimSpace(line)
	}
	pass := passArg
	if pass == "" {
		fmt.Print("password: ")
		fd := int(os.Stdin.Fd())
		if isTerminal(fd) {
			b, err := readPassword(fd)
			fmt.Println()
			if err != nil {
				return nil, err
			}
			pass = string(b)
		} else {
			// Piped input: no terminal to silence.
			line, err := r.ReadString('\n')
			if err != nil {
				return nil, err
			}
			pass = strings.TrimRight(line, "\r\n")
		}
	}
	return &credman.Credentials{Account: user, Password: pass}, nil
}

func login(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	s, err := newSession(verbose)
	if err != nil {
		common.PrintRuntimeErr(ctx, "login", "new_session", err)
		return nil
	}
	defer s.Close()

	creds, err := promptCredentials()
	if err != nil {
		common.PrintRuntimeErr(ctx, "login", "read_credentials", err)
		return nil
	}
	acc := pickAccount(s)
	ok, err := acc.Login(context.Background(), creds, saveCreds)
	if err != nil {
		common.PrintRuntimeErr(ctx, "login", "login", err)
		return nil
	}
	if !ok {
		fmt.Println("login failed")
		return nil
	}
	fmt.Println("login ok")
	if sso, isSso := acc.(*account.SsoAccount); isSso && sso.UseVPN() {
		fmt.Println("session routed via web gateway")
	}
	return nil
}
