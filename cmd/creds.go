package cmd

import (
	"fmt"

	"github.com/campass/campass/cmd/common"
	"github.com/campass/campass/pkg/store"
	"github.com/urfave/cli"
)

var credsFlags = []cli.Flag{
	cli.BoolFlag{
		Name:        "portal, e",
		Usage:       "operate on the legacy portal credentials instead of sso (default: false)",
		Destination: &usePortal,
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
}

func credKeys() (accountKey, passwordKey, label string) {
	if usePortal {
		return store.KeyPortalAccount, store.KeyPortalPassword, "portal"
	}
	return store.KeySsoAccount, store.KeySsoPassword, "sso"
}

func credsSet(ctx *cli.Context) error {
	s, err := newSession(false)
	if err != nil {
		common.PrintRuntimeErr(ctx, "creds", "new_session", err)
		return nil
	}
	defer s.Close()

	creds, err := promptCredentials()
	if err != nil {
		common.PrintRuntimeErr(ctx, "creds", "read_credentials", err)
		return nil
	}
	accountKey, passwordKey, label := credKeys()
	if err := s.cm.Save(accountKey, passwordKey, *creds); err != nil {
		common.PrintRuntimeErr(ctx, "creds", "save", err)
		return nil
	}
	fmt.Printf("%s credentials stored for %s\n", label, creds.Account)
	return nil
}

func credsShow(ctx *cli.Context) error {
	s, err := newSession(false)
	if err != nil {
		common.PrintRuntimeErr(ctx, "creds", "new_session", err)
		return nil
	}
	defer s.Close()

	for _, target := range []struct {
		accountKey, passwordKey, label string
	}{
		{store.KeySsoAccount, store.KeySsoPassword, "sso"},
		{store.KeyPortalAccount, store.KeyPortalPassword, "portal"},
	} {
		creds, err := s.cm.Load(target.accountKey, target.passwordKey)
		switch {
		case err != nil:
			fmt.Printf("%s: unreadable (%s)\n", target.label, err)
		case creds == nil:
			fmt.Printf("%s: not stored\n", target.label)
		default:
			fmt.Printf("%s: stored for %s\n", target.label, creds.Account)
		}
	}
	return nil
}

func credsClear(ctx *cli.Context) error {
	s, err := newSession(false)
	if err != nil {
		common.PrintRuntimeErr(ctx, "creds", "new_session", err)
		return nil
	}
	defer s.Close()

	accountKey, passwordKey, label := credKeys()
	if err := s.cm.Delete(accountKey, passwordKey); err != nil {
		common.PrintRuntimeErr(ctx, "creds", "delete", err)
		return nil
	}
	fmt.Printf("%s credentials removed\n", label)
	return nil
}
