package common

import (
	"errors"
	"flag"
	"testing"

	"github.com/urfave/cli"
)

func newTestContext() *cli.Context {
	app := cli.NewApp()
	app.Name = "campass"
	app.Version = "test"
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	ctx := cli.NewContext(app, set, nil)
	ctx.Command = cli.Command{Name: "cmd"}
	return ctx
}

func TestPrintRuntimeErr(t *testing.T) {
	PrintRuntimeErr(nil, "cmd", "action", nil)
	PrintRuntimeErr(newTestContext(), "cmd", "action", errors.New("boom"))
}

func TestPrintErrWithHelp(t *testing.T) {
	ctx := newTestContext()
	called := false
	orig := showAppHelpAndExit
	showAppHelpAndExit = func(*cli.Context, int) {
		called = true
	}
	defer func() { showAppHelpAndExit = orig }()

	if err := PrintErrWithHelp(ctx, errors.New("oops")); err != nil {
		t.Fatalf("PrintErrWithHelp: %v", err)
	}
	if !called {
		t.Fatalf("expected help to be called")
	}
}

func TestPrintErrWithHelpFlagHelpRequested(t *testing.T) {
	ctx := newTestContext()
	called := false
	orig := showAppHelpAndExit
	showAppHelpAndExit = func(*cli.Context, int) {
		called = true
	}
	defer func() { showAppHelpAndExit = orig }()

	if err := PrintErrWithHelp(ctx, errors.New("flag: help requested")); err != nil {
		t.Fatalf("PrintErrWithHelp: %v", err)
	}
	if !called {
		t.Fatalf("expected app help for help-requested error")
	}
}

func TestPrintErrWithHelpNil(t *testing.T) {
	orig := showAppHelpAndExit
	shown := false
	showAppHelpAndExit = func(*cli.Context, int) { shown = true }
	defer func() { showAppHelpAndExit = orig }()

	if err := PrintErrWithHelp(newTestContext(), nil); err != nil {
		t.Fatalf("PrintErrWithHelp(nil): %v", err)
	}
	if shown {
		t.Fatal("nil error must not trigger help")
	}
}

func TestPrintErrWithCmdHelp(t *testing.T) {
	ctx := newTestContext()
	origCmd := showCommandHelp
	var gotCommand string
	showCommandHelp = func(_ *cli.Context, name string) error {
		gotCommand = name
		return nil
	}
	defer func() { showCommandHelp = origCmd }()

	if err := PrintErrWithCmdHelp(ctx, errors.New("bad flag")); err != nil {
		t.Fatalf("PrintErrWithCmdHelp: %v", err)
	}
	if gotCommand != "cmd" {
		t.Fatalf("command help shown for %q, want cmd", gotCommand)
	}
}

func TestUsageErrorCallback(t *testing.T) {
	origCmd := showCommandHelp
	cmdHelpShown := false
	showCommandHelp = func(*cli.Context, string) error {
		cmdHelpShown = true
		return nil
	}
	defer func() { showCommandHelp = origCmd }()

	origApp := showAppHelpAndExit
	appHelpShown := false
	showAppHelpAndExit = func(*cli.Context, int) { appHelpShown = true }
	defer func() { showAppHelpAndExit = origApp }()

	ctx := newTestContext() // has a command name
	if err := UsageErrorCallback(ctx, errors.New("boom"), false); err != nil {
		t.Fatalf("UsageErrorCallback: %v", err)
	}
	if !cmdHelpShown || appHelpShown {
		t.Fatal("command-level error must show command help")
	}

	cmdHelpShown = false
	appCtx := newTestContext()
	appCtx.Command = cli.Command{}
	if err := UsageErrorCallback(appCtx, errors.New("boom"), false); err != nil {
		t.Fatalf("UsageErrorCallback: %v", err)
	}
	if !appHelpShown || cmdHelpShown {
		t.Fatal("app-level error must show app help")
	}
}
