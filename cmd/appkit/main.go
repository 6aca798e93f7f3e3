package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-app-kit/internal/app"
	"github.com/samvad-hq/samvad-app-kit/internal/config"
	"github.com/samvad-hq/samvad-app-kit/internal/logger"
	"github.com/spf13/pflag"
)

const applicationName = "appkit"

var errUsage = errors.New("usage: appkit [flags] <token|request|cn> ...")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", applicationName, err)
		os.Exit(1)
	}
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(applicationName, pflag.ContinueOnError)
	config.RegisterFlags(fs)
	// Flags after the command name belong to the command.
	fs.SetInterspersed(false)
	return fs
}

func run(args []string, out io.Writer) error {
	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	switch rest[0] {
	case "cn":
		return runCN(rest[1:], out)
	case "token", "request":
	default:
		return fmt.Errorf("unknown command %q: %w", rest[0], errUsage)
	}

	cfg, err := config.LoadWithFlags(fs)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kit, err := app.NewKit(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize app kit", "error", err)
		return err
	}
	defer func() {
		if err := kit.Close(); err != nil {
			logger.ErrorObj("app kit close failed", "error", err)
		}
	}()

	if rest[0] == "token" {
		return runToken(ctx, kit, rest[1:], out)
	}
	return runRequest(ctx, kit, rest[1:], out)
}
