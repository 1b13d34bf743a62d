package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

var (
	// signalContext is done on SIGINT|SIGTERM; mockable
	signalContext = func(parent context.Context) (context.Context, context.CancelFunc) {
		return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	}

	errHelp = errors.New("help provided")
)

// jobRunner runs background jobs until ctx is done.
type jobRunner interface {
	Run(ctx context.Context) error
}

type commandLine struct {
	migrator migrator
	worker   jobRunner // nil without a shared queue
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose command (up, up-by-one, up-to, down, down-to, redo, reset, status, version, create, fix)")
	fmt.Println("  worker                 - process background jobs until interrupted")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "worker":
		if len(args) > 2 {
			cli.printUsage()
			return errHelp
		}
		return cli.work()
	default:
		cli.printUsage()
		return errHelp
	}
}
