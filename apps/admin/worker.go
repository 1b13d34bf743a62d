package main

import (
	"context"
	"errors"
)

var errNoBroker = errors.New("worker needs redis.address: in-memory jobs never leave the process that queued them")

func (cli *commandLine) work() error {
	if cli.worker == nil {
		return errNoBroker
	}
	ctx, stop := signalContext(context.Background())
	defer stop()
	return cli.worker.Run(ctx)
}
