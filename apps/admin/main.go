package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jpainam/discolaire-sub011/apps/shared"
	"github.com/jpainam/discolaire-sub011/core"
	appfs "github.com/jpainam/discolaire-sub011/fs"
	emailsvc "github.com/jpainam/discolaire-sub011/services/email"
	"github.com/jpainam/discolaire-sub011/services/queue"
	"github.com/jpainam/discolaire-sub011/storage/database"
)

func main() {
	if err := run(); err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	conf := core.NewConfig()
	ctx := context.Background()

	logger := shared.NewLogger("ADMIN", conf)
	defer logger.Close()

	// set up DB
	db, err := database.Open(ctx, conf)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// set up job queue
	jobs, err := shared.OpenQueue(ctx, conf, logger)
	if err != nil {
		return err
	}
	defer func() { _ = jobs.Close() }()

	// set up services
	core.InitMailer(conf, appfs.FS, appfs.EmailTemplatesDir, logger)
	validate, _ := shared.NewValidator()
	svcs := shared.NewServices(db, jobs, emailsvc.New(conf, logger), validate, logger)

	// start CLI; an in-memory queue is private to this process, so there is nothing to work on
	cli := commandLine{migrator: dbMigrator{db: db}}
	if _, inProcess := jobs.(*queue.MemoryQueue); !inProcess {
		cli.worker = shared.NewWorker(jobs, svcs, logger)
	}
	return cli.run(os.Args)
}
