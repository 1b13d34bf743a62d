package main

import (
	"context"
	"expvar"
	"fmt"
	"net/http"
	_ "net/http/pprof" // register the /debug/pprof handlers
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	echoapi "github.com/jpainam/discolaire-sub011/apps/api/echo"
	"github.com/jpainam/discolaire-sub011/apps/shared"
	"github.com/jpainam/discolaire-sub011/core"
	appfs "github.com/jpainam/discolaire-sub011/fs"
	emailsvc "github.com/jpainam/discolaire-sub011/services/email"
	"github.com/jpainam/discolaire-sub011/services/export"
	"github.com/jpainam/discolaire-sub011/services/queue"
	"github.com/jpainam/discolaire-sub011/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	ctx := context.Background()

	// set up loggers
	logger := shared.NewLogger("API", conf)
	defer logger.Close()
	dbLogger := shared.NewLogger("DB", conf)

	// set up DB
	db, err := setUpDB(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up job queue
	jobs, err := shared.OpenQueue(ctx, conf, logger)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up job queue: %v", err), err)
	}
	defer func() { _ = jobs.Close() }()

	// set up services
	core.InitMailer(conf, appfs.FS, appfs.EmailTemplatesDir, logger)
	mailSvc := emailsvc.New(conf, logger)
	validate, translator := shared.NewValidator()
	svcs := shared.NewServices(db, jobs, mailSvc, validate, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q : %s", conf.Build, conf))
	defer logger.Info("Application stopped")

	// without redis, nothing else can consume the in-memory queue
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	if mq, ok := jobs.(*queue.MemoryQueue); ok {
		go func() {
			if err := shared.NewWorker(mq, svcs, logger).Run(workerCtx); err != nil {
				logger.Error(fmt.Sprintf("in-process worker stopped: %v", err), err)
			}
		}()
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:       conf.Server.Address,
		Debug:         conf.Debug,
		TestMode:      conf.TestMode,
		Shutdown:      shutdown,
		GradingSvc:    svcs.Grading,
		AttendanceSvc: svcs.Attendance,
		ReportSvc:     svcs.Report,
		Document:      export.Document{SchoolName: conf.AppName},
		Mailer:        mailSvc,
		Logger:        logger,
		Translator:    translator,
	})

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error(fmt.Sprintf("server error: %v", err), err)
		}

	case sig := <-shutdown:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(ctx, conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Stop(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
		}
	}
}

func setUpDB(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
