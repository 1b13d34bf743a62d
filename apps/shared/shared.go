// Package shared wires the dependencies common to the API and the admin binaries.
package shared

import (
	"context"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/attendance"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/core/report"
	logsvc "github.com/jpainam/discolaire-sub011/services/logger"
	"github.com/jpainam/discolaire-sub011/services/queue"
	sqlxrepos "github.com/jpainam/discolaire-sub011/storage/database/sqlx"
)

// NewLogger returns a Rollbar logger writing to stdout with the given prefix, eg. "API".
func NewLogger(prefix string, conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(
		log.New(os.Stdout, prefix+" : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
}

// NewValidator registers every custom validation and its english translation.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	grading.InitValidators(validate, translator)
	attendance.InitValidators(validate, translator)
	return validate, translator
}

// OpenQueue connects to Redis, or falls back to an in-process queue when no Redis address is configured.
func OpenQueue(ctx context.Context, conf *core.Config, logger core.Logger) (queue.Queue, error) {
	if conf.Redis.Address == "" {
		logger.Warn("redis address not set: jobs are queued in memory")
		return queue.NewMemoryQueue(conf.Redis.PollTimeout), nil
	}
	return queue.Connect(ctx, conf.Redis, logger)
}

type Services struct {
	Grading    *grading.Service
	Attendance *attendance.Service
	Report     *report.Service
}

// NewServices builds the application services over the postgres repositories.
func NewServices(
	db *sqlx.DB,
	jobs core.JobQueue,
	mailer core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) Services {
	schoolRepo := sqlxrepos.NewSchoolRepository(db)
	gradingSvc := grading.NewService(sqlxrepos.NewGradingRepository(db), schoolRepo, jobs, mailer, validate, logger)
	attendanceSvc := attendance.NewService(sqlxrepos.NewAttendanceRepository(db), schoolRepo, validate, logger)
	return Services{
		Grading:    gradingSvc,
		Attendance: attendanceSvc,
		Report:     report.NewService(schoolRepo, gradingSvc, attendanceSvc, nil),
	}
}

// NewWorker returns a worker handling every background job of the application.
func NewWorker(consumer queue.Consumer, svcs Services, logger core.Logger) *queue.Worker {
	w := queue.NewWorker(consumer, logger)
	w.Handle(grading.NotificationJob, NotificationHandler(svcs.Grading))
	return w
}

// NotificationHandler emails the grades of the sheet named in the job.
func NotificationHandler(svc *grading.Service) queue.HandlerFunc {
	return func(ctx context.Context, job core.Job) error {
		var payload grading.NotificationPayload
		if err := job.Decode(&payload); err != nil {
			return err
		}
		if payload.SheetID == "" {
			return errors.Errorf("%s: missing sheet_id", job.Name)
		}
		return svc.NotifyGradesPublished(ctx, payload.SheetID)
	}
}
