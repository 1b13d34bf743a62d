// Package testutil seeds an in-memory school and wires the services the way the binaries do.
package testutil

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/jpainam/discolaire-sub011/apps/shared"
	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/attendance"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/core/report"
	"github.com/jpainam/discolaire-sub011/core/school"
	appfs "github.com/jpainam/discolaire-sub011/fs"
	emailsvc "github.com/jpainam/discolaire-sub011/services/email"
	logsvc "github.com/jpainam/discolaire-sub011/services/logger"
	"github.com/jpainam/discolaire-sub011/services/queue"
	inmemdb "github.com/jpainam/discolaire-sub011/storage/database/inmem"
)

// Fixture IDs
const (
	ClassroomID = "classroom-6eA"

	AliceID = "student-alice"
	BrunoID = "student-bruno"
	CarlID  = "student-carl"
	DianeID = "student-diane"

	MathID    = "subject-math"
	FrenchID  = "subject-french"
	SportID   = "subject-sport"
	HistoryID = "subject-history" // belongs to another classroom

	QuarterID = "term-q1"
	Month1ID  = "term-m1"
	Month2ID  = "term-m2"
	AnnualID  = "term-annual" // neither monthly nor quarterly
)

var (
	Classroom = school.Classroom{ID: ClassroomID, Name: "6e A", SchoolYearID: "2023-2024"}

	Sciences = school.SubjectGroup{ID: "group-sciences", Name: "Sciences", Order: 1}
	Letters  = school.SubjectGroup{ID: "group-letters", Name: "Letters", Order: 2}

	// Students in the order ClassroomStudents returns them.
	Students = []school.Student{
		{ID: AliceID, RegistrationNumber: "REG001", FirstName: "Alice", LastName: "Amougou", Gender: school.GenderFemale,
			DateOfBirth: date(2011, 3, 14), ClassroomID: ClassroomID, Email: "alice@example.com"},
		{ID: BrunoID, RegistrationNumber: "REG002", FirstName: "Bruno", LastName: "Bella", Gender: school.GenderMale,
			DateOfBirth: date(2010, 11, 2), IsRepeating: true, ClassroomID: ClassroomID},
		{ID: CarlID, RegistrationNumber: "REG003", FirstName: "Carl", LastName: "Chiabi", Gender: school.GenderMale,
			DateOfBirth: date(2011, 7, 30), ClassroomID: ClassroomID, Email: "carl@example.com"},
		{ID: DianeID, RegistrationNumber: "REG004", FirstName: "Diane", LastName: "Dang", Gender: school.GenderFemale,
			DateOfBirth: date(2011, 1, 9), ClassroomID: ClassroomID},
	}

	Subjects = []school.Subject{
		{ID: MathID, ClassroomID: ClassroomID, CourseID: "course-math", CourseName: "Mathematics", Coefficient: 4,
			TeacherName: "M. Eto", Group: &Sciences},
		{ID: FrenchID, ClassroomID: ClassroomID, CourseID: "course-french", CourseName: "French", Coefficient: 3,
			TeacherName: "Mme Ngo", Group: &Letters},
		{ID: SportID, ClassroomID: ClassroomID, CourseID: "course-sport", CourseName: "Sport", Coefficient: 1},
	}

	Terms = []school.Term{
		{ID: QuarterID, Name: "Quarter 1", Type: school.TermQuarter, SchoolYearID: "2023-2024"},
		{ID: Month1ID, Name: "September", Type: school.TermMonthly, SchoolYearID: "2023-2024", ParentID: QuarterID},
		{ID: Month2ID, Name: "October", Type: school.TermMonthly, SchoolYearID: "2023-2024", ParentID: QuarterID},
		{ID: AnnualID, Name: "Annual", Type: school.TermType("ANNUAL"), SchoolYearID: "2023-2024"},
	}
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Config returns a TEST configuration that never reaches external services.
func Config() *core.Config {
	return &core.Config{
		Env:             "TEST",
		AppName:         "Discolaire",
		TestMode:        true,
		FrontendBaseURL: "http://localhost:3000",
		Redis:           core.RedisConfig{PollTimeout: 50 * time.Millisecond},
	}
}

// Logger discards its output.
func Logger() core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), Config())
}

// SeedSchool adds the fixture classroom, students, subjects and terms to db,
// plus a subject of another classroom.
func SeedSchool(db *inmemdb.DB) {
	db.AddClassroom(Classroom)
	db.AddClassroom(school.Classroom{ID: "classroom-5eB", Name: "5e B", SchoolYearID: "2023-2024"})
	for _, s := range Students {
		db.AddStudent(s)
	}
	db.AddStudent(school.Student{ID: "student-eric", FirstName: "Eric", LastName: "Essomba", ClassroomID: "classroom-5eB"})
	for _, s := range Subjects {
		db.AddSubject(s)
	}
	db.AddSubject(school.Subject{ID: HistoryID, ClassroomID: "classroom-5eB", CourseName: "History", Coefficient: 2})
	for _, t := range Terms {
		db.AddTerm(t)
	}
}

// Services are the application services over a seeded in-memory DB.
type Services struct {
	DB         *inmemdb.DB
	Queue      *queue.MemoryQueue
	Mailer     *emailsvc.ConsoleServiceMock
	Validate   *validator.Validate
	Translator ut.Translator
	Logger     core.Logger

	SchoolRepo     school.Repository
	GradingRepo    grading.Repository
	AttendanceRepo attendance.Repository

	Grading    *grading.Service
	Attendance *attendance.Service
	Report     *report.Service
}

func NewServices() *Services {
	conf := Config()
	logger := Logger()
	core.InitMailer(conf, appfs.FS, appfs.EmailTemplatesDir, logger)

	db := inmemdb.Open()
	SeedSchool(db)
	validate, translator := shared.NewValidator()

	svcs := &Services{
		DB:             db,
		Queue:          queue.NewMemoryQueue(conf.Redis.PollTimeout),
		Mailer:         emailsvc.NewConsoleServiceMock(conf, logger),
		Validate:       validate,
		Translator:     translator,
		Logger:         logger,
		SchoolRepo:     inmemdb.NewSchoolRepository(db),
		GradingRepo:    inmemdb.NewGradingRepository(db),
		AttendanceRepo: inmemdb.NewAttendanceRepository(db),
	}
	svcs.Grading = grading.NewService(svcs.GradingRepo, svcs.SchoolRepo, svcs.Queue, svcs.Mailer, validate, logger)
	svcs.Attendance = attendance.NewService(svcs.AttendanceRepo, svcs.SchoolRepo, validate, logger)
	svcs.Report = report.NewService(svcs.SchoolRepo, svcs.Grading, svcs.Attendance, nil)
	return svcs
}

// Grade returns the submission of a grade.
func Grade(studentID string, grade float64) grading.NewGrade {
	return grading.NewGrade{StudentID: studentID, Grade: grade}
}

// Absent returns the submission of an absence.
func Absent(studentID string) grading.NewGrade {
	return grading.NewGrade{StudentID: studentID, IsAbsent: true}
}

// CreateSheet submits a grade sheet and fails the test on error.
func CreateSheet(t *testing.T, svc *grading.Service, subjectID, termID, name string, grades ...grading.NewGrade) (grading.GradeSheet, []grading.GradeEntry) {
	t.Helper()
	sheet, entries, err := svc.CreateSheet(context.Background(), grading.NewGradeSheet{
		SubjectID: subjectID,
		TermID:    termID,
		Name:      name,
		CreatedBy: "teacher-1",
		Grades:    grades,
	})
	if err != nil {
		t.Fatalf("CreateSheet() failed: %v", err)
	}
	return sheet, entries
}

// CreateRecord logs an attendance record and fails the test on error.
func CreateRecord(t *testing.T, svc *attendance.Service, nr attendance.NewRecord) attendance.Record {
	t.Helper()
	if nr.CreatedBy == "" {
		nr.CreatedBy = "supervisor-1"
	}
	if nr.Date.IsZero() {
		nr.Date = date(2023, 9, 18)
	}
	rec, err := svc.Create(context.Background(), nr)
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}
