package grading

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/school"
)

// NotificationJob is enqueued when a grade sheet is submitted.
const NotificationJob = "grade-notification"

type NotificationPayload struct {
	SheetID string `json:"sheet_id"`
}

type Service struct {
	repo     Repository
	school   school.Repository
	queue    core.JobQueue
	mailer   core.EmailService
	validate *validator.Validate
	log      core.Logger
}

func NewService(
	repo Repository,
	schoolRepo school.Repository,
	queue core.JobQueue,
	mailer core.EmailService,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		school:   schoolRepo,
		queue:    queue,
		mailer:   mailer,
		validate: validate,
		log:      logger,
	}
}

// CreateSheet stores a new grade sheet and schedules the notification of its students.
func (svc *Service) CreateSheet(ctx context.Context, ns NewGradeSheet) (GradeSheet, []GradeEntry, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return GradeSheet{}, nil, err
	}

	subject, err := svc.school.GetSubject(ctx, ns.SubjectID)
	if err != nil {
		return GradeSheet{}, nil, err
	}
	if _, err = svc.school.GetTerm(ctx, ns.TermID); err != nil {
		return GradeSheet{}, nil, err
	}
	if err = svc.checkStudents(ctx, subject.ClassroomID, ns.Grades); err != nil {
		return GradeSheet{}, nil, err
	}

	now := time.Now().UTC()
	sheet := GradeSheet{
		ID:          uuid.New().String(),
		SubjectID:   subject.ID,
		ClassroomID: subject.ClassroomID,
		TermID:      ns.TermID,
		Name:        ns.Name,
		Scale:       MaxGrade,
		CreatedAt:   now,
		CreatedBy:   ns.CreatedBy,
	}
	entries := make([]GradeEntry, len(ns.Grades))
	for i, g := range ns.Grades {
		entries[i] = GradeEntry{
			ID:           uuid.New().String(),
			GradeSheetID: sheet.ID,
			StudentID:    g.StudentID,
			SubjectID:    subject.ID,
			Grade:        g.Grade,
			IsAbsent:     g.IsAbsent,
			UpdatedAt:    now,
		}
	}
	if err = svc.repo.CreateSheet(ctx, sheet, entries); err != nil {
		return GradeSheet{}, nil, errors.Wrap(err, "creating grade sheet")
	}

	svc.enqueueNotification(ctx, sheet.ID)
	return sheet, entries, nil
}

// checkStudents rejects grades of students who are not in the classroom.
func (svc *Service) checkStudents(ctx context.Context, classroomID string, grades []NewGrade) error {
	students, err := svc.school.ClassroomStudents(ctx, classroomID)
	if err != nil {
		return err
	}
	enrolled := make(map[string]bool, len(students))
	for _, s := range students {
		enrolled[s.ID] = true
	}
	for i, g := range grades {
		if !enrolled[g.StudentID] {
			return core.NewValidationError(nil, core.FieldError{
				Field: fmt.Sprintf("grades[%d].student_id", i),
				Error: "student is not enrolled in this classroom",
			})
		}
	}
	return nil
}

// enqueueNotification never fails the caller: a lost notification is only logged.
func (svc *Service) enqueueNotification(ctx context.Context, sheetID string) {
	if svc.queue == nil {
		return
	}
	job, err := core.NewJob(NotificationJob, NotificationPayload{SheetID: sheetID})
	if err == nil {
		err = svc.queue.Enqueue(ctx, job)
	}
	if err != nil {
		svc.log.Error(fmt.Sprintf("grading.enqueueNotification(%s): %v", sheetID, err), err)
	}
}

func (svc *Service) GetSheet(ctx context.Context, id string) (GradeSheet, error) {
	return svc.repo.GetSheet(ctx, id)
}

func (svc *Service) QuerySheets(ctx context.Context, filter SheetFilter) ([]GradeSheet, error) {
	return svc.repo.QuerySheets(ctx, filter)
}

// Grades returns the entries of a grade sheet.
func (svc *Service) Grades(ctx context.Context, sheetID string) ([]GradeEntry, error) {
	if _, err := svc.repo.GetSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	return svc.repo.QueryGrades(ctx, GradeFilter{SheetIDs: []string{sheetID}})
}

// CorrectGrade changes the grade of a student on a sheet, keeping an audit of the previous value.
func (svc *Service) CorrectGrade(ctx context.Context, sheetID, studentID string, gc GradeCorrection) (GradeEntry, error) {
	if err := gc.Validate(svc.validate); err != nil {
		return GradeEntry{}, err
	}

	entry, err := svc.repo.GetGrade(ctx, sheetID, studentID)
	if err != nil {
		return GradeEntry{}, err
	}

	now := time.Now().UTC()
	correction := Correction{
		ID:          uuid.New().String(),
		GradeID:     entry.ID,
		OldGrade:    entry.Grade,
		OldIsAbsent: entry.IsAbsent,
		NewGrade:    gc.Grade,
		NewIsAbsent: gc.IsAbsent,
		Reason:      gc.Reason,
		CorrectedBy: gc.CorrectedBy,
		CreatedAt:   now,
	}
	entry.Grade = gc.Grade
	entry.IsAbsent = gc.IsAbsent
	entry.UpdatedAt = now

	if err = svc.repo.CorrectGrade(ctx, entry, correction); err != nil {
		return GradeEntry{}, errors.Wrap(err, "correcting grade")
	}
	return entry, nil
}

// DeleteSheet is an administrative operation: the sheet goes away with all its grades.
func (svc *Service) DeleteSheet(ctx context.Context, id string) error {
	if _, err := svc.repo.GetSheet(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteSheet(ctx, id)
}

func (svc *Service) SheetStats(ctx context.Context, sheetID string) (SheetStats, error) {
	entries, err := svc.Grades(ctx, sheetID)
	if err != nil {
		return SheetStats{}, err
	}
	return ComputeSheetStats(sheetID, entries), nil
}

// ComputeSheetStats summarizes the entries of one sheet.
func ComputeSheetStats(sheetID string, entries []GradeEntry) SheetStats {
	stats := SheetStats{SheetID: sheetID}
	grades := PresentGrades(entries)
	stats.Graded = len(grades)
	stats.Absent = len(entries) - len(grades)
	for _, g := range grades {
		if g >= PassMark {
			stats.Passed++
		}
	}
	if s, ok := Summarize(grades); ok {
		avg, lo, hi := s.Average, s.Min, s.Max
		stats.Average, stats.Min, stats.Max = &avg, &lo, &hi
	}
	stats.PassRate = Percent(stats.Passed, stats.Graded)
	return stats
}

// SuccessRate computes the gender split of the pass rate of a sheet.
func (svc *Service) SuccessRate(ctx context.Context, sheetID string) (SuccessRate, error) {
	sheet, err := svc.repo.GetSheet(ctx, sheetID)
	if err != nil {
		return SuccessRate{}, err
	}
	entries, err := svc.repo.QueryGrades(ctx, GradeFilter{SheetIDs: []string{sheetID}})
	if err != nil {
		return SuccessRate{}, err
	}
	students, err := svc.school.ClassroomStudents(ctx, sheet.ClassroomID)
	if err != nil {
		return SuccessRate{}, err
	}
	return ComputeSuccessRate(entries, school.Genders(students)), nil
}

// Collect gathers the grades of a classroom over the given terms.
func (svc *Service) Collect(ctx context.Context, classroomID string, termIDs []string) (*Collection, error) {
	sheets, err := svc.repo.QuerySheets(ctx, SheetFilter{ClassroomID: classroomID, TermIDs: termIDs})
	if err != nil {
		return nil, err
	}
	if len(sheets) == 0 {
		return Collect(nil, nil), nil
	}
	ids := make([]string, len(sheets))
	for i, s := range sheets {
		ids[i] = s.ID
	}
	entries, err := svc.repo.QueryGrades(ctx, GradeFilter{SheetIDs: ids})
	if err != nil {
		return nil, err
	}
	return Collect(sheets, entries), nil
}

// GradePublished is the data of the grades_published email templates.
type GradePublished struct {
	StudentName  string
	SheetName    string
	SubjectName  string
	Grade        string
	IsAbsent     bool
	ClassAverage string
}

// NotifyGradesPublished emails their grade to every student of the sheet who has an email address.
func (svc *Service) NotifyGradesPublished(ctx context.Context, sheetID string) error {
	sheet, err := svc.repo.GetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	subject, err := svc.school.GetSubject(ctx, sheet.SubjectID)
	if err != nil {
		return err
	}
	entries, err := svc.repo.QueryGrades(ctx, GradeFilter{SheetIDs: []string{sheetID}})
	if err != nil {
		return err
	}
	students, err := svc.school.ClassroomStudents(ctx, sheet.ClassroomID)
	if err != nil {
		return err
	}

	classAvg := "N/A"
	if s, ok := SummarizeEntries(entries); ok {
		classAvg = fmt.Sprintf("%.2f", s.Average)
	}
	byID := make(map[string]school.Student, len(students))
	for _, s := range students {
		byID[s.ID] = s
	}

	messages := make([]*core.EmailMessage, 0, len(entries))
	for _, e := range entries {
		student, ok := byID[e.StudentID]
		if !ok || student.Email == "" {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: student.FullName(), Address: student.Email}},
			Subject:      fmt.Sprintf("New grade: %s", sheet.Name),
			TemplateName: "grades_published",
			TemplateData: GradePublished{
				StudentName:  student.FullName(),
				SheetName:    sheet.Name,
				SubjectName:  subject.CourseName,
				Grade:        fmt.Sprintf("%.2f", e.Grade),
				IsAbsent:     e.IsAbsent,
				ClassAverage: classAvg,
			},
		})
	}
	if len(messages) > 0 {
		svc.mailer.SendMessages(messages...)
	}
	return nil
}
