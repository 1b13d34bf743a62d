package report

import (
	"context"

	"github.com/jpainam/discolaire-sub011/core/attendance"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/core/school"
)

type (
	// GradeCollector is implemented by grading.Service.
	GradeCollector interface {
		Collect(ctx context.Context, classroomID string, termIDs []string) (*grading.Collection, error)
	}

	// DisciplineSource is implemented by attendance.Service.
	DisciplineSource interface {
		Summaries(ctx context.Context, classroomID string, termIDs []string) (map[string]attendance.DisciplineSummary, error)
	}

	Service struct {
		school     school.Repository
		grades     GradeCollector
		discipline DisciplineSource
		assembler  *Assembler
	}
)

func NewService(schoolRepo school.Repository, grades GradeCollector, discipline DisciplineSource, appreciator grading.Appreciator) *Service {
	return &Service{
		school:     schoolRepo,
		grades:     grades,
		discipline: discipline,
		assembler:  NewAssembler(appreciator),
	}
}

// ClassroomReport ranks the students of a classroom over a monthly or quarterly term.
// Errors of the data layer are returned unchanged.
func (svc *Service) ClassroomReport(ctx context.Context, classroomID, termID string) (ClassroomReport, error) {
	term, err := svc.school.GetTerm(ctx, termID)
	if err != nil {
		return ClassroomReport{}, err
	}
	if !term.Valid() {
		return ClassroomReport{}, ErrNoReport
	}
	classroom, err := svc.school.GetClassroom(ctx, classroomID)
	if err != nil {
		return ClassroomReport{}, err
	}

	students, err := svc.school.ClassroomStudents(ctx, classroom.ID)
	if err != nil {
		return ClassroomReport{}, err
	}
	subjects, err := svc.school.ClassroomSubjects(ctx, classroom.ID)
	if err != nil {
		return ClassroomReport{}, err
	}
	window, err := school.TermWindow(ctx, svc.school, term)
	if err != nil {
		return ClassroomReport{}, err
	}
	grades, err := svc.grades.Collect(ctx, classroom.ID, window)
	if err != nil {
		return ClassroomReport{}, err
	}

	var discipline map[string]attendance.DisciplineSummary
	if svc.discipline != nil {
		if discipline, err = svc.discipline.Summaries(ctx, classroom.ID, window); err != nil {
			return ClassroomReport{}, err
		}
	}

	return svc.assembler.Classroom(Input{
		Classroom:  classroom,
		Term:       term,
		Students:   students,
		Subjects:   subjects,
		Grades:     grades,
		Discipline: discipline,
	}), nil
}

// StudentReportCard returns the report card of one student, ranked within its classroom.
func (svc *Service) StudentReportCard(ctx context.Context, studentID, termID string) (ReportCard, error) {
	student, err := svc.school.GetStudent(ctx, studentID)
	if err != nil {
		return ReportCard{}, err
	}
	cr, err := svc.ClassroomReport(ctx, student.ClassroomID, termID)
	if err != nil {
		return ReportCard{}, err
	}
	card, ok := cr.Card(student.ID)
	if !ok {
		return ReportCard{}, school.ErrStudentNotFound
	}
	return card, nil
}

// RollOfHonor lists the students of the classroom whose term average reaches grading.HonorRollMinimum.
// Averages are compared as displayed, rounded to 2 decimals: 11.996 shows as 12.00 and is on the roll.
func (svc *Service) RollOfHonor(ctx context.Context, classroomID, termID string) (RollOfHonor, error) {
	cr, err := svc.ClassroomReport(ctx, classroomID, termID)
	if err != nil {
		return RollOfHonor{}, err
	}
	return svc.assembler.RollOfHonor(cr), nil
}

// Discipline lists the discipline summary of every student of the classroom over the term window.
// Students without records get a zero summary.
func (svc *Service) Discipline(ctx context.Context, classroomID, termID string) ([]StudentDiscipline, error) {
	term, err := svc.school.GetTerm(ctx, termID)
	if err != nil {
		return nil, err
	}
	if !term.Valid() {
		return nil, ErrNoReport
	}
	classroom, err := svc.school.GetClassroom(ctx, classroomID)
	if err != nil {
		return nil, err
	}
	students, err := svc.school.ClassroomStudents(ctx, classroom.ID)
	if err != nil {
		return nil, err
	}
	window, err := school.TermWindow(ctx, svc.school, term)
	if err != nil {
		return nil, err
	}

	var summaries map[string]attendance.DisciplineSummary
	if svc.discipline != nil {
		if summaries, err = svc.discipline.Summaries(ctx, classroom.ID, window); err != nil {
			return nil, err
		}
	}
	rows := make([]StudentDiscipline, len(students))
	for i, s := range students {
		rows[i] = StudentDiscipline{Student: s, Summary: summaries[s.ID]}
	}
	return rows, nil
}
