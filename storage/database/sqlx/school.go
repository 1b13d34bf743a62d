package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/jpainam/discolaire-sub011/core/school"
)

type (
	classroomRow struct {
		ID           string `db:"id"`
		Name         string `db:"name"`
		SchoolYearID string `db:"school_year_id"`
	}

	studentRow struct {
		ID                 string    `db:"id"`
		RegistrationNumber string    `db:"registration_number"`
		FirstName          string    `db:"first_name"`
		LastName           string    `db:"last_name"`
		Gender             string    `db:"gender"`
		DateOfBirth        null.Time `db:"date_of_birth"`
		IsRepeating        bool      `db:"is_repeating"`
		ClassroomID        string    `db:"classroom_id"`
		Email              string    `db:"email"`
	}

	subjectRow struct {
		ID          string      `db:"id"`
		ClassroomID string      `db:"classroom_id"`
		CourseID    string      `db:"course_id"`
		CourseName  string      `db:"course_name"`
		Coefficient float64     `db:"coefficient"`
		TeacherID   null.String `db:"teacher_id"`
		TeacherName string      `db:"teacher_name"`
		GroupID     null.String `db:"group_id"`
		GroupName   null.String `db:"group_name"`
		GroupOrder  null.Int    `db:"group_order"`
	}

	termRow struct {
		ID           string      `db:"id"`
		Name         string      `db:"name"`
		Type         string      `db:"type"`
		SchoolYearID string      `db:"school_year_id"`
		ParentID     null.String `db:"parent_id"`
	}
)

func (r classroomRow) unwrap() school.Classroom {
	return school.Classroom{ID: r.ID, Name: r.Name, SchoolYearID: r.SchoolYearID}
}

func (r studentRow) unwrap() school.Student {
	return school.Student{
		ID:                 r.ID,
		RegistrationNumber: r.RegistrationNumber,
		FirstName:          r.FirstName,
		LastName:           r.LastName,
		Gender:             school.ParseGender(r.Gender),
		DateOfBirth:        r.DateOfBirth.Time.UTC(),
		IsRepeating:        r.IsRepeating,
		ClassroomID:        r.ClassroomID,
		Email:              r.Email,
	}
}

func (r subjectRow) unwrap() school.Subject {
	subj := school.Subject{
		ID:          r.ID,
		ClassroomID: r.ClassroomID,
		CourseID:    r.CourseID,
		CourseName:  r.CourseName,
		Coefficient: r.Coefficient,
		TeacherID:   r.TeacherID.String,
		TeacherName: r.TeacherName,
	}
	if r.GroupID.Valid {
		subj.Group = &school.SubjectGroup{ID: r.GroupID.String, Name: r.GroupName.String, Order: r.GroupOrder.Int}
	}
	return subj
}

func (r termRow) unwrap() school.Term {
	return school.Term{
		ID:           r.ID,
		Name:         r.Name,
		Type:         school.TermType(r.Type),
		SchoolYearID: r.SchoolYearID,
		ParentID:     r.ParentID.String,
	}
}

const (
	studentColumns = `id, registration_number, first_name, last_name, gender, date_of_birth, is_repeating,
		classroom_id, email`
	subjectSelect = `SELECT s.id, s.classroom_id, s.course_id, s.course_name, s.coefficient, s.teacher_id,
		s.teacher_name, s.group_id, g.name AS group_name, g.sort_order AS group_order
		FROM subjects s LEFT JOIN subject_groups g ON g.id = s.group_id`
	termColumns = `id, name, type, school_year_id, parent_id`
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *sqlx.DB) *schoolRepository {
	return &schoolRepository{db: db}
}

func (repo schoolRepository) GetClassroom(ctx context.Context, id string) (school.Classroom, error) {
	var row classroomRow
	err := repo.db.GetContext(ctx, &row, `SELECT id, name, school_year_id FROM classrooms WHERE id = $1`, id)
	if err != nil {
		return school.Classroom{}, trapNoRowsErr(err, school.ErrClassroomNotFound, "getting classroom")
	}
	return row.unwrap(), nil
}

func (repo schoolRepository) GetStudent(ctx context.Context, id string) (school.Student, error) {
	var row studentRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id)
	if err != nil {
		return school.Student{}, trapNoRowsErr(err, school.ErrStudentNotFound, "getting student")
	}
	return row.unwrap(), nil
}

func (repo schoolRepository) GetSubject(ctx context.Context, id string) (school.Subject, error) {
	var row subjectRow
	if err := repo.db.GetContext(ctx, &row, subjectSelect+` WHERE s.id = $1`, id); err != nil {
		return school.Subject{}, trapNoRowsErr(err, school.ErrSubjectNotFound, "getting subject")
	}
	return row.unwrap(), nil
}

func (repo schoolRepository) GetTerm(ctx context.Context, id string) (school.Term, error) {
	var row termRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+termColumns+` FROM terms WHERE id = $1`, id); err != nil {
		return school.Term{}, trapNoRowsErr(err, school.ErrTermNotFound, "getting term")
	}
	return row.unwrap(), nil
}

func (repo schoolRepository) ClassroomStudents(ctx context.Context, classroomID string) ([]school.Student, error) {
	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM students WHERE classroom_id = $1 ORDER BY last_name, first_name`
	if err := repo.db.SelectContext(ctx, &rows, q, classroomID); err != nil {
		return nil, trapNoRowsErr(err, school.ErrClassroomNotFound, "querying classroom students")
	}
	students := make([]school.Student, len(rows))
	for i, r := range rows {
		students[i] = r.unwrap()
	}
	return students, nil
}

func (repo schoolRepository) ClassroomSubjects(ctx context.Context, classroomID string) ([]school.Subject, error) {
	var rows []subjectRow
	q := subjectSelect + ` WHERE s.classroom_id = $1 ORDER BY s.course_name`
	if err := repo.db.SelectContext(ctx, &rows, q, classroomID); err != nil {
		return nil, trapNoRowsErr(err, school.ErrClassroomNotFound, "querying classroom subjects")
	}
	subjects := make([]school.Subject, len(rows))
	for i, r := range rows {
		subjects[i] = r.unwrap()
	}
	return subjects, nil
}

func (repo schoolRepository) ChildTerms(ctx context.Context, parentID string) ([]school.Term, error) {
	var rows []termRow
	q := `SELECT ` + termColumns + ` FROM terms WHERE parent_id = $1 ORDER BY name`
	if err := repo.db.SelectContext(ctx, &rows, q, parentID); err != nil {
		return nil, errors.Wrap(err, "querying child terms")
	}
	terms := make([]school.Term, len(rows))
	for i, r := range rows {
		terms[i] = r.unwrap()
	}
	return terms, nil
}
