package school

import (
	"context"
	"strings"
	"time"

	"github.com/jpainam/discolaire-sub011/core"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func ParseGender(s string) Gender {
	switch core.CleanString(s, true /* lower */) {
	case "male", "m":
		return GenderMale
	case "female", "f":
		return GenderFemale
	}
	return ""
}

type TermType string

const (
	TermMonthly TermType = "MONTHLY"
	TermQuarter TermType = "QUARTER"
)

var (
	ErrClassroomNotFound = core.NewNotFoundError("classroom not found")
	ErrStudentNotFound   = core.NewNotFoundError("student not found")
	ErrSubjectNotFound   = core.NewNotFoundError("subject not found")
	ErrTermNotFound      = core.NewNotFoundError("term not found")
)

type Classroom struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	SchoolYearID string `json:"school_year_id"`
}

type Student struct {
	ID                 string    `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Gender             Gender    `json:"gender"`
	DateOfBirth        time.Time `json:"date_of_birth"`
	IsRepeating        bool      `json:"is_repeating"`
	ClassroomID        string    `json:"classroom_id"`
	Email              string    `json:"email,omitempty"`
}

func (s Student) FullName() string {
	return strings.TrimSpace(s.LastName + " " + s.FirstName)
}

type SubjectGroup struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Order int    `json:"order"`
}

// OtherGroup collects the subjects that were not assigned a group; it sorts last.
var OtherGroup = SubjectGroup{ID: "", Name: "Others", Order: 1 << 30}

type Subject struct {
	ID          string        `json:"id"`
	ClassroomID string        `json:"classroom_id"`
	CourseID    string        `json:"course_id"`
	CourseName  string        `json:"course_name"`
	Coefficient float64       `json:"coefficient"`
	TeacherID   string        `json:"teacher_id,omitempty"`
	TeacherName string        `json:"teacher_name,omitempty"`
	Group       *SubjectGroup `json:"group,omitempty"`
}

// SubjectGroup returns the group the subject is reported under.
func (s Subject) SubjectGroup() SubjectGroup {
	if s.Group == nil {
		return OtherGroup
	}
	return *s.Group
}

type Term struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Type         TermType `json:"type"`
	SchoolYearID string   `json:"school_year_id"`
	ParentID     string   `json:"parent_id,omitempty"` // quarter a monthly term belongs to
}

func (t Term) Valid() bool {
	return t.Type == TermMonthly || t.Type == TermQuarter
}

// Repository is the read side of the school reference data (classrooms, students, subjects, terms).
// Missing rows are reported with the Err*NotFound errors above.
type Repository interface {
	GetClassroom(ctx context.Context, id string) (Classroom, error)
	GetStudent(ctx context.Context, id string) (Student, error)
	GetSubject(ctx context.Context, id string) (Subject, error)
	GetTerm(ctx context.Context, id string) (Term, error)
	// ClassroomStudents are ordered by last name, then first name.
	ClassroomStudents(ctx context.Context, classroomID string) ([]Student, error)
	ClassroomSubjects(ctx context.Context, classroomID string) ([]Subject, error)
	// ChildTerms returns the monthly terms of a quarter.
	ChildTerms(ctx context.Context, parentID string) ([]Term, error)
}

// TermWindow returns the IDs of the terms whose grades are aggregated for `term`:
// the term itself, plus its monthly terms when it is a quarter.
func TermWindow(ctx context.Context, repo Repository, term Term) ([]string, error) {
	ids := []string{term.ID}
	if term.Type != TermQuarter {
		return ids, nil
	}
	children, err := repo.ChildTerms(ctx, term.ID)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		ids = append(ids, child.ID)
	}
	return ids, nil
}

// Genders indexes student genders by ID.
func Genders(students []Student) map[string]Gender {
	genders := make(map[string]Gender, len(students))
	for _, s := range students {
		genders[s.ID] = s.Gender
	}
	return genders
}
