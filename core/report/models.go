package report

import (
	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/attendance"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/core/school"
)

// ErrNoReport is returned for terms that are neither monthly nor quarterly.
var ErrNoReport = core.NewNotFoundError("no report available")

// SubjectLine is one subject of a report card. Pointer fields are nil when there is no data.
type SubjectLine struct {
	SubjectID    string                 `json:"subject_id"`
	CourseName   string                 `json:"course_name"`
	TeacherName  string                 `json:"teacher_name"`
	Coefficient  float64                `json:"coefficient"`
	Average      *float64               `json:"average"`
	Points       *float64               `json:"points"`
	MaxPoints    *float64               `json:"max_points"`
	ClassAverage *float64               `json:"class_average"`
	ClassMin     *float64               `json:"class_min"`
	ClassMax     *float64               `json:"class_max"`
	Rank         *grading.ClassroomRank `json:"rank"`
	Appreciation string                 `json:"appreciation"`
}

// GroupReport is a group of subjects with its subtotal.
type GroupReport struct {
	Group        school.SubjectGroup `json:"group"`
	Lines        []SubjectLine       `json:"lines"`
	Coefficients float64             `json:"coefficients"`
	Points       float64             `json:"points"`
	MaxPoints    float64             `json:"max_points"`
	Average      *float64            `json:"average"`
}

type ReportCard struct {
	Student      school.Student               `json:"student"`
	Classroom    school.Classroom             `json:"classroom"`
	Term         school.Term                  `json:"term"`
	Groups       []GroupReport                `json:"groups"`
	Coefficients float64                      `json:"coefficients"`
	Points       float64                      `json:"points"`
	MaxPoints    float64                      `json:"max_points"`
	Average      *float64                     `json:"average"` // nil when the student has no grade
	Rank         *grading.ClassroomRank       `json:"rank"`
	ClassSize    int                          `json:"class_size"`
	Appreciation string                       `json:"appreciation"`
	Discipline   attendance.DisciplineSummary `json:"discipline"`
}

// RankLabel renders the rank of the card, "-" when the student is not ranked.
func (rc ReportCard) RankLabel() string {
	if rc.Rank == nil {
		return "-"
	}
	return rc.Rank.Label()
}

// ClassroomStats is computed over the averages of the ranked students.
type ClassroomStats struct {
	ClassSize    int                `json:"class_size"`
	Ranked       int                `json:"ranked"`
	Average      *float64           `json:"average"`
	Min          *float64           `json:"min"`
	Max          *float64           `json:"max"`
	AboveAverage int                `json:"above_average"` // average >= pass mark
	SuccessRate  grading.Percentage `json:"success_rate"`
}

type ClassroomReport struct {
	Classroom school.Classroom        `json:"classroom"`
	Term      school.Term             `json:"term"`
	Ranks     []grading.ClassroomRank `json:"ranks"`
	Cards     []ReportCard            `json:"cards"`
	Stats     ClassroomStats          `json:"stats"`
}

// Card returns the report card of a student.
func (cr ClassroomReport) Card(studentID string) (ReportCard, bool) {
	for _, card := range cr.Cards {
		if card.Student.ID == studentID {
			return card, true
		}
	}
	return ReportCard{}, false
}

type HonorEntry struct {
	Rank         grading.ClassroomRank `json:"rank"`
	Student      school.Student        `json:"student"`
	Average      float64               `json:"average"`
	Appreciation string                `json:"appreciation"`
}

// RollOfHonor holds the students whose average rounded to 2 decimals is at least grading.HonorRollMinimum, best first.
type RollOfHonor struct {
	Classroom school.Classroom `json:"classroom"`
	Term      school.Term      `json:"term"`
	Entries   []HonorEntry     `json:"entries"`
}

// StudentDiscipline is one row of the discipline report of a classroom.
type StudentDiscipline struct {
	Student school.Student               `json:"student"`
	Summary attendance.DisciplineSummary `json:"summary"`
}
