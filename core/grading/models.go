package grading

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jpainam/discolaire-sub011/core"
)

const (
	MaxGrade         = 20.0 // grades are out of 20
	PassMark         = 10.0 // a grade or average >= PassMark is a pass
	HonorRollMinimum = 12.0 // minimum (2 decimals) global average to enter the roll of honor
)

var (
	ErrSheetNotFound = core.NewNotFoundError("grade sheet not found")
	ErrGradeNotFound = core.NewNotFoundError("grade not found")
)

// GradeEntry is one student's grade on a GradeSheet.
// Grade is only meaningful when IsAbsent is false.
type GradeEntry struct {
	ID           string    `json:"id"`
	GradeSheetID string    `json:"grade_sheet_id"`
	StudentID    string    `json:"student_id"`
	SubjectID    string    `json:"subject_id"`
	Grade        float64   `json:"grade"`
	IsAbsent     bool      `json:"is_absent"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GradeSheet is one graded assessment of a subject during a term.
type GradeSheet struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subject_id"`
	ClassroomID string    `json:"classroom_id"`
	TermID      string    `json:"term_id"`
	Name        string    `json:"name"`
	Scale       float64   `json:"scale"`
	CreatedAt   time.Time `json:"created_at"`
	CreatedBy   string    `json:"created_by"`
}

// NewGrade is a grade as submitted by a teacher.
type NewGrade struct {
	StudentID string  `json:"student_id" validate:"required"`
	Grade     float64 `json:"grade" validate:"gte=0,lte=20"`
	IsAbsent  bool    `json:"is_absent"`
}

// NewGradeSheet contains information needed to submit a new GradeSheet.
type NewGradeSheet struct {
	SubjectID string     `json:"subject_id" validate:"required"`
	TermID    string     `json:"term_id" validate:"required"`
	Name      string     `json:"name" validate:"required,notblank,max=200"`
	CreatedBy string     `json:"created_by" validate:"required,notblank"`
	Grades    []NewGrade `json:"grades" validate:"required,min=1,dive"`
}

func (ns *NewGradeSheet) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.CreatedBy = core.CleanString(ns.CreatedBy)
	for i := range ns.Grades {
		if ns.Grades[i].IsAbsent {
			ns.Grades[i].Grade = 0
		}
	}
	return validate.Struct(ns)
}

// GradeCorrection is the only way to change a submitted grade.
type GradeCorrection struct {
	Grade       float64 `json:"grade" validate:"gte=0,lte=20"`
	IsAbsent    bool    `json:"is_absent"`
	CorrectedBy string  `json:"corrected_by" validate:"required,notblank"`
	Reason      string  `json:"reason" validate:"max=500"`
}

func (gc *GradeCorrection) Validate(validate *validator.Validate) error {
	gc.CorrectedBy = core.CleanString(gc.CorrectedBy)
	gc.Reason = core.CleanString(gc.Reason)
	if gc.IsAbsent {
		gc.Grade = 0
	}
	return validate.Struct(gc)
}

type SheetFilter struct {
	ClassroomID string   `query:"classroom_id"`
	SubjectID   string   `query:"subject_id"`
	TermIDs     []string `query:"term_id"`
}

type GradeFilter struct {
	SheetIDs  []string
	StudentID string
}

// SheetStats summarizes one grade sheet.
type SheetStats struct {
	SheetID  string     `json:"sheet_id"`
	Graded   int        `json:"graded"`
	Absent   int        `json:"absent"`
	Average  *float64   `json:"average"`
	Min      *float64   `json:"min"`
	Max      *float64   `json:"max"`
	Passed   int        `json:"passed"`
	PassRate Percentage `json:"pass_rate"`
}

// Correction is the audit trail of a GradeCorrection applied to an entry.
type Correction struct {
	ID          string    `json:"id"`
	GradeID     string    `json:"grade_id"`
	OldGrade    float64   `json:"old_grade"`
	OldIsAbsent bool      `json:"old_is_absent"`
	NewGrade    float64   `json:"new_grade"`
	NewIsAbsent bool      `json:"new_is_absent"`
	Reason      string    `json:"reason"`
	CorrectedBy string    `json:"corrected_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type Repository interface {
	// CreateSheet stores the sheet and its entries atomically.
	CreateSheet(ctx context.Context, sheet GradeSheet, entries []GradeEntry) error
	GetSheet(ctx context.Context, id string) (GradeSheet, error)
	// QuerySheets applies AND operation on the non-zero SheetFilter fields.
	QuerySheets(ctx context.Context, filter SheetFilter) ([]GradeSheet, error)
	QueryGrades(ctx context.Context, filter GradeFilter) ([]GradeEntry, error)
	GetGrade(ctx context.Context, sheetID, studentID string) (GradeEntry, error)
	// CorrectGrade updates the entry and records the correction atomically.
	CorrectGrade(ctx context.Context, entry GradeEntry, correction Correction) error
	// DeleteSheet deletes the sheet with its entries and their corrections.
	DeleteSheet(ctx context.Context, id string) error
}
