package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/grading"
)

type (
	sheetRow struct {
		ID          string    `db:"id"`
		SubjectID   string    `db:"subject_id"`
		ClassroomID string    `db:"classroom_id"`
		TermID      string    `db:"term_id"`
		Name        string    `db:"name"`
		Scale       float64   `db:"scale"`
		CreatedAt   time.Time `db:"created_at"`
		CreatedBy   string    `db:"created_by"`
	}

	gradeRow struct {
		ID           string    `db:"id"`
		GradeSheetID string    `db:"grade_sheet_id"`
		StudentID    string    `db:"student_id"`
		SubjectID    string    `db:"subject_id"`
		Grade        float64   `db:"grade"`
		IsAbsent     bool      `db:"is_absent"`
		UpdatedAt    time.Time `db:"updated_at"`
	}
)

func (r sheetRow) unwrap() grading.GradeSheet {
	return grading.GradeSheet{
		ID:          r.ID,
		SubjectID:   r.SubjectID,
		ClassroomID: r.ClassroomID,
		TermID:      r.TermID,
		Name:        r.Name,
		Scale:       r.Scale,
		CreatedAt:   r.CreatedAt.UTC(),
		CreatedBy:   r.CreatedBy,
	}
}

func (r gradeRow) unwrap() grading.GradeEntry {
	return grading.GradeEntry{
		ID:           r.ID,
		GradeSheetID: r.GradeSheetID,
		StudentID:    r.StudentID,
		SubjectID:    r.SubjectID,
		Grade:        r.Grade,
		IsAbsent:     r.IsAbsent,
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

const (
	sheetSelect = `SELECT gs.id, gs.subject_id, s.classroom_id, gs.term_id, gs.name, gs.scale, gs.created_at,
		gs.created_by
		FROM grade_sheets gs JOIN subjects s ON s.id = gs.subject_id`
	gradeSelect = `SELECT g.id, g.grade_sheet_id, g.student_id, gs.subject_id, g.grade, g.is_absent, g.updated_at
		FROM grades g JOIN grade_sheets gs ON gs.id = g.grade_sheet_id`
)

var (
	sheetOrdering = []core.DBOrdering{{Field: "gs.created_at", Ascending: true}, {Field: "gs.id", Ascending: true}}
	gradeOrdering = []core.DBOrdering{{Field: "gs.created_at", Ascending: true}, {Field: "g.student_id", Ascending: true}}
)

type gradingRepository struct {
	db *sqlx.DB
}

var _ grading.Repository = (*gradingRepository)(nil)

func NewGradingRepository(db *sqlx.DB) *gradingRepository {
	return &gradingRepository{db: db}
}

func (repo gradingRepository) CreateSheet(ctx context.Context, sheet grading.GradeSheet, entries []grading.GradeEntry) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO grade_sheets (id, subject_id, term_id, name, scale, created_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			sheet.ID, sheet.SubjectID, sheet.TermID, sheet.Name, sheet.Scale, sheet.CreatedAt, sheet.CreatedBy,
		)
		if err != nil {
			return errors.Wrap(err, "inserting grade sheet")
		}

		stmt, err := tx.PreparexContext(ctx,
			`INSERT INTO grades (id, grade_sheet_id, student_id, grade, is_absent, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
		)
		if err != nil {
			return errors.Wrap(err, "preparing grades insert")
		}
		defer func() { _ = stmt.Close() }()

		for _, e := range entries {
			if _, err = stmt.ExecContext(ctx, e.ID, e.GradeSheetID, e.StudentID, e.Grade, e.IsAbsent, e.UpdatedAt); err != nil {
				return errors.Wrapf(err, "inserting grade of student %s", e.StudentID)
			}
		}
		return nil
	})
}

func (repo gradingRepository) GetSheet(ctx context.Context, id string) (grading.GradeSheet, error) {
	var row sheetRow
	if err := repo.db.GetContext(ctx, &row, sheetSelect+` WHERE gs.id = $1`, id); err != nil {
		return grading.GradeSheet{}, trapNoRowsErr(err, grading.ErrSheetNotFound, "getting grade sheet")
	}
	return row.unwrap(), nil
}

func (repo gradingRepository) QuerySheets(ctx context.Context, filter grading.SheetFilter) ([]grading.GradeSheet, error) {
	var w where
	if filter.ClassroomID != "" {
		w.add("s.classroom_id = ?", filter.ClassroomID)
	}
	if filter.SubjectID != "" {
		w.add("gs.subject_id = ?", filter.SubjectID)
	}
	if len(filter.TermIDs) > 0 {
		w.add("gs.term_id = ANY(?)", pq.Array(filter.TermIDs))
	}

	var rows []sheetRow
	q := sheetSelect + w.String() + core.OrderBy(sheetOrdering...)
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		if pqCode(err) == invalidTextRepr {
			return []grading.GradeSheet{}, nil
		}
		return nil, errors.Wrap(err, "querying grade sheets")
	}
	sheets := make([]grading.GradeSheet, len(rows))
	for i, r := range rows {
		sheets[i] = r.unwrap()
	}
	return sheets, nil
}

func (repo gradingRepository) QueryGrades(ctx context.Context, filter grading.GradeFilter) ([]grading.GradeEntry, error) {
	var w where
	if filter.SheetIDs != nil {
		w.add("g.grade_sheet_id = ANY(?)", pq.Array(filter.SheetIDs))
	}
	if filter.StudentID != "" {
		w.add("g.student_id = ?", filter.StudentID)
	}

	var rows []gradeRow
	q := gradeSelect + w.String() + core.OrderBy(gradeOrdering...)
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		if pqCode(err) == invalidTextRepr {
			return []grading.GradeEntry{}, nil
		}
		return nil, errors.Wrap(err, "querying grades")
	}
	entries := make([]grading.GradeEntry, len(rows))
	for i, r := range rows {
		entries[i] = r.unwrap()
	}
	return entries, nil
}

func (repo gradingRepository) GetGrade(ctx context.Context, sheetID, studentID string) (grading.GradeEntry, error) {
	var row gradeRow
	q := gradeSelect + ` WHERE g.grade_sheet_id = $1 AND g.student_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, sheetID, studentID); err != nil {
		return grading.GradeEntry{}, trapNoRowsErr(err, grading.ErrGradeNotFound, "getting grade")
	}
	return row.unwrap(), nil
}

func (repo gradingRepository) CorrectGrade(ctx context.Context, entry grading.GradeEntry, c grading.Correction) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE grades SET grade = $1, is_absent = $2, updated_at = $3 WHERE id = $4`,
			entry.Grade, entry.IsAbsent, entry.UpdatedAt, entry.ID,
		)
		if err != nil {
			return errors.Wrap(err, "updating grade")
		}
		if err = checkAffected(res, grading.ErrGradeNotFound); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO grade_corrections
			(id, grade_id, old_grade, old_is_absent, new_grade, new_is_absent, reason, corrected_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, c.GradeID, c.OldGrade, c.OldIsAbsent, c.NewGrade, c.NewIsAbsent, c.Reason, c.CorrectedBy, c.CreatedAt,
		)
		return errors.Wrap(err, "inserting grade correction")
	})
}

// DeleteSheet relies on ON DELETE CASCADE for grades and corrections.
func (repo gradingRepository) DeleteSheet(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM grade_sheets WHERE id = $1`, id)
	if err != nil {
		return trapNoRowsErr(err, grading.ErrSheetNotFound, "deleting grade sheet")
	}
	return checkAffected(res, grading.ErrSheetNotFound)
}
