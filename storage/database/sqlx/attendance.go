package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/attendance"
)

type (
	recordRow struct {
		ID        string      `db:"id"`
		StudentID string      `db:"student_id"`
		TermID    string      `db:"term_id"`
		Kind      string      `db:"kind"`
		Date      time.Time   `db:"date"`
		Hours     null.Int    `db:"hours"`
		Minutes   null.Int    `db:"minutes"`
		Count     null.Int    `db:"count"`
		Task      null.String `db:"task"`
		Reason    null.String `db:"reason"`
		StartDate null.Time   `db:"start_date"`
		EndDate   null.Time   `db:"end_date"`
		CreatedBy string      `db:"created_by"`
		CreatedAt time.Time   `db:"created_at"`

		// justification, if any (LEFT JOIN)
		JID          null.String    `db:"j_id"`
		JStatus      null.String    `db:"j_status"`
		JReason      null.String    `db:"j_reason"`
		JComment     null.String    `db:"j_comment"`
		JAttachments pq.StringArray `db:"j_attachments"`
		JCreatedBy   null.String    `db:"j_created_by"`
		JReviewedBy  null.String    `db:"j_reviewed_by"`
		JCreatedAt   null.Time      `db:"j_created_at"`
		JReviewedAt  null.Time      `db:"j_reviewed_at"`
	}

	justificationRow struct {
		ID          string         `db:"id"`
		RecordID    string         `db:"record_id"`
		Status      string         `db:"status"`
		Reason      string         `db:"reason"`
		Comment     string         `db:"comment"`
		Attachments pq.StringArray `db:"attachments"`
		CreatedBy   string         `db:"created_by"`
		ReviewedBy  null.String    `db:"reviewed_by"`
		CreatedAt   time.Time      `db:"created_at"`
		ReviewedAt  null.Time      `db:"reviewed_at"`
	}
)

func (r recordRow) detail() attendance.Detail {
	switch attendance.Kind(r.Kind) {
	case attendance.KindAbsence:
		return attendance.Absence{Hours: r.Hours.Int}
	case attendance.KindLateness:
		return attendance.Lateness{Minutes: r.Minutes.Int}
	case attendance.KindConsigne:
		return attendance.Consigne{Hours: r.Hours.Int, Task: r.Task.String}
	case attendance.KindChatter:
		return attendance.Chatter{Count: r.Count.Int}
	case attendance.KindExclusion:
		return attendance.Exclusion{
			StartDate: r.StartDate.Time.UTC(),
			EndDate:   r.EndDate.Time.UTC(),
			Reason:    r.Reason.String,
		}
	}
	return nil
}

func (r recordRow) unwrap() attendance.Record {
	rec := attendance.Record{
		ID:        r.ID,
		StudentID: r.StudentID,
		TermID:    r.TermID,
		Date:      r.Date.UTC(),
		CreatedBy: r.CreatedBy,
		CreatedAt: r.CreatedAt.UTC(),
		Detail:    r.detail(),
	}
	if r.JID.Valid {
		j := justificationRow{
			ID:          r.JID.String,
			RecordID:    r.ID,
			Status:      r.JStatus.String,
			Reason:      r.JReason.String,
			Comment:     r.JComment.String,
			Attachments: r.JAttachments,
			CreatedBy:   r.JCreatedBy.String,
			ReviewedBy:  r.JReviewedBy,
			CreatedAt:   r.JCreatedAt.Time,
			ReviewedAt:  r.JReviewedAt,
		}.unwrap()
		rec.Justification = &j
	}
	return rec
}

func (r justificationRow) unwrap() attendance.Justification {
	j := attendance.Justification{
		ID:          r.ID,
		RecordID:    r.RecordID,
		Status:      attendance.Status(r.Status),
		Reason:      r.Reason,
		Comment:     r.Comment,
		Attachments: []string(r.Attachments),
		CreatedBy:   r.CreatedBy,
		ReviewedBy:  r.ReviewedBy.String,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if j.Attachments == nil {
		j.Attachments = []string{}
	}
	if r.ReviewedAt.Valid {
		t := r.ReviewedAt.Time.UTC()
		j.ReviewedAt = &t
	}
	return j
}

// recordColumns flattens the detail of a record into its nullable columns.
func recordColumns(rec attendance.Record) (hours, minutes, count null.Int, task, reason null.String, start, end null.Time) {
	switch d := rec.Detail.(type) {
	case attendance.Absence:
		hours = null.IntFrom(d.Hours)
	case attendance.Lateness:
		minutes = null.IntFrom(d.Minutes)
	case attendance.Consigne:
		hours = null.IntFrom(d.Hours)
		task = null.StringFrom(d.Task)
	case attendance.Chatter:
		count = null.IntFrom(d.Count)
	case attendance.Exclusion:
		reason = null.StringFrom(d.Reason)
		start = null.TimeFrom(d.StartDate)
		end = null.TimeFrom(d.EndDate)
	}
	return
}

const (
	recordSelect = `SELECT r.id, r.student_id, r.term_id, r.kind, r.date, r.hours, r.minutes, r.count, r.task,
		r.reason, r.start_date, r.end_date, r.created_by, r.created_at,
		j.id AS j_id, j.status AS j_status, j.reason AS j_reason, j.comment AS j_comment,
		j.attachments AS j_attachments, j.created_by AS j_created_by, j.reviewed_by AS j_reviewed_by,
		j.created_at AS j_created_at, j.reviewed_at AS j_reviewed_at
		FROM attendance_records r
		LEFT JOIN justifications j ON j.record_id = r.id`
	justificationColumns = `id, record_id, status, reason, comment, attachments, created_by, reviewed_by,
		created_at, reviewed_at`
)

var recordOrdering = []core.DBOrdering{{Field: "r.date", Ascending: true}, {Field: "r.created_at", Ascending: true}}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) error {
	hours, minutes, count, task, reason, start, end := recordColumns(rec)
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO attendance_records
		(id, student_id, term_id, kind, date, hours, minutes, count, task, reason, start_date, end_date,
		created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rec.ID, rec.StudentID, rec.TermID, string(rec.Kind()), rec.Date, hours, minutes, count, task, reason,
		start, end, rec.CreatedBy, rec.CreatedAt,
	)
	return errors.Wrap(err, "inserting attendance record")
}

func (repo attendanceRepository) GetRecord(ctx context.Context, id string) (attendance.Record, error) {
	var row recordRow
	if err := repo.db.GetContext(ctx, &row, recordSelect+` WHERE r.id = $1`, id); err != nil {
		return attendance.Record{}, trapNoRowsErr(err, attendance.ErrRecordNotFound, "getting attendance record")
	}
	return row.unwrap(), nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	q := recordSelect
	var w where
	if filter.ClassroomID != "" {
		q += ` JOIN students st ON st.id = r.student_id`
		w.add("st.classroom_id = ?", filter.ClassroomID)
	}
	if filter.StudentID != "" {
		w.add("r.student_id = ?", filter.StudentID)
	}
	if len(filter.TermIDs) > 0 {
		w.add("r.term_id = ANY(?)", pq.Array(filter.TermIDs))
	}
	if filter.Kind != "" {
		w.add("r.kind = ?", string(filter.Kind))
	}

	var rows []recordRow
	if err := repo.db.SelectContext(ctx, &rows, q+w.String()+core.OrderBy(recordOrdering...), w.args...); err != nil {
		if pqCode(err) == invalidTextRepr {
			return []attendance.Record{}, nil
		}
		return nil, errors.Wrap(err, "querying attendance records")
	}
	records := make([]attendance.Record, len(rows))
	for i, r := range rows {
		records[i] = r.unwrap()
	}
	return records, nil
}

func (repo attendanceRepository) DeleteRecord(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM attendance_records WHERE id = $1`, id)
	if err != nil {
		return trapNoRowsErr(err, attendance.ErrRecordNotFound, "deleting attendance record")
	}
	return checkAffected(res, attendance.ErrRecordNotFound)
}

func (repo attendanceRepository) CreateJustification(ctx context.Context, j attendance.Justification) error {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO justifications (id, record_id, status, reason, comment, attachments, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		j.ID, j.RecordID, string(j.Status), j.Reason, j.Comment, pq.Array(j.Attachments), j.CreatedBy, j.CreatedAt,
	)
	if pqCode(err) == uniqueViolation {
		return attendance.ErrAlreadyJustified
	}
	return errors.Wrap(err, "inserting justification")
}

func (repo attendanceRepository) GetJustification(ctx context.Context, id string) (attendance.Justification, error) {
	var row justificationRow
	q := `SELECT ` + justificationColumns + ` FROM justifications WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return attendance.Justification{}, trapNoRowsErr(err, attendance.ErrJustificationNotFound, "getting justification")
	}
	return row.unwrap(), nil
}

// UpdateJustification only writes over a pending justification: of two concurrent reviews, the later gets ErrInvalidTransition.
func (repo attendanceRepository) UpdateJustification(ctx context.Context, j attendance.Justification) error {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE justifications SET status = $1, comment = $2, reviewed_by = $3, reviewed_at = $4 WHERE id = $5 AND status = $6`,
		string(j.Status), j.Comment, null.NewString(j.ReviewedBy, j.ReviewedBy != ""), null.TimeFromPtr(j.ReviewedAt), j.ID,
		string(attendance.StatusPending),
	)
	if err != nil {
		if pqCode(err) == invalidTextRepr {
			return attendance.ErrJustificationNotFound
		}
		return errors.Wrap(err, "updating justification")
	}
	if err = checkAffected(res, attendance.ErrInvalidTransition); err != attendance.ErrInvalidTransition {
		return err
	}
	// nothing pending under that id: tell a reviewed justification from a missing one
	if _, err = repo.GetJustification(ctx, j.ID); err != nil {
		return err
	}
	return attendance.ErrInvalidTransition
}
