package attendance

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
)

var (
	ErrRecordNotFound        = core.NewNotFoundError("attendance record not found")
	ErrJustificationNotFound = core.NewNotFoundError("justification not found")
	ErrNotJustifiable        = core.NewConflictError("this kind of record cannot be justified")
	ErrAlreadyJustified      = core.NewConflictError("this record already has a justification")
	ErrInvalidTransition     = core.NewConflictError("invalid justification status transition")
)

type Kind string

const (
	KindAbsence   Kind = "absence"
	KindLateness  Kind = "lateness"
	KindConsigne  Kind = "consigne"
	KindChatter   Kind = "chatter"
	KindExclusion Kind = "exclusion"
)

var AllKinds = []Kind{KindAbsence, KindLateness, KindConsigne, KindChatter, KindExclusion}

func (k Kind) Valid() bool {
	for _, kind := range AllKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Justifiable reports whether records of this kind accept a justification.
// Consignes and exclusions are sanctions, not incidents, so they cannot be excused.
func (k Kind) Justifiable() bool {
	return k == KindAbsence || k == KindLateness || k == KindChatter
}

// Detail is the kind-specific part of a Record.
type Detail interface {
	Kind() Kind
	detail()
}

type (
	Absence struct {
		Hours int `json:"hours"`
	}

	Lateness struct {
		Minutes int `json:"minutes"`
	}

	Consigne struct {
		Hours int    `json:"hours"`
		Task  string `json:"task"`
	}

	Chatter struct {
		Count int `json:"count"`
	}

	Exclusion struct {
		StartDate time.Time `json:"start_date"`
		EndDate   time.Time `json:"end_date"`
		Reason    string    `json:"reason"`
	}
)

func (Absence) Kind() Kind   { return KindAbsence }
func (Lateness) Kind() Kind  { return KindLateness }
func (Consigne) Kind() Kind  { return KindConsigne }
func (Chatter) Kind() Kind   { return KindChatter }
func (Exclusion) Kind() Kind { return KindExclusion }

func (Absence) detail()   {}
func (Lateness) detail()  {}
func (Consigne) detail()  {}
func (Chatter) detail()   {}
func (Exclusion) detail() {}

// Record is one attendance or discipline event of a student.
type Record struct {
	ID            string
	StudentID     string
	TermID        string
	Date          time.Time
	CreatedBy     string
	CreatedAt     time.Time
	Detail        Detail
	Justification *Justification
}

type recordJSON struct {
	ID            string          `json:"id"`
	StudentID     string          `json:"student_id"`
	TermID        string          `json:"term_id"`
	Type          Kind            `json:"type"`
	Date          time.Time       `json:"date"`
	Detail        json.RawMessage `json:"detail"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	Justification *Justification  `json:"justification"`
}

func (r Record) Kind() Kind {
	if r.Detail == nil {
		return ""
	}
	return r.Detail.Kind()
}

// IsJustified reports whether the record has an approved justification.
func (r Record) IsJustified() bool {
	return r.Justification != nil && r.Justification.Status == StatusApproved
}

func (r Record) MarshalJSON() ([]byte, error) {
	detail, err := json.Marshal(r.Detail)
	if err != nil {
		return nil, err
	}
	return json.Marshal(recordJSON{
		ID:            r.ID,
		StudentID:     r.StudentID,
		TermID:        r.TermID,
		Type:          r.Kind(),
		Date:          r.Date,
		Detail:        detail,
		CreatedBy:     r.CreatedBy,
		CreatedAt:     r.CreatedAt,
		Justification: r.Justification,
	})
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var rj recordJSON
	if err := json.Unmarshal(data, &rj); err != nil {
		return err
	}
	detail, err := DecodeDetail(rj.Type, rj.Detail)
	if err != nil {
		return err
	}
	*r = Record{
		ID:            rj.ID,
		StudentID:     rj.StudentID,
		TermID:        rj.TermID,
		Date:          rj.Date,
		CreatedBy:     rj.CreatedBy,
		CreatedAt:     rj.CreatedAt,
		Detail:        detail,
		Justification: rj.Justification,
	}
	return nil
}

// DecodeDetail unmarshals the detail of a record of the given kind.
func DecodeDetail(kind Kind, data json.RawMessage) (Detail, error) {
	var (
		detail Detail
		err    error
	)
	if len(data) == 0 {
		data = []byte("{}")
	}
	switch kind {
	case KindAbsence:
		var d Absence
		err = json.Unmarshal(data, &d)
		detail = d
	case KindLateness:
		var d Lateness
		err = json.Unmarshal(data, &d)
		detail = d
	case KindConsigne:
		var d Consigne
		err = json.Unmarshal(data, &d)
		detail = d
	case KindChatter:
		var d Chatter
		err = json.Unmarshal(data, &d)
		detail = d
	case KindExclusion:
		var d Exclusion
		err = json.Unmarshal(data, &d)
		detail = d
	default:
		return nil, errors.Errorf("unknown attendance kind %q", kind)
	}
	return detail, err
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// CanTransitionTo reports whether a justification in status s may move to next.
// Only pending justifications can be reviewed, and a review is final.
func (s Status) CanTransitionTo(next Status) bool {
	return s == StatusPending && (next == StatusApproved || next == StatusRejected)
}

type Justification struct {
	ID          string     `json:"id"`
	RecordID    string     `json:"record_id"`
	Status      Status     `json:"status"`
	Reason      string     `json:"reason"`
	Comment     string     `json:"comment"`
	Attachments []string   `json:"attachments"`
	CreatedBy   string     `json:"created_by"`
	ReviewedBy  string     `json:"reviewed_by,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
}

// NewRecord contains information needed to log a new Record.
// Only the fields of the chosen Type are used.
type NewRecord struct {
	StudentID string     `json:"student_id" validate:"required"`
	TermID    string     `json:"term_id" validate:"required"`
	Type      Kind       `json:"type" validate:"required,attendance_kind"`
	Date      time.Time  `json:"date" validate:"required"`
	CreatedBy string     `json:"created_by" validate:"required,notblank"`
	Hours     int        `json:"hours" validate:"gte=0,lte=200"`
	Minutes   int        `json:"minutes" validate:"gte=0,lte=600"`
	Count     int        `json:"count" validate:"gte=0,lte=100"`
	Task      string     `json:"task" validate:"max=500"`
	Reason    string     `json:"reason" validate:"max=500"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.CreatedBy = core.CleanString(nr.CreatedBy)
	nr.Task = core.CleanString(nr.Task)
	nr.Reason = core.CleanString(nr.Reason)
	nr.Type = Kind(core.CleanString(string(nr.Type), true /* lower */))
	return validate.Struct(nr)
}

// Detail builds the detail of the record; nr must be valid.
func (nr NewRecord) Detail() Detail {
	switch nr.Type {
	case KindAbsence:
		return Absence{Hours: nr.Hours}
	case KindLateness:
		return Lateness{Minutes: nr.Minutes}
	case KindConsigne:
		return Consigne{Hours: nr.Hours, Task: nr.Task}
	case KindChatter:
		return Chatter{Count: nr.Count}
	case KindExclusion:
		ex := Exclusion{Reason: nr.Reason}
		if nr.StartDate != nil {
			ex.StartDate = nr.StartDate.UTC()
		}
		if nr.EndDate != nil {
			ex.EndDate = nr.EndDate.UTC()
		}
		return ex
	}
	return nil
}

type NewJustification struct {
	Reason      string   `json:"reason" validate:"required,notblank,max=1000"`
	Comment     string   `json:"comment" validate:"max=1000"`
	Attachments []string `json:"attachments" validate:"max=10,dive,required,max=500"`
	CreatedBy   string   `json:"created_by" validate:"required,notblank"`
}

func (nj *NewJustification) Validate(validate *validator.Validate) error {
	nj.Reason = core.CleanString(nj.Reason)
	nj.Comment = core.CleanString(nj.Comment)
	nj.CreatedBy = core.CleanString(nj.CreatedBy)
	return validate.Struct(nj)
}

// StatusUpdate is the review of a justification.
type StatusUpdate struct {
	Status     Status `json:"status" validate:"required,oneof=approved rejected"`
	ReviewedBy string `json:"reviewed_by" validate:"required,notblank"`
	Comment    string `json:"comment" validate:"max=1000"`
}

func (su *StatusUpdate) Validate(validate *validator.Validate) error {
	su.Status = Status(core.CleanString(string(su.Status), true /* lower */))
	su.ReviewedBy = core.CleanString(su.ReviewedBy)
	su.Comment = core.CleanString(su.Comment)
	return validate.Struct(su)
}

// RecordFilter applies AND operation on its non-zero fields.
type RecordFilter struct {
	ClassroomID string
	StudentID   string
	TermIDs     []string
	Kind        Kind
}

type Repository interface {
	CreateRecord(ctx context.Context, record Record) error
	// GetRecord loads the record with its justification, if any.
	GetRecord(ctx context.Context, id string) (Record, error)
	// QueryRecords returns records with their justifications, ordered by date.
	QueryRecords(ctx context.Context, filter RecordFilter) ([]Record, error)
	DeleteRecord(ctx context.Context, id string) error
	// CreateJustification fails with ErrAlreadyJustified if the record already has one.
	CreateJustification(ctx context.Context, j Justification) error
	GetJustification(ctx context.Context, id string) (Justification, error)
	// UpdateJustification stores the review of a pending justification.
	// It fails with ErrInvalidTransition when the stored one was already reviewed.
	UpdateJustification(ctx context.Context, j Justification) error
}
