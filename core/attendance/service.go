package attendance

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/school"
)

type Service struct {
	repo     Repository
	school   school.Repository
	validate *validator.Validate
	log      core.Logger
}

func NewService(repo Repository, schoolRepo school.Repository, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		school:   schoolRepo,
		validate: validate,
		log:      logger,
	}
}

func (svc *Service) Create(ctx context.Context, nr NewRecord) (Record, error) {
	if err := nr.Validate(svc.validate); err != nil {
		return Record{}, err
	}
	if _, err := svc.school.GetStudent(ctx, nr.StudentID); err != nil {
		return Record{}, err
	}
	if _, err := svc.school.GetTerm(ctx, nr.TermID); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:        uuid.New().String(),
		StudentID: nr.StudentID,
		TermID:    nr.TermID,
		Date:      nr.Date.UTC(),
		CreatedBy: nr.CreatedBy,
		CreatedAt: time.Now().UTC(),
		Detail:    nr.Detail(),
	}
	if err := svc.repo.CreateRecord(ctx, rec); err != nil {
		return Record{}, errors.Wrap(err, "creating attendance record")
	}
	return rec, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Record, error) {
	return svc.repo.GetRecord(ctx, id)
}

// QueryByClassroom returns the records of the classroom's students over termIDs.
// An empty kind matches every kind.
func (svc *Service) QueryByClassroom(ctx context.Context, classroomID string, termIDs []string, kind Kind) ([]Record, error) {
	if kind != "" && !kind.Valid() {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "kind", Error: kindText})
	}
	if _, err := svc.school.GetClassroom(ctx, classroomID); err != nil {
		return nil, err
	}
	return svc.repo.QueryRecords(ctx, RecordFilter{ClassroomID: classroomID, TermIDs: termIDs, Kind: kind})
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	if _, err := svc.repo.GetRecord(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteRecord(ctx, id)
}

// Justify attaches a pending justification to a record.
func (svc *Service) Justify(ctx context.Context, recordID string, nj NewJustification) (Justification, error) {
	if err := nj.Validate(svc.validate); err != nil {
		return Justification{}, err
	}

	rec, err := svc.repo.GetRecord(ctx, recordID)
	if err != nil {
		return Justification{}, err
	}
	if !rec.Kind().Justifiable() {
		return Justification{}, ErrNotJustifiable
	}
	if rec.Justification != nil {
		return Justification{}, ErrAlreadyJustified
	}

	attachments := nj.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	j := Justification{
		ID:          uuid.New().String(),
		RecordID:    rec.ID,
		Status:      StatusPending,
		Reason:      nj.Reason,
		Comment:     nj.Comment,
		Attachments: attachments,
		CreatedBy:   nj.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err = svc.repo.CreateJustification(ctx, j); err != nil {
		if errors.Cause(err) == ErrAlreadyJustified {
			return Justification{}, ErrAlreadyJustified
		}
		return Justification{}, errors.Wrap(err, "creating justification")
	}
	return j, nil
}

// UpdateStatus reviews a pending justification.
func (svc *Service) UpdateStatus(ctx context.Context, id string, su StatusUpdate) (Justification, error) {
	if err := su.Validate(svc.validate); err != nil {
		return Justification{}, err
	}

	j, err := svc.repo.GetJustification(ctx, id)
	if err != nil {
		return Justification{}, err
	}
	if !j.Status.CanTransitionTo(su.Status) {
		return Justification{}, ErrInvalidTransition
	}

	now := time.Now().UTC()
	j.Status = su.Status
	j.ReviewedBy = su.ReviewedBy
	j.ReviewedAt = &now
	if su.Comment != "" {
		j.Comment = su.Comment
	}
	if err = svc.repo.UpdateJustification(ctx, j); err != nil {
		if errors.Cause(err) == ErrInvalidTransition { // reviewed concurrently
			return Justification{}, ErrInvalidTransition
		}
		return Justification{}, errors.Wrap(err, "updating justification")
	}
	return j, nil
}

// Summaries returns the discipline summary of every student of the classroom who has records over termIDs.
func (svc *Service) Summaries(ctx context.Context, classroomID string, termIDs []string) (map[string]DisciplineSummary, error) {
	records, err := svc.QueryByClassroom(ctx, classroomID, termIDs, "")
	if err != nil {
		return nil, err
	}
	return Summarize(records), nil
}
