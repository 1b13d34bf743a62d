package inmemdb

import (
	"context"
	"sort"

	"github.com/jpainam/discolaire-sub011/core/attendance"
)

type attendanceRepository struct {
	db     *attendanceTables
	school *schoolTables
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db.attendance, school: db.school}
}

// withJustification must be called with the read lock held.
func (repo *attendanceRepository) withJustification(rec attendance.Record) attendance.Record {
	for _, j := range repo.db.justifications {
		if j.RecordID == rec.ID {
			j := j
			j.Attachments = append([]string{}, j.Attachments...)
			rec.Justification = &j
			break
		}
	}
	return rec
}

func (repo *attendanceRepository) CreateRecord(_ context.Context, rec attendance.Record) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	rec.Justification = nil
	repo.db.records[rec.ID] = rec
	return nil
}

func (repo *attendanceRepository) GetRecord(_ context.Context, id string) (attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.records[id]; ok {
		return repo.withJustification(rec), nil
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, filter attendance.RecordFilter) ([]attendance.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var inClassroom map[string]bool
	if filter.ClassroomID != "" {
		repo.school.RLock()
		inClassroom = make(map[string]bool)
		for _, s := range repo.school.students {
			if s.ClassroomID == filter.ClassroomID {
				inClassroom[s.ID] = true
			}
		}
		repo.school.RUnlock()
	}

	records := make([]attendance.Record, 0)
	for _, rec := range repo.db.records {
		if inClassroom != nil && !inClassroom[rec.StudentID] {
			continue
		}
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if len(filter.TermIDs) > 0 && !contains(filter.TermIDs, rec.TermID) {
			continue
		}
		if filter.Kind != "" && rec.Kind() != filter.Kind {
			continue
		}
		records = append(records, repo.withJustification(rec))
	}
	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records, nil
}

func (repo *attendanceRepository) DeleteRecord(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.records[id]; !ok {
		return attendance.ErrRecordNotFound
	}
	delete(repo.db.records, id)
	for jid, j := range repo.db.justifications {
		if j.RecordID == id {
			delete(repo.db.justifications, jid)
		}
	}
	return nil
}

func (repo *attendanceRepository) CreateJustification(_ context.Context, j attendance.Justification) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.records[j.RecordID]; !ok {
		return attendance.ErrRecordNotFound
	}
	for _, existing := range repo.db.justifications {
		if existing.RecordID == j.RecordID {
			return attendance.ErrAlreadyJustified
		}
	}
	repo.db.justifications[j.ID] = j
	return nil
}

func (repo *attendanceRepository) GetJustification(_ context.Context, id string) (attendance.Justification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if j, ok := repo.db.justifications[id]; ok {
		return j, nil
	}
	return attendance.Justification{}, attendance.ErrJustificationNotFound
}

func (repo *attendanceRepository) UpdateJustification(_ context.Context, j attendance.Justification) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.justifications[j.ID]
	if !ok {
		return attendance.ErrJustificationNotFound
	}
	if !stored.Status.CanTransitionTo(j.Status) {
		return attendance.ErrInvalidTransition
	}
	repo.db.justifications[j.ID] = j
	return nil
}
