package inmemdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core/grading"
)

type gradingRepository struct {
	db *gradingTables
}

var _ grading.Repository = (*gradingRepository)(nil)

func NewGradingRepository(db *DB) *gradingRepository {
	return &gradingRepository{db: db.grading}
}

func (repo *gradingRepository) CreateSheet(_ context.Context, sheet grading.GradeSheet, entries []grading.GradeEntry) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sheets[sheet.ID]; ok {
		return errors.Errorf("grade sheet %s already exists", sheet.ID)
	}
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if seen[e.StudentID] {
			return errors.Errorf("duplicate grade of student %s", e.StudentID)
		}
		seen[e.StudentID] = true
	}

	repo.db.sheets[sheet.ID] = sheet
	repo.db.sheetOrder = append(repo.db.sheetOrder, sheet.ID)
	for _, e := range entries {
		repo.db.grades[e.ID] = e
	}
	return nil
}

func (repo *gradingRepository) GetSheet(_ context.Context, id string) (grading.GradeSheet, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.sheets[id]; ok {
		return s, nil
	}
	return grading.GradeSheet{}, grading.ErrSheetNotFound
}

func (repo *gradingRepository) QuerySheets(_ context.Context, filter grading.SheetFilter) ([]grading.GradeSheet, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sheets := make([]grading.GradeSheet, 0)
	for _, id := range repo.db.sheetOrder {
		s, ok := repo.db.sheets[id]
		if !ok {
			continue
		}
		if filter.ClassroomID != "" && s.ClassroomID != filter.ClassroomID {
			continue
		}
		if filter.SubjectID != "" && s.SubjectID != filter.SubjectID {
			continue
		}
		if len(filter.TermIDs) > 0 && !contains(filter.TermIDs, s.TermID) {
			continue
		}
		sheets = append(sheets, s)
	}
	return sheets, nil
}

func (repo *gradingRepository) QueryGrades(_ context.Context, filter grading.GradeFilter) ([]grading.GradeEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	order := make(map[string]int, len(repo.db.sheetOrder))
	for i, id := range repo.db.sheetOrder {
		order[id] = i
	}

	entries := make([]grading.GradeEntry, 0)
	for _, e := range repo.db.grades {
		if filter.SheetIDs != nil && !contains(filter.SheetIDs, e.GradeSheetID) {
			continue
		}
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if oi, oj := order[entries[i].GradeSheetID], order[entries[j].GradeSheetID]; oi != oj {
			return oi < oj
		}
		return entries[i].StudentID < entries[j].StudentID
	})
	return entries, nil
}

func (repo *gradingRepository) GetGrade(_ context.Context, sheetID, studentID string) (grading.GradeEntry, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, e := range repo.db.grades {
		if e.GradeSheetID == sheetID && e.StudentID == studentID {
			return e, nil
		}
	}
	return grading.GradeEntry{}, grading.ErrGradeNotFound
}

func (repo *gradingRepository) CorrectGrade(_ context.Context, entry grading.GradeEntry, c grading.Correction) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.grades[entry.ID]; !ok {
		return grading.ErrGradeNotFound
	}
	repo.db.grades[entry.ID] = entry
	repo.db.corrections[c.ID] = c
	return nil
}

func (repo *gradingRepository) DeleteSheet(_ context.Context, id string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.sheets[id]; !ok {
		return grading.ErrSheetNotFound
	}
	delete(repo.db.sheets, id)
	for i, sid := range repo.db.sheetOrder {
		if sid == id {
			repo.db.sheetOrder = append(repo.db.sheetOrder[:i], repo.db.sheetOrder[i+1:]...)
			break
		}
	}
	for gid, e := range repo.db.grades {
		if e.GradeSheetID != id {
			continue
		}
		delete(repo.db.grades, gid)
		for cid, c := range repo.db.corrections {
			if c.GradeID == gid {
				delete(repo.db.corrections, cid)
			}
		}
	}
	return nil
}
