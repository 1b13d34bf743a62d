package inmemdb

import (
	"context"
	"sort"

	"github.com/jpainam/discolaire-sub011/core/school"
)

type schoolRepository struct {
	db *schoolTables
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db.school}
}

func (repo *schoolRepository) GetClassroom(_ context.Context, id string) (school.Classroom, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.classrooms[id]; ok {
		return c, nil
	}
	return school.Classroom{}, school.ErrClassroomNotFound
}

func (repo *schoolRepository) GetStudent(_ context.Context, id string) (school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return s, nil
	}
	return school.Student{}, school.ErrStudentNotFound
}

func (repo *schoolRepository) GetSubject(_ context.Context, id string) (school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return s, nil
	}
	return school.Subject{}, school.ErrSubjectNotFound
}

func (repo *schoolRepository) GetTerm(_ context.Context, id string) (school.Term, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if t, ok := repo.db.terms[id]; ok {
		return t, nil
	}
	return school.Term{}, school.ErrTermNotFound
}

func (repo *schoolRepository) ClassroomStudents(_ context.Context, classroomID string) ([]school.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]school.Student, 0)
	for _, s := range repo.db.students {
		if s.ClassroomID == classroomID {
			students = append(students, s)
		}
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		if students[i].FirstName != students[j].FirstName {
			return students[i].FirstName < students[j].FirstName
		}
		return students[i].ID < students[j].ID
	})
	return students, nil
}

func (repo *schoolRepository) ClassroomSubjects(_ context.Context, classroomID string) ([]school.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]school.Subject, 0)
	for _, s := range repo.db.subjects {
		if s.ClassroomID == classroomID {
			subjects = append(subjects, s)
		}
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].CourseName != subjects[j].CourseName {
			return subjects[i].CourseName < subjects[j].CourseName
		}
		return subjects[i].ID < subjects[j].ID
	})
	return subjects, nil
}

func (repo *schoolRepository) ChildTerms(_ context.Context, parentID string) ([]school.Term, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	terms := make([]school.Term, 0)
	for _, t := range repo.db.terms {
		if t.ParentID == parentID && parentID != "" {
			terms = append(terms, t)
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Name < terms[j].Name })
	return terms, nil
}
