package inmemdb

import (
	"sort"
	"sync"

	"github.com/jpainam/discolaire-sub011/core/attendance"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/core/school"
)

// DB keeps every table in memory; it backs the tests and DEV runs without postgres.
// Locks are always taken in the order attendance, grading, school.
type DB struct {
	school     *schoolTables
	grading    *gradingTables
	attendance *attendanceTables
}

type (
	schoolTables struct {
		sync.RWMutex
		classrooms map[string]school.Classroom
		students   map[string]school.Student
		subjects   map[string]school.Subject
		terms      map[string]school.Term
	}

	gradingTables struct {
		sync.RWMutex
		sheets      map[string]grading.GradeSheet
		sheetOrder  []string // insertion order
		grades      map[string]grading.GradeEntry
		corrections map[string]grading.Correction
	}

	attendanceTables struct {
		sync.RWMutex
		records        map[string]attendance.Record // without justification
		justifications map[string]attendance.Justification
	}
)

func Open() *DB {
	return &DB{
		school: &schoolTables{
			classrooms: make(map[string]school.Classroom),
			students:   make(map[string]school.Student),
			subjects:   make(map[string]school.Subject),
			terms:      make(map[string]school.Term),
		},
		grading: &gradingTables{
			sheets:      make(map[string]grading.GradeSheet),
			grades:      make(map[string]grading.GradeEntry),
			corrections: make(map[string]grading.Correction),
		},
		attendance: &attendanceTables{
			records:        make(map[string]attendance.Record),
			justifications: make(map[string]attendance.Justification),
		},
	}
}

// school reference data is managed outside of this service; these seed it.

func (db *DB) AddClassroom(c school.Classroom) {
	db.school.Lock()
	defer db.school.Unlock()
	db.school.classrooms[c.ID] = c
}

func (db *DB) AddStudent(s school.Student) {
	db.school.Lock()
	defer db.school.Unlock()
	db.school.students[s.ID] = s
}

func (db *DB) AddSubject(s school.Subject) {
	db.school.Lock()
	defer db.school.Unlock()
	db.school.subjects[s.ID] = s
}

func (db *DB) AddTerm(t school.Term) {
	db.school.Lock()
	defer db.school.Unlock()
	db.school.terms[t.ID] = t
}

// Corrections returns the corrections recorded for a grade, oldest first.
func (db *DB) Corrections(gradeID string) []grading.Correction {
	db.grading.RLock()
	defer db.grading.RUnlock()

	var corrections []grading.Correction
	for _, c := range db.grading.corrections {
		if c.GradeID == gradeID {
			corrections = append(corrections, c)
		}
	}
	sort.Slice(corrections, func(i, j int) bool { return corrections[i].CreatedAt.Before(corrections[j].CreatedAt) })
	return corrections
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
