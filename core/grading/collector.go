package grading

// Collection holds the non-absent grades of an aggregation window,
// indexed by student and by subject.
type Collection struct {
	byStudent map[string]map[string][]float64 // {studentID: {subjectID: grades}}
	bySubject map[string][]float64            // {subjectID: grades of the whole classroom}
}

// Collect gathers the grades of entries that belong to one of sheets.
// Absent entries and entries of other sheets are dropped.
func Collect(sheets []GradeSheet, entries []GradeEntry) *Collection {
	inWindow := make(map[string]string, len(sheets)) // {sheetID: subjectID}
	for _, s := range sheets {
		inWindow[s.ID] = s.SubjectID
	}

	c := &Collection{
		byStudent: make(map[string]map[string][]float64),
		bySubject: make(map[string][]float64),
	}
	for _, e := range entries {
		subjectID, ok := inWindow[e.GradeSheetID]
		if !ok || e.IsAbsent {
			continue
		}
		subjects, ok := c.byStudent[e.StudentID]
		if !ok {
			subjects = make(map[string][]float64)
			c.byStudent[e.StudentID] = subjects
		}
		subjects[subjectID] = append(subjects[subjectID], e.Grade)
		c.bySubject[subjectID] = append(c.bySubject[subjectID], e.Grade)
	}
	return c
}

// Grades returns the grades of a student in a subject.
func (c *Collection) Grades(studentID, subjectID string) []float64 {
	return c.byStudent[studentID][subjectID]
}

// SubjectGrades returns every grade given in a subject.
func (c *Collection) SubjectGrades(subjectID string) []float64 {
	return c.bySubject[subjectID]
}

// HasGrades reports whether the student has at least one grade in the window.
func (c *Collection) HasGrades(studentID string) bool {
	return len(c.byStudent[studentID]) > 0
}

// StudentSubjectAverage summarizes the grades of a student in a subject.
func (c *Collection) StudentSubjectAverage(studentID, subjectID string) (Summary, bool) {
	return Summarize(c.Grades(studentID, subjectID))
}

// SubjectAverages returns the average in the subject of the given students, in the same order.
// Students without grades in the subject are skipped.
func (c *Collection) SubjectAverages(subjectID string, studentIDs []string) []StudentAverage {
	var averages []StudentAverage
	for _, studentID := range studentIDs {
		if s, ok := c.StudentSubjectAverage(studentID, subjectID); ok {
			averages = append(averages, StudentAverage{StudentID: studentID, Average: s.Average})
		}
	}
	return averages
}
