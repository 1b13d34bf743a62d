package report

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpainam/discolaire-sub011/core/attendance"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/core/school"
)

var (
	sciences = school.SubjectGroup{ID: "sciences", Name: "Sciences", Order: 1}
	letters  = school.SubjectGroup{ID: "letters", Name: "Letters", Order: 2}

	math    = school.Subject{ID: "math", CourseName: "Mathematics", Coefficient: 4, Group: &sciences}
	french  = school.Subject{ID: "french", CourseName: "French", Coefficient: 3, Group: &letters}
	sport   = school.Subject{ID: "sport", CourseName: "Sport", Coefficient: 1}
	physics = school.Subject{ID: "physics", CourseName: "Physics", Coefficient: 2, Group: &sciences}
)

func entry(sheetID, studentID string, grade float64) grading.GradeEntry {
	return grading.GradeEntry{GradeSheetID: sheetID, StudentID: studentID, Grade: grade}
}

func absent(sheetID, studentID string) grading.GradeEntry {
	return grading.GradeEntry{GradeSheetID: sheetID, StudentID: studentID, IsAbsent: true}
}

// input grades a classroom of 4:
// a (16, 14) = 15.14, b (12, 12, 20) = 13, c (8, 10) = 8.86, d has no grade.
func input() Input {
	sheets := []grading.GradeSheet{
		{ID: "s-math", SubjectID: math.ID},
		{ID: "s-french", SubjectID: french.ID},
		{ID: "s-sport", SubjectID: sport.ID},
	}
	entries := []grading.GradeEntry{
		entry("s-math", "a", 16), entry("s-math", "b", 12), entry("s-math", "c", 8), absent("s-math", "d"),
		entry("s-french", "a", 14), entry("s-french", "b", 12), entry("s-french", "c", 10),
		entry("s-sport", "b", 20), absent("s-sport", "c"),
	}
	return Input{
		Classroom: school.Classroom{ID: "6eA", Name: "6e A"},
		Term:      school.Term{ID: "q1", Name: "Quarter 1", Type: school.TermQuarter},
		Students: []school.Student{
			{ID: "a", LastName: "A"}, {ID: "b", LastName: "B"}, {ID: "c", LastName: "C"}, {ID: "d", LastName: "D"},
		},
		Subjects: []school.Subject{sport, french, math, physics},
		Grades:   grading.Collect(sheets, entries),
		Discipline: map[string]attendance.DisciplineSummary{
			"a": {Chatters: 2},
		},
	}
}

func TestAssembler_Classroom(t *testing.T) {
	cr := NewAssembler(nil).Classroom(input())

	ranked := make([]string, len(cr.Ranks))
	for i, r := range cr.Ranks {
		ranked[i] = r.StudentID
		assert.Equal(t, i+1, r.Rank)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ranked)

	t.Run("stats", func(t *testing.T) {
		st := cr.Stats
		assert.Equal(t, 4, st.ClassSize)
		assert.Equal(t, 3, st.Ranked)
		assert.Equal(t, 2, st.AboveAverage)
		assert.Equal(t, "66.67", st.SuccessRate.String())
		require.NotNil(t, st.Average)
		assert.InDelta(t, 37.0/3, *st.Average, 1e-9)
		assert.InDelta(t, 62.0/7, *st.Min, 1e-9)
		assert.InDelta(t, 106.0/7, *st.Max, 1e-9)
	})

	t.Run("card", func(t *testing.T) {
		card, ok := cr.Card("a")
		require.True(t, ok)
		assert.Equal(t, "6e A", card.Classroom.Name)
		assert.Equal(t, 4, card.ClassSize)
		assert.Equal(t, "1", card.RankLabel())
		assert.Equal(t, "Good", card.Appreciation)
		assert.Equal(t, 2, card.Discipline.Chatters)
		assert.Equal(t, 7.0, card.Coefficients)
		assert.Equal(t, 106.0, card.Points)
		assert.Equal(t, 140.0, card.MaxPoints)

		var groups []string
		for _, g := range card.Groups {
			groups = append(groups, g.Group.Name)
		}
		assert.Equal(t, []string{"Sciences", "Letters", "Others"}, groups)

		sci := card.Groups[0]
		require.Len(t, sci.Lines, 2)
		assert.Equal(t, "math", sci.Lines[0].SubjectID)
		assert.Equal(t, 4.0, sci.Coefficients)
		assert.Equal(t, 64.0, sci.Points)
		assert.Equal(t, 80.0, sci.MaxPoints)
		assert.InDelta(t, 16, *sci.Average, 1e-9)

		mathLine := sci.Lines[0]
		assert.InDelta(t, 12, *mathLine.ClassAverage, 1e-9)
		assert.Equal(t, 8.0, *mathLine.ClassMin)
		assert.Equal(t, 16.0, *mathLine.ClassMax)
		assert.Equal(t, 1, mathLine.Rank.Rank)
		assert.Equal(t, "Very good", mathLine.Appreciation)

		phys := sci.Lines[1]
		assert.Nil(t, phys.Average)
		assert.Nil(t, phys.ClassAverage)
		assert.Nil(t, phys.Rank)
		assert.Equal(t, "", phys.Appreciation)

		others := card.Groups[2]
		assert.Nil(t, others.Average)
		assert.Zero(t, others.Coefficients)
	})

	t.Run("subject lines", func(t *testing.T) {
		card, _ := cr.Card("b")
		sportLine := card.Groups[2].Lines[0]
		assert.Equal(t, 20.0, *sportLine.Points)
		assert.Equal(t, 20.0, *sportLine.MaxPoints)
		assert.Equal(t, "Excellent", sportLine.Appreciation)
		assert.Equal(t, "Fairly good", card.Appreciation)

		card, _ = cr.Card("c")
		assert.Equal(t, "Weak", card.Appreciation)
		assert.Nil(t, card.Groups[2].Lines[0].Average, "absent entries are not grades")
	})

	t.Run("unranked", func(t *testing.T) {
		card, ok := cr.Card("d")
		require.True(t, ok)
		assert.Nil(t, card.Rank)
		assert.Nil(t, card.Average)
		assert.Equal(t, "-", card.RankLabel())
		assert.Equal(t, "", card.Appreciation)
		assert.Equal(t, attendance.DisciplineSummary{}, card.Discipline)
	})
}

func TestAssembler_Classroom_noGrades(t *testing.T) {
	in := input()
	in.Grades = nil
	in.Discipline = nil

	cr := NewAssembler(nil).Classroom(in)
	assert.Empty(t, cr.Ranks)
	assert.Len(t, cr.Cards, 4)
	assert.Equal(t, 0, cr.Stats.Ranked)
	assert.Nil(t, cr.Stats.Average)
	assert.Equal(t, "N/A", cr.Stats.SuccessRate.String())
}

func TestAssembler_RollOfHonor(t *testing.T) {
	a := NewAssembler(nil)

	roll := a.RollOfHonor(a.Classroom(input()))
	require.Len(t, roll.Entries, 2)
	assert.Equal(t, "a", roll.Entries[0].Student.ID)
	assert.Equal(t, "Good", roll.Entries[0].Appreciation)
	assert.Equal(t, "b", roll.Entries[1].Student.ID)
	assert.Equal(t, 2, roll.Entries[1].Rank.Rank)

	cr := ClassroomReport{
		Cards: []ReportCard{{Student: school.Student{ID: "x"}}, {Student: school.Student{ID: "y"}}},
		Ranks: []grading.ClassroomRank{
			{StudentID: "x", Average: 11.996, Rank: 1},
			{StudentID: "x", Average: 11.996, Rank: 1},
			{StudentID: "y", Average: 11.994, Rank: 3},
		},
	}
	roll = a.RollOfHonor(cr)
	require.Len(t, roll.Entries, 1, "rounded averages decide, duplicates are dropped")
	assert.Equal(t, "x", roll.Entries[0].Student.ID)

	roll = a.RollOfHonor(ClassroomReport{})
	assert.NotNil(t, roll.Entries)
	assert.Empty(t, roll.Entries)
}

func TestAssembler_RollOfHonor_roundedAverage(t *testing.T) {
	a := NewAssembler(nil)
	tests := []struct {
		average float64
		want    bool
	}{
		{average: 11.99, want: false},
		{average: 11.994, want: false},
		{average: 11.996, want: true}, // shown as 12.00
		{average: 12, want: true},
		{average: 12.004, want: true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.average), func(t *testing.T) {
			roll := a.RollOfHonor(ClassroomReport{
				Cards: []ReportCard{{Student: school.Student{ID: "x"}}},
				Ranks: []grading.ClassroomRank{{StudentID: "x", Average: tt.average, Rank: 1}},
			})
			assert.Equal(t, tt.want, len(roll.Entries) == 1)
		})
	}
}

func Test_groupSubjects(t *testing.T) {
	alpha := school.SubjectGroup{ID: "alpha", Name: "Alpha", Order: 1}
	groups := groupSubjects([]school.Subject{
		sport,
		{ID: "bio", Group: &sciences},
		math,
		{ID: "art", Group: &alpha},
		french,
	})

	var got [][]string
	for _, g := range groups {
		ids := []string{g.group.ID}
		for _, s := range g.subjects {
			ids = append(ids, s.ID)
		}
		got = append(got, ids)
	}
	assert.Equal(t, [][]string{
		{"alpha", "art"},
		{"sciences", "bio", "math"},
		{"letters", "french"},
		{"", "sport"},
	}, got)
}
