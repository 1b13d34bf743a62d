package grading

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/school"
)

func TestSummarizeEntries(t *testing.T) {
	entries := []GradeEntry{
		{StudentID: "a", Grade: 12},
		{StudentID: "b", Grade: 15},
		{StudentID: "c", Grade: 9, IsAbsent: true},
		{StudentID: "d", Grade: 18},
	}
	s, ok := SummarizeEntries(entries)
	assert.True(t, ok)
	assert.Equal(t, Summary{Count: 3, Average: 15, Min: 12, Max: 18}, s)

	_, ok = SummarizeEntries([]GradeEntry{{StudentID: "a", IsAbsent: true}})
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   Summary
		wantOk bool
	}{
		{name: "empty"},
		{name: "single", values: []float64{7.25}, want: Summary{Count: 1, Average: 7.25, Min: 7.25, Max: 7.25}, wantOk: true},
		{name: "equal values", values: []float64{0.1, 0.1, 0.1}, want: Summary{Count: 3, Average: 0.1, Min: 0.1, Max: 0.1}, wantOk: true},
		{name: "spread", values: []float64{0, 20, 10}, want: Summary{Count: 3, Average: 10, Min: 0, Max: 20}, wantOk: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Summarize(tt.values)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
			if ok {
				assert.True(t, got.Min <= got.Average && got.Average <= got.Max)
			}
		})
	}
}

func TestWeigh(t *testing.T) {
	scores := []SubjectScore{
		{SubjectID: "math", Average: 15, Coefficient: 4},
		{SubjectID: "french", Average: 14, Coefficient: 3},
		{SubjectID: "sport", Average: 17.5, Coefficient: 0}, // ignored
	}
	w, ok := Weigh(scores)
	assert.True(t, ok)
	assert.Equal(t, 7.0, w.Coefficients)
	assert.Equal(t, 102.0, w.Points)
	assert.Equal(t, 140.0, w.MaxPoints)
	assert.InDelta(t, w.Points/w.Coefficients, w.Average, 1e-9)
	assert.InDelta(t, 102.0/7, w.Average, 1e-9)

	_, ok = Weigh(nil)
	assert.False(t, ok)
	_, ok = Weigh([]SubjectScore{{SubjectID: "sport", Average: 12}})
	assert.False(t, ok)
}

func TestRank(t *testing.T) {
	tests := []struct {
		name     string
		averages []StudentAverage
		want     []ClassroomRank
	}{
		{name: "empty", want: []ClassroomRank{}},
		{
			name:     "tie",
			averages: []StudentAverage{{"a", 14.00}, {"b", 14.00}},
			want:     []ClassroomRank{{"a", 14, 1, false}, {"b", 14, 1, true}},
		},
		{
			name:     "tie on two decimals",
			averages: []StudentAverage{{"a", 11}, {"b", 13.334}, {"c", 13.3351}, {"d", 13.331}, {"e", 16}},
			want: []ClassroomRank{
				{"e", 16, 1, false},
				{"c", 13.3351, 2, false},
				{"b", 13.334, 3, false},
				{"d", 13.331, 3, true},
				{"a", 11, 5, false},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rank(tt.averages))
		})
	}
}

func TestRankMonotonic(t *testing.T) {
	averages := []StudentAverage{{"a", 9.5}, {"b", 17}, {"c", 12.25}, {"d", 12.25}, {"e", 3}, {"f", 17.001}}
	ranks := Rank(averages)
	for i := 1; i < len(ranks); i++ {
		assert.GreaterOrEqual(t, core.Round2(ranks[i-1].Average), core.Round2(ranks[i].Average))
		assert.LessOrEqual(t, ranks[i-1].Rank, ranks[i].Rank)
	}
	labels := make([]string, len(ranks))
	for i, r := range ranks {
		labels[i] = r.Label()
	}
	assert.Equal(t, []string{"1", "1 ex", "3", "3 ex", "5", "6"}, labels)
}

func TestComputeSuccessRate(t *testing.T) {
	genders := map[string]school.Gender{
		"a": school.GenderFemale, "b": school.GenderMale, "c": school.GenderMale, "d": school.GenderFemale,
	}
	sr := ComputeSuccessRate([]GradeEntry{
		{StudentID: "a", Grade: 10},
		{StudentID: "b", Grade: 9.99},
		{StudentID: "c", Grade: 16},
		{StudentID: "d", IsAbsent: true},
		{StudentID: "x", Grade: 4}, // unknown gender
	}, genders)

	assert.Equal(t, SuccessRate{
		NumberOfGrade:     4,
		NumberOfAvg:       2,
		NumberOfAvgMale:   1,
		NumberOfAvgFemale: 1,
		NumberOfMale:      2,
		NumberOfFemale:    1,
		NumberOfAbsent:    1,
	}, sr)
	assert.Equal(t, "50.00", sr.Rate().String())

	ct := sr.CrossTab()
	assert.Equal(t, "100.00", ct.Female.PassedPercent.String())
	assert.Equal(t, "0.00", ct.Female.FailedPercent.String())
	assert.Equal(t, 1, ct.Male.Failed)
	assert.Equal(t, 4, ct.Total.Total)
}

func TestPercentage(t *testing.T) {
	empty := ComputeSuccessRate(nil, nil)
	assert.Equal(t, "N/A", empty.Rate().String())
	assert.Equal(t, "N/A", empty.CrossTab().Male.PassedPercent.String())

	data, err := empty.Rate().MarshalJSON()
	assert.NoError(t, err)
	assert.Equal(t, `"N/A"`, string(data))

	p := Percent(2, 3)
	v, ok := p.Value()
	assert.True(t, ok)
	assert.True(t, math.Abs(v-66.6666) < 1e-3)
	assert.Equal(t, "66.67", p.String())
}

func TestScale_Appreciate(t *testing.T) {
	tests := []struct {
		average float64
		want    string
	}{
		{20, "Excellent"},
		{18, "Excellent"},
		{17.999, "Excellent"}, // rounds to 18.00
		{17.99, "Very good"},
		{14.57, "Good"},
		{12, "Fairly good"},
		{10, "Average"},
		{9.994, "Weak"},
		{0, "Poor"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultScale.Appreciate(tt.average), "Appreciate(%v)", tt.average)
	}

	custom := NewScale(Appreciation{Minimum: 0, Label: "Fail"}, Appreciation{Minimum: 10, Label: "Pass"})
	assert.Equal(t, "Pass", custom.Appreciate(10))
	assert.Equal(t, "Fail", custom.Appreciate(9))
	assert.Equal(t, "", NewScale(Appreciation{Minimum: 5, Label: "Ok"}).Appreciate(2))
}

func TestCollect(t *testing.T) {
	sheets := []GradeSheet{
		{ID: "s1", SubjectID: "math"},
		{ID: "s2", SubjectID: "math"},
		{ID: "s3", SubjectID: "french"},
	}
	entries := []GradeEntry{
		{GradeSheetID: "s1", StudentID: "a", Grade: 10},
		{GradeSheetID: "s2", StudentID: "a", Grade: 16},
		{GradeSheetID: "s1", StudentID: "b", Grade: 8},
		{GradeSheetID: "s2", StudentID: "b", IsAbsent: true},
		{GradeSheetID: "s3", StudentID: "b", Grade: 12},
		{GradeSheetID: "other", StudentID: "c", Grade: 20},
	}
	c := Collect(sheets, entries)

	assert.Equal(t, []float64{10, 16}, c.Grades("a", "math"))
	assert.Equal(t, []float64{10, 16, 8}, c.SubjectGrades("math"))
	assert.True(t, c.HasGrades("b"))
	assert.False(t, c.HasGrades("c"))

	s, ok := c.StudentSubjectAverage("a", "math")
	assert.True(t, ok)
	assert.Equal(t, 13.0, s.Average)
	_, ok = c.StudentSubjectAverage("a", "french")
	assert.False(t, ok)

	assert.Equal(t, []StudentAverage{{"b", 8}, {"a", 13}}, c.SubjectAverages("math", []string{"b", "c", "a"}))
}

func TestComputeSheetStats(t *testing.T) {
	stats := ComputeSheetStats("s1", []GradeEntry{
		{StudentID: "a", Grade: 10},
		{StudentID: "b", Grade: 6},
		{StudentID: "c", IsAbsent: true},
	})
	assert.Equal(t, 2, stats.Graded)
	assert.Equal(t, 1, stats.Absent)
	assert.Equal(t, 1, stats.Passed)
	assert.Equal(t, 8.0, *stats.Average)
	assert.Equal(t, 6.0, *stats.Min)
	assert.Equal(t, 10.0, *stats.Max)
	assert.Equal(t, "50.00", stats.PassRate.String())

	empty := ComputeSheetStats("s2", nil)
	assert.Nil(t, empty.Average)
	assert.Equal(t, "N/A", empty.PassRate.String())
}
