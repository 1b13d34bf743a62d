package grading

import (
	"encoding/json"
	"fmt"

	"github.com/jpainam/discolaire-sub011/core/school"
)

// SuccessRate counts, for one grade sheet, how many students passed, split by gender.
type SuccessRate struct {
	NumberOfGrade     int `json:"number_of_grade"` // evaluated, ie. not absent
	NumberOfAvg       int `json:"number_of_avg"`   // grade >= PassMark
	NumberOfAvgMale   int `json:"number_of_avg_male"`
	NumberOfAvgFemale int `json:"number_of_avg_female"`
	NumberOfMale      int `json:"number_of_male"`
	NumberOfFemale    int `json:"number_of_female"`
	NumberOfAbsent    int `json:"number_of_absent"`
}

// ComputeSuccessRate partitions entries by absence and by the gender of the student.
// Students with an unknown gender only count in the totals.
func ComputeSuccessRate(entries []GradeEntry, genders map[string]school.Gender) SuccessRate {
	var sr SuccessRate
	for _, e := range entries {
		if e.IsAbsent {
			sr.NumberOfAbsent++
			continue
		}
		sr.NumberOfGrade++
		passed := e.Grade >= PassMark
		if passed {
			sr.NumberOfAvg++
		}
		switch genders[e.StudentID] {
		case school.GenderMale:
			sr.NumberOfMale++
			if passed {
				sr.NumberOfAvgMale++
			}
		case school.GenderFemale:
			sr.NumberOfFemale++
			if passed {
				sr.NumberOfAvgFemale++
			}
		}
	}
	return sr
}

// Percentage is an optional percentage: it has no value when computed over zero participants.
type Percentage struct {
	value float64
	ok    bool
}

// Percent returns part/total as a percentage, without value when total is zero.
func Percent(part, total int) Percentage {
	if total == 0 {
		return Percentage{}
	}
	return Percentage{value: float64(part) * 100 / float64(total), ok: true}
}

func (p Percentage) Value() (float64, bool) { return p.value, p.ok }

func (p Percentage) String() string {
	if !p.ok {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", p.value)
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// CrossTabRow is one gender row (or the total row) of the success-rate table.
type CrossTabRow struct {
	Label         string     `json:"label"`
	Passed        int        `json:"passed"`
	Failed        int        `json:"failed"`
	Total         int        `json:"total"`
	PassedPercent Percentage `json:"passed_percent"`
	FailedPercent Percentage `json:"failed_percent"`
}

func newCrossTabRow(label string, passed, total int) CrossTabRow {
	return CrossTabRow{
		Label:         label,
		Passed:        passed,
		Failed:        total - passed,
		Total:         total,
		PassedPercent: Percent(passed, total),
		FailedPercent: Percent(total-passed, total),
	}
}

// CrossTab is the gender × pass/fail table of a success rate.
type CrossTab struct {
	Male   CrossTabRow `json:"male"`
	Female CrossTabRow `json:"female"`
	Total  CrossTabRow `json:"total"`
}

func (sr SuccessRate) CrossTab() CrossTab {
	return CrossTab{
		Male:   newCrossTabRow("Male", sr.NumberOfAvgMale, sr.NumberOfMale),
		Female: newCrossTabRow("Female", sr.NumberOfAvgFemale, sr.NumberOfFemale),
		Total:  newCrossTabRow("Total", sr.NumberOfAvg, sr.NumberOfGrade),
	}
}

// Rate is the overall share of evaluated students who passed.
func (sr SuccessRate) Rate() Percentage {
	return Percent(sr.NumberOfAvg, sr.NumberOfGrade)
}
