package grading

// Summary of a set of grades.
type Summary struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Summarize computes the average, min and max of values.
// ok is false when values is empty: there is no data to summarize.
func Summarize(values []float64) (s Summary, ok bool) {
	if len(values) == 0 {
		return Summary{}, false
	}

	var total float64
	s.Min, s.Max = values[0], values[0]
	for _, v := range values {
		total += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Count = len(values)
	s.Average = total / float64(s.Count)

	// float accumulation may drift a hair outside [min, max] when all values are equal
	if s.Average < s.Min {
		s.Average = s.Min
	} else if s.Average > s.Max {
		s.Average = s.Max
	}
	return s, true
}

// SummarizeEntries summarizes the non-absent grades of entries.
func SummarizeEntries(entries []GradeEntry) (Summary, bool) {
	return Summarize(PresentGrades(entries))
}

// PresentGrades returns the grades of the entries where the student was not absent.
func PresentGrades(entries []GradeEntry) []float64 {
	values := make([]float64, 0, len(entries))
	for _, e := range entries {
		if !e.IsAbsent {
			values = append(values, e.Grade)
		}
	}
	return values
}
