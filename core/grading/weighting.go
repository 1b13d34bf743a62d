package grading

// SubjectScore is a student's average in one subject, with the subject's coefficient.
type SubjectScore struct {
	SubjectID   string
	Average     float64
	Coefficient float64
}

// Weighted is the coefficient-weighted aggregate of several subject scores.
type Weighted struct {
	Points       float64 `json:"points"`
	MaxPoints    float64 `json:"max_points"`
	Coefficients float64 `json:"coefficients"`
	Average      float64 `json:"average"`
}

// Weigh aggregates scores as Σ(avg×coef) / Σcoef.
// Only subjects with data should be passed in, so that the numerator and the denominator
// are computed over the same coefficients. ok is false when the coefficients sum to zero.
func Weigh(scores []SubjectScore) (w Weighted, ok bool) {
	for _, s := range scores {
		if s.Coefficient <= 0 {
			continue
		}
		w.Points += s.Average * s.Coefficient
		w.MaxPoints += MaxGrade * s.Coefficient
		w.Coefficients += s.Coefficient
	}
	if w.Coefficients == 0 {
		return Weighted{}, false
	}
	w.Average = w.Points / w.Coefficients
	return w, true
}
