package grading

import (
	"sort"

	"github.com/jpainam/discolaire-sub011/core"
)

// Appreciator turns an average into the remark printed next to it.
type Appreciator interface {
	Appreciate(average float64) string
}

// Appreciation maps averages >= Minimum to Label.
type Appreciation struct {
	Minimum float64 `json:"minimum"`
	Label   string  `json:"label"`
}

// Scale is an Appreciator backed by a lookup table.
type Scale []Appreciation

// NewScale returns the scale sorted from the highest minimum down.
func NewScale(appreciations ...Appreciation) Scale {
	s := make(Scale, len(appreciations))
	copy(s, appreciations)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Minimum > s[j].Minimum })
	return s
}

// DefaultScale is used when the school has not configured its own appreciations.
var DefaultScale = NewScale(
	Appreciation{Minimum: 18, Label: "Excellent"},
	Appreciation{Minimum: 16, Label: "Very good"},
	Appreciation{Minimum: 14, Label: "Good"},
	Appreciation{Minimum: 12, Label: "Fairly good"},
	Appreciation{Minimum: 10, Label: "Average"},
	Appreciation{Minimum: 8, Label: "Weak"},
	Appreciation{Minimum: 0, Label: "Poor"},
)

func (s Scale) Appreciate(average float64) string {
	average = core.Round2(average)
	for _, a := range s {
		if average >= a.Minimum {
			return a.Label
		}
	}
	return ""
}
