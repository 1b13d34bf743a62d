package grading

import (
	"sort"
	"strconv"

	"github.com/jpainam/discolaire-sub011/core"
)

// StudentAverage is the input of Rank.
type StudentAverage struct {
	StudentID string
	Average   float64
}

type ClassroomRank struct {
	StudentID string  `json:"student_id"`
	Average   float64 `json:"average"`
	Rank      int     `json:"rank"`
	IsTied    bool    `json:"is_tied"` // shares its rank with the student listed before
}

// Label renders the rank the way it is printed on report cards, eg. "3" or "3 ex".
func (r ClassroomRank) Label() string {
	label := strconv.Itoa(r.Rank)
	if r.IsTied {
		label += " ex"
	}
	return label
}

// Rank orders students by average, best first, using standard competition ranking (1, 1 ex, 3).
// Averages are compared once rounded to 2 decimals. Students with equal rounded averages keep
// their input order.
func Rank(averages []StudentAverage) []ClassroomRank {
	ranks := make([]ClassroomRank, len(averages))
	for i, a := range averages {
		ranks[i] = ClassroomRank{StudentID: a.StudentID, Average: a.Average}
	}
	sort.SliceStable(ranks, func(i, j int) bool {
		return core.Round2(ranks[i].Average) > core.Round2(ranks[j].Average)
	})

	for i := range ranks {
		if i > 0 && core.Round2(ranks[i].Average) == core.Round2(ranks[i-1].Average) {
			ranks[i].Rank = ranks[i-1].Rank
			ranks[i].IsTied = true
			continue
		}
		ranks[i].Rank = i + 1
	}
	return ranks
}

// RankIndex indexes ranks by student ID.
func RankIndex(ranks []ClassroomRank) map[string]ClassroomRank {
	idx := make(map[string]ClassroomRank, len(ranks))
	for _, r := range ranks {
		idx[r.StudentID] = r
	}
	return idx
}
