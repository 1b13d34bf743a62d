package report

import (
	"sort"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/attendance"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/core/school"
)

// Input is everything the Assembler needs to build the report of a classroom over a term.
type Input struct {
	Classroom  school.Classroom
	Term       school.Term
	Students   []school.Student
	Subjects   []school.Subject
	Grades     *grading.Collection
	Discipline map[string]attendance.DisciplineSummary
}

type Assembler struct {
	Appreciator grading.Appreciator
}

func NewAssembler(appreciator grading.Appreciator) *Assembler {
	if appreciator == nil {
		appreciator = grading.DefaultScale
	}
	return &Assembler{Appreciator: appreciator}
}

type subjectStats struct {
	summary grading.Summary
	ok      bool
	ranks   map[string]grading.ClassroomRank
}

func floatPtr(f float64) *float64 { return &f }

// Classroom builds the ranked report cards of every student.
func (a *Assembler) Classroom(in Input) ClassroomReport {
	grades := in.Grades
	if grades == nil {
		grades = grading.Collect(nil, nil)
	}
	studentIDs := make([]string, len(in.Students))
	for i, s := range in.Students {
		studentIDs[i] = s.ID
	}

	stats := make(map[string]subjectStats, len(in.Subjects))
	for _, subj := range in.Subjects {
		averages := grades.SubjectAverages(subj.ID, studentIDs)
		values := make([]float64, len(averages))
		for i, avg := range averages {
			values[i] = avg.Average
		}
		summary, ok := grading.Summarize(values)
		stats[subj.ID] = subjectStats{summary: summary, ok: ok, ranks: grading.RankIndex(grading.Rank(averages))}
	}

	groups := groupSubjects(in.Subjects)
	cards := make([]ReportCard, len(in.Students))
	var averages []grading.StudentAverage
	for i, student := range in.Students {
		cards[i] = a.card(student, groups, grades, stats)
		cards[i].Classroom = in.Classroom
		cards[i].Term = in.Term
		cards[i].ClassSize = len(in.Students)
		if in.Discipline != nil {
			cards[i].Discipline = in.Discipline[student.ID]
		}
		if cards[i].Average != nil {
			averages = append(averages, grading.StudentAverage{StudentID: student.ID, Average: *cards[i].Average})
		}
	}

	ranks := grading.Rank(averages)
	rankIdx := grading.RankIndex(ranks)
	for i := range cards {
		if r, ok := rankIdx[cards[i].Student.ID]; ok {
			r := r
			cards[i].Rank = &r
		}
	}

	return ClassroomReport{
		Classroom: in.Classroom,
		Term:      in.Term,
		Ranks:     ranks,
		Cards:     cards,
		Stats:     classroomStats(len(in.Students), averages),
	}
}

func (a *Assembler) card(
	student school.Student,
	groups []subjectGroup,
	grades *grading.Collection,
	stats map[string]subjectStats,
) ReportCard {
	card := ReportCard{Student: student}
	var all []grading.SubjectScore

	for _, g := range groups {
		gr := GroupReport{Group: g.group}
		var scores []grading.SubjectScore
		for _, subj := range g.subjects {
			line := SubjectLine{
				SubjectID:   subj.ID,
				CourseName:  subj.CourseName,
				TeacherName: subj.TeacherName,
				Coefficient: subj.Coefficient,
			}
			if st := stats[subj.ID]; st.ok {
				line.ClassAverage = floatPtr(st.summary.Average)
				line.ClassMin = floatPtr(st.summary.Min)
				line.ClassMax = floatPtr(st.summary.Max)
				if r, ok := st.ranks[student.ID]; ok {
					r := r
					line.Rank = &r
				}
			}
			if s, ok := grades.StudentSubjectAverage(student.ID, subj.ID); ok {
				line.Average = floatPtr(s.Average)
				line.Points = floatPtr(s.Average * subj.Coefficient)
				line.MaxPoints = floatPtr(grading.MaxGrade * subj.Coefficient)
				line.Appreciation = a.Appreciator.Appreciate(s.Average)
				scores = append(scores, grading.SubjectScore{SubjectID: subj.ID, Average: s.Average, Coefficient: subj.Coefficient})
			}
			gr.Lines = append(gr.Lines, line)
		}
		if w, ok := grading.Weigh(scores); ok {
			gr.Coefficients, gr.Points, gr.MaxPoints = w.Coefficients, w.Points, w.MaxPoints
			gr.Average = floatPtr(w.Average)
		}
		all = append(all, scores...)
		card.Groups = append(card.Groups, gr)
	}

	if w, ok := grading.Weigh(all); ok {
		card.Coefficients, card.Points, card.MaxPoints = w.Coefficients, w.Points, w.MaxPoints
		card.Average = floatPtr(w.Average)
		card.Appreciation = a.Appreciator.Appreciate(w.Average)
	}
	return card
}

func classroomStats(classSize int, averages []grading.StudentAverage) ClassroomStats {
	st := ClassroomStats{ClassSize: classSize, Ranked: len(averages)}
	values := make([]float64, len(averages))
	for i, avg := range averages {
		values[i] = avg.Average
		if core.Round2(avg.Average) >= grading.PassMark {
			st.AboveAverage++
		}
	}
	if s, ok := grading.Summarize(values); ok {
		st.Average, st.Min, st.Max = floatPtr(s.Average), floatPtr(s.Min), floatPtr(s.Max)
	}
	st.SuccessRate = grading.Percent(st.AboveAverage, st.Ranked)
	return st
}

// RollOfHonor lists the students whose average, rounded to 2 decimals, reaches grading.HonorRollMinimum.
// Entries follow the classroom ranking.
func (a *Assembler) RollOfHonor(cr ClassroomReport) RollOfHonor {
	roll := RollOfHonor{Classroom: cr.Classroom, Term: cr.Term, Entries: []HonorEntry{}}
	students := make(map[string]school.Student, len(cr.Cards))
	for _, card := range cr.Cards {
		students[card.Student.ID] = card.Student
	}

	seen := make(map[string]bool, len(cr.Ranks))
	for _, r := range cr.Ranks {
		if seen[r.StudentID] || core.Round2(r.Average) < grading.HonorRollMinimum {
			continue
		}
		seen[r.StudentID] = true
		roll.Entries = append(roll.Entries, HonorEntry{
			Rank:         r,
			Student:      students[r.StudentID],
			Average:      r.Average,
			Appreciation: a.Appreciator.Appreciate(r.Average),
		})
	}
	return roll
}

type subjectGroup struct {
	group    school.SubjectGroup
	subjects []school.Subject
}

// groupSubjects groups subjects by SubjectGroup, ordered by SubjectGroup.Order then name.
// Subjects keep their relative order inside a group.
func groupSubjects(subjects []school.Subject) []subjectGroup {
	var groups []subjectGroup
	idx := make(map[string]int)
	for _, subj := range subjects {
		g := subj.SubjectGroup()
		i, ok := idx[g.ID]
		if !ok {
			i = len(groups)
			idx[g.ID] = i
			groups = append(groups, subjectGroup{group: g})
		}
		groups[i].subjects = append(groups[i].subjects, subj)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].group.Order != groups[j].group.Order {
			return groups[i].group.Order < groups[j].group.Order
		}
		return groups[i].group.Name < groups[j].group.Name
	})
	return groups
}
