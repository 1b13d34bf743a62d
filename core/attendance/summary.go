package attendance

// DisciplineSummary is what a report card shows of a student's attendance over a term.
// Justified means the record has an approved justification.
type DisciplineSummary struct {
	AbsenceHours            int `json:"absence_hours"`
	JustifiedAbsenceHours   int `json:"justified_absence_hours"`
	UnjustifiedAbsenceHours int `json:"unjustified_absence_hours"`
	Latenesses              int `json:"latenesses"`
	JustifiedLatenesses     int `json:"justified_latenesses"`
	LatenessMinutes         int `json:"lateness_minutes"`
	Consignes               int `json:"consignes"`
	ConsigneHours           int `json:"consigne_hours"`
	Chatters                int `json:"chatters"`
	Exclusions              int `json:"exclusions"`
}

// Add accounts for one record.
func (ds *DisciplineSummary) Add(r Record) {
	switch d := r.Detail.(type) {
	case Absence:
		ds.AbsenceHours += d.Hours
		if r.IsJustified() {
			ds.JustifiedAbsenceHours += d.Hours
		} else {
			ds.UnjustifiedAbsenceHours += d.Hours
		}
	case Lateness:
		ds.Latenesses++
		ds.LatenessMinutes += d.Minutes
		if r.IsJustified() {
			ds.JustifiedLatenesses++
		}
	case Consigne:
		ds.Consignes++
		ds.ConsigneHours += d.Hours
	case Chatter:
		ds.Chatters += d.Count
	case Exclusion:
		ds.Exclusions++
	}
}

// Summarize groups records by student.
func Summarize(records []Record) map[string]DisciplineSummary {
	summaries := make(map[string]DisciplineSummary)
	for _, r := range records {
		ds := summaries[r.StudentID]
		ds.Add(r)
		summaries[r.StudentID] = ds
	}
	return summaries
}
