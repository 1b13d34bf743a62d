package export

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core/report"
)

const PDFContentType = "application/pdf"

// Document is the letterhead shared by the PDF exports.
type Document struct {
	SchoolName string
}

func (d Document) newPDF(title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252, for accented names
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 8, tr(d.SchoolName), "", 1, "C", false, 0, "")
	pdf.SetDrawColor(40, 145, 108)
	pdf.SetLineWidth(0.5)
	pdf.Line(15, pdf.GetY()+1, 195, pdf.GetY()+1)
	pdf.Ln(5)
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(0, 8, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(2)
	return pdf, tr
}

func output(pdf *gofpdf.Fpdf, w io.Writer) error {
	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, "rendering pdf")
	}
	return errors.Wrap(pdf.Output(w), "writing pdf")
}

func fmtOpt(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *f)
}

func header(pdf *gofpdf.Fpdf, widths []float64, titles []string) {
	pdf.SetFont("Arial", "B", 8)
	pdf.SetFillColor(40, 145, 108)
	pdf.SetTextColor(255, 255, 255)
	for i, t := range titles {
		pdf.CellFormat(widths[i], 7, t, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 8)
}

// WriteReportCardPDF renders the report card of one student.
func (d Document) WriteReportCardPDF(w io.Writer, card report.ReportCard) error {
	pdf, tr := d.newPDF(fmt.Sprintf("Report card - %s", card.Term.Name))

	pdf.SetFont("Arial", "", 10)
	info := [][2]string{
		{"Student:", card.Student.FullName()},
		{"Registration number:", card.Student.RegistrationNumber},
		{"Classroom:", card.Classroom.Name},
		{"Class size:", fmt.Sprintf("%d", card.ClassSize)},
	}
	if !card.Student.DateOfBirth.IsZero() {
		info = append(info, [2]string{"Date of birth:", card.Student.DateOfBirth.Format(dateLayout)})
	}
	for _, kv := range info {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(45, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	widths := []float64{44, 12, 14, 16, 16, 14, 14, 14, 12, 24}
	header(pdf, widths, []string{"Subject", "Coef", "Avg", "Points", "Max", "Cl. avg", "Cl. min", "Cl. max", "Rank", "Appreciation"})
	for _, g := range card.Groups {
		for i, l := range g.Lines {
			fill := i%2 == 1
			pdf.SetFillColor(245, 245, 245)
			rank := "-"
			if l.Rank != nil {
				rank = l.Rank.Label()
			}
			cells := []string{
				tr(l.CourseName), fmt.Sprintf("%g", l.Coefficient), fmtOpt(l.Average), fmtOpt(l.Points),
				fmtOpt(l.MaxPoints), fmtOpt(l.ClassAverage), fmtOpt(l.ClassMin), fmtOpt(l.ClassMax),
				rank, tr(l.Appreciation),
			}
			for j, c := range cells {
				align := "C"
				if j == 0 {
					align = "L"
				}
				pdf.CellFormat(widths[j], 6, c, "1", 0, align, fill, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(225, 240, 233)
		pdf.CellFormat(widths[0], 6, tr(g.Group.Name), "1", 0, "L", true, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprintf("%g", g.Coefficients), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[2], 6, fmtOpt(g.Average), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", g.Points), "1", 0, "C", true, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", g.MaxPoints), "1", 0, "C", true, 0, "")
		rest := 0.0
		for _, wd := range widths[5:] {
			rest += wd
		}
		pdf.CellFormat(rest, 6, "", "1", 1, "C", true, 0, "")
		pdf.SetFont("Arial", "", 8)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	summary := [][2]string{
		{"Total points:", fmt.Sprintf("%.2f / %.2f", card.Points, card.MaxPoints)},
		{"Average:", fmtOpt(card.Average)},
		{"Rank:", fmt.Sprintf("%s / %d", card.RankLabel(), card.ClassSize)},
		{"Appreciation:", card.Appreciation},
	}
	for _, kv := range summary {
		pdf.CellFormat(45, 6, kv[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, tr(kv[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	ds := card.Discipline
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Discipline", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, line := range []string{
		fmt.Sprintf("Absences: %dh (justified %dh, unjustified %dh)", ds.AbsenceHours, ds.JustifiedAbsenceHours, ds.UnjustifiedAbsenceHours),
		fmt.Sprintf("Latenesses: %d (%d min, justified %d)", ds.Latenesses, ds.LatenessMinutes, ds.JustifiedLatenesses),
		fmt.Sprintf("Consignes: %d (%dh)", ds.Consignes, ds.ConsigneHours),
		fmt.Sprintf("Chatters: %d", ds.Chatters),
		fmt.Sprintf("Exclusions: %d", ds.Exclusions),
	} {
		pdf.CellFormat(0, 5, line, "", 1, "L", false, 0, "")
	}

	return output(pdf, w)
}

// WriteRollOfHonorPDF renders the roll of honor of a classroom.
func (d Document) WriteRollOfHonorPDF(w io.Writer, roll report.RollOfHonor) error {
	pdf, tr := d.newPDF(fmt.Sprintf("Roll of honor - %s - %s", roll.Classroom.Name, roll.Term.Name))

	widths := []float64{14, 32, 56, 24, 16, 18, 20}
	header(pdf, widths, append([]string{"Rank"}, RollOfHonorHeaders...))
	if len(roll.Entries) == 0 {
		pdf.CellFormat(0, 7, "No student reached the roll of honor.", "1", 1, "C", false, 0, "")
	}
	for i, e := range roll.Entries {
		fill := i%2 == 1
		pdf.SetFillColor(245, 245, 245)
		dob := ""
		if !e.Student.DateOfBirth.IsZero() {
			dob = e.Student.DateOfBirth.Format(dateLayout)
		}
		cells := []string{
			e.Rank.Label(), e.Student.RegistrationNumber, tr(e.Student.FullName()), dob,
			yesNo(e.Student.IsRepeating), fmt.Sprintf("%.2f", e.Average), tr(e.Appreciation),
		}
		for j, c := range cells {
			align := "C"
			if j == 2 {
				align = "L"
			}
			pdf.CellFormat(widths[j], 6, c, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	return output(pdf, w)
}
