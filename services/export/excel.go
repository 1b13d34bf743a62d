package export

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/core/report"
)

const (
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout   = "02/01/2006"
	defaultSheet = "Sheet1"
)

// RollOfHonorHeaders is the header row of the roll of honor spreadsheet.
var RollOfHonorHeaders = []string{
	"Registration Number", "Student Name", "Date of Birth", "Is Repeating", "Grade", "Observation",
}

// SuccessRateHeaders is the header row of the success rate spreadsheet.
var SuccessRateHeaders = []string{"", "Passed", "Failed", "Total", "% Passed", "% Failed"}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// newWorkbook returns a workbook with a single, active sheet named `name`.
func newWorkbook(name string) (*excelize.File, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(name)
	if err != nil {
		return nil, errors.Wrap(err, "creating sheet")
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet(defaultSheet)
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err = f.SetCellValue(sheet, cell, v); err != nil {
			return errors.Wrapf(err, "setting %s", cell)
		}
	}
	return nil
}

func headerRow(headers []string) []interface{} {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

// WriteRollOfHonorXLSX writes the roll of honor as an Excel workbook.
func WriteRollOfHonorXLSX(w io.Writer, roll report.RollOfHonor) error {
	sheet := "Roll of honor"
	f, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = setRow(f, sheet, 1, headerRow(RollOfHonorHeaders)); err != nil {
		return err
	}
	for i, e := range roll.Entries {
		dob := ""
		if !e.Student.DateOfBirth.IsZero() {
			dob = e.Student.DateOfBirth.Format(dateLayout)
		}
		if err = setRow(f, sheet, i+2, []interface{}{
			e.Student.RegistrationNumber,
			e.Student.FullName(),
			dob,
			yesNo(e.Student.IsRepeating),
			core.Round2(e.Average),
			e.Appreciation,
		}); err != nil {
			return err
		}
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

// WriteSuccessRateXLSX writes the gender × pass/fail table of a grade sheet.
func WriteSuccessRateXLSX(w io.Writer, sheetName string, sr grading.SuccessRate) error {
	sheet := "Success rate"
	f, err := newWorkbook(sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	if err = setRow(f, sheet, 1, []interface{}{sheetName}); err != nil {
		return err
	}
	if err = setRow(f, sheet, 2, headerRow(SuccessRateHeaders)); err != nil {
		return err
	}
	ct := sr.CrossTab()
	for i, row := range []grading.CrossTabRow{ct.Male, ct.Female, ct.Total} {
		if err = setRow(f, sheet, i+3, []interface{}{
			row.Label, row.Passed, row.Failed, row.Total,
			row.PassedPercent.String(), row.FailedPercent.String(),
		}); err != nil {
			return err
		}
	}
	if err = setRow(f, sheet, 7, []interface{}{"Absent", sr.NumberOfAbsent}); err != nil {
		return err
	}
	return errors.Wrap(f.Write(w), "writing workbook")
}

// Filename returns a download name, eg. Filename("xlsx", "roll-of-honor", "6e A", "Quarter 1")
// gives "roll-of-honor_6e-A_Quarter-1.xlsx". Empty parts are skipped.
func Filename(ext, kind string, parts ...string) string {
	name := kind
	for _, p := range parts {
		if s := slug(p); s != "" {
			name += "_" + s
		}
	}
	return name + "." + ext
}

func slug(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range core.CleanString(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			out = append(out, r)
		case r == ' ' || r == '_':
			out = append(out, '-')
		}
	}
	return string(out)
}
