package grading

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/jpainam/discolaire-sub011/core"
)

var (
	uniqueStudentsTag  = "unique_students"
	uniqueStudentsText = "a student cannot be graded twice on the same sheet"
)

// InitValidators registers the grading validations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(newGradeSheetStructValidation, NewGradeSheet{})
	core.RegisterCustomTranslation(validate, translator, uniqueStudentsTag, uniqueStudentsText)
}

// newGradeSheetStructValidation checks that each student appears at most once on the sheet
func newGradeSheetStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewGradeSheet)
	if !ok {
		return
	}
	seen := make(map[string]bool, len(ns.Grades))
	for _, g := range ns.Grades {
		if seen[g.StudentID] {
			sl.ReportError(ns.Grades, "grades", "Grades", uniqueStudentsTag, "")
			return
		}
		seen[g.StudentID] = true
	}
}
