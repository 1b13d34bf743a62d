package attendance

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/jpainam/discolaire-sub011/core"
)

var (
	kindTag  = "attendance_kind"
	kindText = "must be one of absence, lateness, consigne, chatter or exclusion"

	positiveTag  = "positive_for_kind"
	positiveText = "must be greater than 0 for this type of record"

	periodTag  = "exclusion_period"
	periodText = "a valid exclusion period is required"
)

// InitValidators registers the attendance validations on validate.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(kindTag, kindValidation)
	core.RegisterCustomTranslation(validate, translator, kindTag, kindText)

	validate.RegisterStructValidation(newRecordStructValidation, NewRecord{})
	core.RegisterCustomTranslation(validate, translator, positiveTag, positiveText)
	core.RegisterCustomTranslation(validate, translator, periodTag, periodText)
}

// Custom Validators

func kindValidation(fl validator.FieldLevel) bool {
	if kind, ok := fl.Field().Interface().(Kind); ok {
		return kind.Valid()
	}
	return false
}

// newRecordStructValidation checks that the fields of the record type are set
func newRecordStructValidation(sl validator.StructLevel) {
	nr, ok := sl.Current().Interface().(NewRecord)
	if !ok {
		return
	}
	switch nr.Type {
	case KindAbsence, KindConsigne:
		if nr.Hours <= 0 {
			sl.ReportError(nr.Hours, "hours", "Hours", positiveTag, "")
		}
	case KindLateness:
		if nr.Minutes <= 0 {
			sl.ReportError(nr.Minutes, "minutes", "Minutes", positiveTag, "")
		}
	case KindChatter:
		if nr.Count <= 0 {
			sl.ReportError(nr.Count, "count", "Count", positiveTag, "")
		}
	case KindExclusion:
		if nr.StartDate == nil || nr.StartDate.IsZero() {
			sl.ReportError(nr.StartDate, "start_date", "StartDate", periodTag, "")
		}
		if nr.EndDate == nil || nr.EndDate.IsZero() {
			sl.ReportError(nr.EndDate, "end_date", "EndDate", periodTag, "")
		} else if nr.StartDate != nil && nr.EndDate.Before(*nr.StartDate) {
			sl.ReportError(nr.EndDate, "end_date", "EndDate", periodTag, "")
		}
	}
}
