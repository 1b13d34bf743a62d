package echoapi

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jpainam/discolaire-sub011/core"
)

const (
	formatParam = "format"
	formatJSON  = "json"
	formatXLSX  = "xlsx"
	formatPDF   = "pdf"
)

// bindFormat reads the `format` query param; the default is JSON.
func bindFormat(ctx echo.Context, allowed ...string) (string, error) {
	format := core.CleanString(ctx.QueryParam(formatParam), true /* lower */)
	if format == "" || format == formatJSON {
		return formatJSON, nil
	}
	for _, f := range allowed {
		if f == format {
			return format, nil
		}
	}
	return "", core.NewValidationError(nil, core.FieldError{
		Field: formatParam,
		Error: "must be one of: " + strings.Join(append([]string{formatJSON}, allowed...), ", "),
	})
}

// bindList reads a multi-valued query param, accepting both `?k=a&k=b` and `?k=a,b`.
func bindList(ctx echo.Context, name string) []string {
	var list []string
	for _, val := range ctx.QueryParams()[name] {
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
	}
	return list
}
