package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/grading"
	"github.com/jpainam/discolaire-sub011/services/export"
)

type gradeSheetApi struct {
	svc *grading.Service
}

// sheetResponse is a grade sheet along with its grades.
type sheetResponse struct {
	grading.GradeSheet
	Grades []grading.GradeEntry `json:"grades"`
}

func registerGradeSheetAPI(g *echo.Group, svc *grading.Service) {
	api := gradeSheetApi{svc: svc}

	sg := g.Group("/gradesheets")
	sg.POST("", api.create)
	sg.GET("", api.query)

	// detail endpoints
	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
	dg.GET("/grades", api.grades)
	dg.PUT("/grades/:student_id", api.correctGrade)
	dg.GET("/stats", api.stats)
	dg.GET("/success-rate", api.successRate)
}

// Handlers

func (api *gradeSheetApi) create(ctx echo.Context) error {
	var data grading.NewGradeSheet
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGradeSheet")
	}

	sheet, grades, err := api.svc.CreateSheet(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating grade sheet")
	}
	return ctx.JSON(http.StatusCreated, sheetResponse{GradeSheet: sheet, Grades: grades})
}

func (api *gradeSheetApi) query(ctx echo.Context) error {
	filter := grading.SheetFilter{
		ClassroomID: core.CleanString(ctx.QueryParam("classroom_id")),
		SubjectID:   core.CleanString(ctx.QueryParam("subject_id")),
		TermIDs:     bindList(ctx, "term_id"),
	}
	sheets, err := api.svc.QuerySheets(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying grade sheets")
	}
	if sheets == nil {
		sheets = []grading.GradeSheet{}
	}
	return ctx.JSON(http.StatusOK, sheets)
}

func (api *gradeSheetApi) retrieve(ctx echo.Context) error {
	sheet, err := api.svc.GetSheet(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting grade sheet")
	}
	return ctx.JSON(http.StatusOK, sheet)
}

func (api *gradeSheetApi) destroy(ctx echo.Context) error {
	if err := api.svc.DeleteSheet(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting grade sheet")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *gradeSheetApi) grades(ctx echo.Context) error {
	grades, err := api.svc.Grades(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting grades")
	}
	if grades == nil {
		grades = []grading.GradeEntry{}
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeSheetApi) correctGrade(ctx echo.Context) error {
	var data grading.GradeCorrection
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GradeCorrection")
	}

	entry, err := api.svc.CorrectGrade(ctx.Request().Context(), ctx.Param("id"), ctx.Param("student_id"), data)
	if err != nil {
		return errors.Wrap(err, "correcting grade")
	}
	return ctx.JSON(http.StatusOK, entry)
}

func (api *gradeSheetApi) stats(ctx echo.Context) error {
	stats, err := api.svc.SheetStats(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing sheet stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

type successRateResponse struct {
	SheetID  string              `json:"sheet_id"`
	Counts   grading.SuccessRate `json:"counts"`
	Rate     grading.Percentage  `json:"rate"`
	CrossTab grading.CrossTab    `json:"cross_tab"`
}

func (api *gradeSheetApi) successRate(ctx echo.Context) error {
	format, err := bindFormat(ctx, formatXLSX)
	if err != nil {
		return err
	}
	id := ctx.Param("id")
	sr, err := api.svc.SuccessRate(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "computing success rate")
	}

	if format == formatXLSX {
		sheet, err := api.svc.GetSheet(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "getting grade sheet")
		}
		var buf bytes.Buffer
		if err = export.WriteSuccessRateXLSX(&buf, sheet.Name, sr); err != nil {
			return errors.Wrap(err, "exporting success rate")
		}
		return attachment(ctx, export.Filename("xlsx", "success-rate", sheet.Name), export.XLSXContentType, buf.Bytes())
	}

	return ctx.JSON(http.StatusOK, successRateResponse{
		SheetID:  id,
		Counts:   sr,
		Rate:     sr.Rate(),
		CrossTab: sr.CrossTab(),
	})
}

// attachment sends a generated file for download.
func attachment(ctx echo.Context, filename, contentType string, content []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, contentType, content)
}
