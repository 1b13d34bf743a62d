package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance")
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/justification", api.justify)

	g.PUT("/justifications/:id/status", api.updateStatus)
	g.GET("/classrooms/:id/attendance", api.queryByClassroom)
}

// Handlers

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.NewRecord
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRecord")
	}

	rec, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating attendance record")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting attendance record")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting attendance record")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *attendanceApi) queryByClassroom(ctx echo.Context) error {
	kind := attendance.Kind(core.CleanString(ctx.QueryParam("kind"), true /* lower */))
	records, err := api.svc.QueryByClassroom(ctx.Request().Context(), ctx.Param("id"), bindList(ctx, "term_id"), kind)
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	if records == nil {
		records = []attendance.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) justify(ctx echo.Context) error {
	var data attendance.NewJustification
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewJustification")
	}

	j, err := api.svc.Justify(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "justifying attendance record")
	}
	return ctx.JSON(http.StatusCreated, j)
}

func (api *attendanceApi) updateStatus(ctx echo.Context) error {
	var data attendance.StatusUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusUpdate")
	}

	j, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating justification status")
	}
	return ctx.JSON(http.StatusOK, j)
}
