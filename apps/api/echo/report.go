package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/jpainam/discolaire-sub011/core"
	"github.com/jpainam/discolaire-sub011/core/report"
	"github.com/jpainam/discolaire-sub011/services/export"
)

var errNoStudentEmail = core.NewConflictError("student has no email address")

type reportApi struct {
	svc    *report.Service
	doc    export.Document
	mailer core.EmailService
}

func registerReportAPI(g *echo.Group, svc *report.Service, doc export.Document, mailer core.EmailService) {
	api := reportApi{svc: svc, doc: doc, mailer: mailer}

	cg := g.Group("/classrooms/:id/terms/:term_id")
	cg.GET("/report", api.classroomReport)
	cg.GET("/roll-of-honor", api.rollOfHonor)
	cg.GET("/discipline", api.discipline)

	g.GET("/students/:id/terms/:term_id/report-card", api.reportCard)
	g.POST("/students/:id/terms/:term_id/report-card/email", api.emailReportCard)
}

// Handlers

func (api *reportApi) classroomReport(ctx echo.Context) error {
	cr, err := api.svc.ClassroomReport(ctx.Request().Context(), ctx.Param("id"), ctx.Param("term_id"))
	if err != nil {
		return errors.Wrap(err, "building classroom report")
	}
	return ctx.JSON(http.StatusOK, cr)
}

func (api *reportApi) rollOfHonor(ctx echo.Context) error {
	format, err := bindFormat(ctx, formatXLSX, formatPDF)
	if err != nil {
		return err
	}
	roll, err := api.svc.RollOfHonor(ctx.Request().Context(), ctx.Param("id"), ctx.Param("term_id"))
	if err != nil {
		return errors.Wrap(err, "building roll of honor")
	}

	var buf bytes.Buffer
	switch format {
	case formatXLSX:
		if err = export.WriteRollOfHonorXLSX(&buf, roll); err != nil {
			return errors.Wrap(err, "exporting roll of honor")
		}
		return attachment(ctx, export.Filename(formatXLSX, "roll-of-honor", roll.Classroom.Name, roll.Term.Name), export.XLSXContentType, buf.Bytes())
	case formatPDF:
		if err = api.doc.WriteRollOfHonorPDF(&buf, roll); err != nil {
			return errors.Wrap(err, "exporting roll of honor")
		}
		return attachment(ctx, export.Filename(formatPDF, "roll-of-honor", roll.Classroom.Name, roll.Term.Name), export.PDFContentType, buf.Bytes())
	}
	return ctx.JSON(http.StatusOK, roll)
}

func (api *reportApi) discipline(ctx echo.Context) error {
	rows, err := api.svc.Discipline(ctx.Request().Context(), ctx.Param("id"), ctx.Param("term_id"))
	if err != nil {
		return errors.Wrap(err, "building discipline report")
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *reportApi) reportCard(ctx echo.Context) error {
	format, err := bindFormat(ctx, formatPDF)
	if err != nil {
		return err
	}
	card, err := api.svc.StudentReportCard(ctx.Request().Context(), ctx.Param("id"), ctx.Param("term_id"))
	if err != nil {
		return errors.Wrap(err, "building report card")
	}

	if format == formatPDF {
		var buf bytes.Buffer
		if err = api.doc.WriteReportCardPDF(&buf, card); err != nil {
			return errors.Wrap(err, "exporting report card")
		}
		filename := export.Filename(formatPDF, "report-card", card.Student.FullName(), card.Term.Name)
		return attachment(ctx, filename, export.PDFContentType, buf.Bytes())
	}
	return ctx.JSON(http.StatusOK, card)
}

// emailReportCard sends the PDF report card to the student's email address.
func (api *reportApi) emailReportCard(ctx echo.Context) error {
	card, err := api.svc.StudentReportCard(ctx.Request().Context(), ctx.Param("id"), ctx.Param("term_id"))
	if err != nil {
		return errors.Wrap(err, "building report card")
	}
	if card.Student.Email == "" {
		return errNoStudentEmail
	}

	var buf bytes.Buffer
	if err = api.doc.WriteReportCardPDF(&buf, card); err != nil {
		return errors.Wrap(err, "exporting report card")
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: card.Student.FullName(), Address: card.Student.Email}},
		Subject: fmt.Sprintf("Report card: %s", card.Term.Name),
		BodyStr: fmt.Sprintf("Dear %s,\n\nPlease find attached your report card for %s.\n", card.Student.FullName(), card.Term.Name),
	}
	filename := export.Filename(formatPDF, "report-card", card.Student.FullName(), card.Term.Name)
	if err = msg.Attach(&buf, filename, export.PDFContentType); err != nil {
		return errors.Wrap(err, "attaching report card")
	}
	api.mailer.SendMessages(msg)
	return ctx.NoContent(http.StatusAccepted)
}
