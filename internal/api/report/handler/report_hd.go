package reportHandler

import (
	"MoodMate/internal/api/report"
	contextPkg "MoodMate/pkg/context"
	"MoodMate/pkg/handlerUtil"
	jwtPkg "MoodMate/pkg/jwt"
	"MoodMate/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *ReportHandler) ExportReport(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	sessionID, err := jwtPkg.GetSessionID(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req report.ExportRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, fiber.NewError(fiber.StatusBadRequest, err.Error()), ctx.Path(), "parse_request_body")
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"session_id": sessionID,
		"record_id":  req.RecordID,
	}).Debug("Processing report export request")

	if c.Err() != nil {
		return errHandler.HandleRequestTimeout(ctx)
	}

	res, err := h.reportService.Export(c, sessionID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "export_report")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, res)
}

func (h *ReportHandler) DownloadReport(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	errHandler := handlerUtil.New(h.log)

	sessionID, err := jwtPkg.GetSessionID(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	fileName := ctx.Params("file")
	path, err := h.reportService.Open(sessionID, fileName)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "open_report")
	}

	return ctx.Download(path, fileName)
}
