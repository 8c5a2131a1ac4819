package reportHandler

import (
	reportService "MoodMate/internal/api/report/service"
	"MoodMate/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ReportHandler struct {
	log           *logrus.Logger
	validator     *validator.Validate
	middleware    middleware.Middleware
	reportService reportService.IReportService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	reportService reportService.IReportService,
) *ReportHandler {
	return &ReportHandler{
		log:           log,
		validator:     validate,
		middleware:    middleware,
		reportService: reportService,
	}
}

func (h *ReportHandler) Start(srv fiber.Router) {
	reports := srv.Group("/reports")

	reports.Post("", h.middleware.NewTokenMiddleware, h.ExportReport)
	reports.Get("/:file", h.middleware.NewTokenMiddleware, h.DownloadReport)
}
