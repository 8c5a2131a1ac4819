package reportService

import (
	"MoodMate/internal/api/report"
	sessionService "MoodMate/internal/api/session/service"
	reportPkg "MoodMate/pkg/report"
	"MoodMate/pkg/s3"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type IReportService interface {
	Export(ctx context.Context, sessionID string, req report.ExportRequest) (report.ExportResponse, error)
	Open(sessionID string, fileName string) (string, error)
}

type reportService struct {
	log            *logrus.Logger
	exporter       reportPkg.IExporter
	sessionService sessionService.ISessionService
	s3Client       s3.ItfS3
	uploadToS3     bool
	now            func() time.Time
}

// NewReportService uploads exported reports when REPORT_S3_UPLOAD is true and an S3 client
// is configured.
func NewReportService(
	log *logrus.Logger,
	exporter reportPkg.IExporter,
	sessionService sessionService.ISessionService,
	s3Client s3.ItfS3,
) IReportService {
	upload, _ := strconv.ParseBool(os.Getenv("REPORT_S3_UPLOAD"))

	return &reportService{
		log:            log,
		exporter:       exporter,
		sessionService: sessionService,
		s3Client:       s3Client,
		uploadToS3:     upload && s3Client != nil,
		now:            time.Now,
	}
}
