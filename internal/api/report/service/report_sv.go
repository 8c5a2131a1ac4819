package reportService

import (
	"MoodMate/internal/api/report"
	"MoodMate/internal/api/session"
	"MoodMate/internal/entity"
	"MoodMate/pkg/log"
	reportPkg "MoodMate/pkg/report"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/context"
)

const presignTTL = 15 * time.Minute

// Export renders the latest record of the session, or req.RecordID when set.
func (s *reportService) Export(ctx context.Context, sessionID string, req report.ExportRequest) (report.ExportResponse, error) {
	ms, err := s.sessionService.Get(ctx, sessionID)
	if err != nil {
		return report.ExportResponse{}, err
	}

	var (
		record entity.SessionRecord
		ok     bool
	)
	if req.RecordID == "" {
		record, ok = ms.LatestRecord()
		if !ok {
			return report.ExportResponse{}, session.ErrNoHistory
		}
	} else {
		record, ok = ms.FindRecord(req.RecordID)
		if !ok {
			return report.ExportResponse{}, session.ErrRecordNotFound
		}
	}

	path, err := s.exporter.Export(reportPkg.SessionInfo{
		SessionID: sessionID,
		RecordID:  record.ID,
		Timestamp: record.Timestamp,
		InputMode: record.InputMode,
	}, record.Distribution, record.DominantEmotion, record.Recommendations, record.SampleImages)
	if err != nil {
		log.WithContext(ctx).WithField("error", err.Error()).Error("[reportService.Export] failed to write report")
		return report.ExportResponse{}, report.ErrInternalServerError
	}

	name := filepath.Base(path)
	res := report.ExportResponse{
		FileName:     name,
		RecordID:     record.ID,
		DownloadPath: "/api/v1/reports/" + name,
	}

	if s.uploadToS3 {
		url, err := s.upload(ctx, path)
		if err != nil {
			return report.ExportResponse{}, err
		}
		expires := s.now().Add(presignTTL)
		res.RemoteURL = url
		res.ExpiresAt = &expires
	}

	log.WithContext(ctx).WithFields(log.Fields{
		"record_id": record.ID,
		"file_name": name,
		"uploaded":  res.RemoteURL != "",
	}).Info("Session report exported")

	return res, nil
}

func (s *reportService) upload(ctx context.Context, path string) (string, error) {
	key, err := s.s3Client.UploadReport(ctx, path)
	if err != nil {
		log.WithContext(ctx).WithField("error", err.Error()).Error("[reportService.upload] failed to upload report")
		return "", report.ErrUploadFailed
	}

	url, err := s.s3Client.PresignUrl(key)
	if err != nil {
		log.WithContext(ctx).WithField("error", err.Error()).Error("[reportService.upload] failed to presign report url")
		if delErr := s.s3Client.DeleteFile(key); delErr != nil {
			log.WithContext(ctx).WithField("error", delErr.Error()).Warn("[reportService.upload] failed to remove orphaned upload")
		}
		return "", report.ErrUploadFailed
	}

	return url, nil
}

// Open resolves fileName inside the output directory. Only reports named after sessionID
// are served.
func (s *reportService) Open(sessionID string, fileName string) (string, error) {
	if fileName == "" || fileName != filepath.Base(fileName) || strings.Contains(fileName, "..") ||
		filepath.Ext(fileName) != ".pdf" {
		return "", report.ErrInvalidFileName
	}

	if !strings.HasPrefix(fileName, reportPkg.FilePrefix(sessionID)) {
		return "", report.ErrForbidden
	}

	path := filepath.Join(s.exporter.OutputDir(), fileName)
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", report.ErrReportNotFound
		}
		return "", report.ErrInternalServerError
	}
	if info.IsDir() {
		return "", report.ErrReportNotFound
	}

	return path, nil
}
