package reportService

import (
	"MoodMate/internal/api/report"
	"MoodMate/internal/api/session"
	sessionRepository "MoodMate/internal/api/session/repository"
	sessionService "MoodMate/internal/api/session/service"
	"MoodMate/internal/entity"
	reportPkg "MoodMate/pkg/report"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/context"
)

type fakeS3 struct {
	uploaded   []string
	deleted    []string
	presignErr error
}

func (f *fakeS3) UploadReport(_ context.Context, filePath string) (string, error) {
	key := "reports/" + filepath.Base(filePath)
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeS3) PresignUrl(key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://bucket.example.com/" + key + "?signed=1", nil
}

func (f *fakeS3) DeleteFile(key string) error {
	f.deleted = append(f.deleted, key)
	return nil
}

type fixture struct {
	svc       IReportService
	sessions  sessionService.ISessionService
	sessionID string
	outputDir string
}

func newFixture(t *testing.T, upload bool, s3Client *fakeS3) fixture {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	if upload {
		t.Setenv("REPORT_S3_UPLOAD", "true")
	} else {
		t.Setenv("REPORT_S3_UPLOAD", "")
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	dir := t.TempDir()
	exporter, err := reportPkg.New(dir, logger)
	require.NoError(t, err)

	sessions := sessionService.NewSessionService(logger, sessionRepository.NewMemory(time.Hour, logger), time.Hour)
	created, err := sessions.Create(context.Background())
	require.NoError(t, err)

	var svc IReportService
	if s3Client != nil {
		svc = NewReportService(logger, exporter, sessions, s3Client)
	} else {
		svc = NewReportService(logger, exporter, sessions, nil)
	}

	return fixture{svc: svc, sessions: sessions, sessionID: created.SessionID, outputDir: dir}
}

func (f fixture) record(t *testing.T, emotions ...entity.EmotionCategory) {
	t.Helper()
	_, err := f.sessions.Update(context.Background(), f.sessionID, func(ms *entity.MoodSession) error {
		for _, e := range emotions {
			dist := entity.ZeroDistribution()
			dist[e] = 100
			ms.Record(entity.RecordInput{
				Distribution: dist,
				Dominant:     e,
				InputMode:    entity.InputModeText,
				Recommendations: entity.Recommendations{
					Emotion: e,
					Songs:   []entity.RecommendationItem{{Title: "Song", Rationale: "Because", Link: "https://example.com"}},
				},
			})
		}
		return nil
	})
	require.NoError(t, err)
}

func TestExportWithoutHistory(t *testing.T) {
	f := newFixture(t, false, nil)

	_, err := f.svc.Export(context.Background(), f.sessionID, report.ExportRequest{})
	assert.ErrorIs(t, err, session.ErrNoHistory)
}

func TestExportLatestAndByRecord(t *testing.T) {
	f := newFixture(t, false, nil)
	f.record(t, entity.EmotionHappy, entity.EmotionSad)

	res, err := f.svc.Export(context.Background(), f.sessionID, report.ExportRequest{})
	require.NoError(t, err)
	assert.Equal(t, "session_2", res.RecordID)
	assert.True(t, strings.HasPrefix(res.FileName, reportPkg.FilePrefix(f.sessionID)))
	assert.Equal(t, "/api/v1/reports/"+res.FileName, res.DownloadPath)
	assert.Empty(t, res.RemoteURL)
	assert.FileExists(t, filepath.Join(f.outputDir, res.FileName))

	res, err = f.svc.Export(context.Background(), f.sessionID, report.ExportRequest{RecordID: "session_1"})
	require.NoError(t, err)
	assert.Equal(t, "session_1", res.RecordID)

	_, err = f.svc.Export(context.Background(), f.sessionID, report.ExportRequest{RecordID: "session_9"})
	assert.ErrorIs(t, err, session.ErrRecordNotFound)
}

func TestExportUnknownSession(t *testing.T) {
	f := newFixture(t, false, nil)

	_, err := f.svc.Export(context.Background(), "missing", report.ExportRequest{})
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestOpen(t *testing.T) {
	f := newFixture(t, false, nil)
	f.record(t, entity.EmotionFear)

	res, err := f.svc.Export(context.Background(), f.sessionID, report.ExportRequest{})
	require.NoError(t, err)

	path, err := f.svc.Open(f.sessionID, res.FileName)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.outputDir, res.FileName), path)

	other := reportPkg.FileName("someone-else", time.Now(), "01HZZZ")
	require.NoError(t, os.WriteFile(filepath.Join(f.outputDir, other), []byte("%PDF"), 0o644))

	tests := []struct {
		name string
		file string
		want error
	}{
		{name: "other session", file: other, want: report.ErrForbidden},
		{name: "traversal", file: "../" + res.FileName, want: report.ErrInvalidFileName},
		{name: "not a pdf", file: reportPkg.FilePrefix(f.sessionID) + "1.txt", want: report.ErrInvalidFileName},
		{name: "empty", file: "", want: report.ErrInvalidFileName},
		{name: "missing", file: reportPkg.FilePrefix(f.sessionID) + "1.pdf", want: report.ErrReportNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Open(f.sessionID, tt.file)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExportUploadsWhenEnabled(t *testing.T) {
	s3Client := &fakeS3{}
	f := newFixture(t, true, s3Client)
	f.record(t, entity.EmotionHappy)

	res, err := f.svc.Export(context.Background(), f.sessionID, report.ExportRequest{})
	require.NoError(t, err)

	require.Len(t, s3Client.uploaded, 1)
	assert.Equal(t, "reports/"+res.FileName, s3Client.uploaded[0])
	assert.Contains(t, res.RemoteURL, "signed=1")
	require.NotNil(t, res.ExpiresAt)
}

func TestExportRemovesUploadWhenPresignFails(t *testing.T) {
	s3Client := &fakeS3{presignErr: errors.New("denied")}
	f := newFixture(t, true, s3Client)
	f.record(t, entity.EmotionHappy)

	_, err := f.svc.Export(context.Background(), f.sessionID, report.ExportRequest{})
	assert.ErrorIs(t, err, report.ErrUploadFailed)
	assert.Equal(t, s3Client.uploaded, s3Client.deleted)
}
