package log

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	contextPkg "MoodMate/pkg/context"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	logger *logrus.Logger
	once   sync.Once
)

type Fields = logrus.Fields

// NewLogger returns the process wide logger. LOG_LEVEL picks the level (debug by default),
// LOG_DIR the directory of the rotating file sink, which is off when APP_ENV=test.
func NewLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()

		level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
		if err != nil {
			level = logrus.DebugLevel
		}
		logger.SetLevel(level)

		logger.SetFormatter(&formatter.Formatter{
			NoColors:        false,
			TimestampFormat: "02 Jan 06 - 15:04",
			HideKeys:        false,
			CallerFirst:     true,
			FieldsOrder:     []string{"request_id", "session_id", "operation", "path"},
			CustomCallerFormatter: func(f *runtime.Frame) string {
				s := strings.Split(f.Function, ".")
				funcName := s[len(s)-1]
				return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
			},
		})

		writers := []io.Writer{os.Stderr}

		if os.Getenv("APP_ENV") != "test" {
			logDir := os.Getenv("LOG_DIR")
			if logDir == "" {
				logDir = "./storage/logs"
			}
			fileWriter := &lumberjack.Logger{
				Filename:   filepath.Join(logDir, fmt.Sprintf("moodmate-%s.log", time.Now().Format("2006-01-02"))),
				LocalTime:  true,
				Compress:   true,
				MaxSize:    100,
				MaxAge:     7,
				MaxBackups: 3,
			}
			writers = append(writers, fileWriter)
		}

		logger.SetOutput(io.MultiWriter(writers...))
		logger.SetReportCaller(true)
	})

	return logger
}

func withFields(fields Fields) *logrus.Entry {
	if fields == nil {
		fields = Fields{}
	}
	return NewLogger().WithFields(fields)
}

func Debug(fields Fields, msg string) {
	withFields(fields).Debug(msg)
}

func Info(fields Fields, msg string) {
	withFields(fields).Info(msg)
}

func Warn(fields Fields, msg string) {
	withFields(fields).Warn(msg)
}

func Error(fields Fields, msg string) {
	withFields(fields).Error(msg)
}

// ErrorWithTraceID logs msg and returns the id a client can quote back. The request id is
// reused when present.
func ErrorWithTraceID(fields Fields, msg string) string {
	if fields == nil {
		fields = Fields{}
	}

	traceID, _ := fields["request_id"].(string)
	if traceID == "" || traceID == "unknown" {
		id, err := uuid.NewRandom()
		if err != nil {
			traceID = "unknown"
		} else {
			traceID = id.String()
		}
	}

	fields["trace_id"] = traceID
	withFields(fields).Error(msg)

	return traceID
}

func Fatal(fields Fields, msg string) {
	withFields(fields).Fatal(msg)
}

// WithContext returns an entry tagged with the request and session ids found in ctx.
func WithContext(ctx context.Context) *logrus.Entry {
	fields := Fields{"request_id": "unknown"}
	if ctx != nil {
		fields["request_id"] = contextPkg.GetRequestID(ctx)
		if sid, ok := contextPkg.GetSessionID(ctx); ok {
			fields["session_id"] = sid
		}
	}
	return NewLogger().WithFields(fields)
}
