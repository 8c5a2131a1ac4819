package detectionHandler

import (
	"MoodMate/internal/api/detection"
	detectionService "MoodMate/internal/api/detection/service"
	recommendationService "MoodMate/internal/api/recommendation/service"
	sessionRepository "MoodMate/internal/api/session/repository"
	sessionService "MoodMate/internal/api/session/service"
	"MoodMate/internal/entity"
	"MoodMate/internal/middleware"
	"MoodMate/pkg/catalog"
	"MoodMate/pkg/utils"
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDetector struct {
	delay time.Duration
}

func (s stubDetector) Detect(context.Context, []byte, float64) ([]entity.Detection, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return []entity.Detection{{
		ClassIndex: 4,
		Category:   entity.EmotionHappy,
		Confidence: 0.8,
		Box:        entity.BoundingBox{X1: 1, Y1: 1, X2: 6, Y2: 6},
	}}, nil
}

func (stubDetector) Close() error { return nil }

type testApp struct {
	app      *fiber.App
	handler  *DetectionHandler
	sessions sessionService.ISessionService
}

func newTestApp(t *testing.T, det stubDetector) testApp {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("JWT_ACCESS_TOKEN_SECRET", "test-secret")
	t.Setenv("DETECTION_CONFIDENCE", "")
	t.Setenv("LIVE_DWELL", "300ms")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	c, err := catalog.Load()
	require.NoError(t, err)

	mw := middleware.New(logger)
	sessions := sessionService.NewSessionService(logger, sessionRepository.NewMemory(time.Hour, logger), time.Hour)
	recs := recommendationService.NewRecommendationService(logger, c, sessions)
	svc := detectionService.NewDetectionService(logger, det, utils.New(), sessions, recs)
	h := New(logger, validator.New(), mw, svc, utils.New())

	app := fiber.New(fiber.Config{
		StrictRouting: true,
		JSONEncoder:   jsoniter.Marshal,
		JSONDecoder:   jsoniter.Unmarshal,
	})
	app.Use(mw.NewRequestIDMiddleware())
	h.Start(app.Group("/api/v1"))

	return testApp{app: app, handler: h, sessions: sessions}
}

func (a testApp) newSession(t *testing.T) (string, string) {
	t.Helper()
	created, err := a.sessions.Create(context.Background())
	require.NoError(t, err)
	return created.SessionID, created.Token
}

func (a testApp) records(t *testing.T, sessionID string) []entity.InputMode {
	t.Helper()
	history, err := a.sessions.History(context.Background(), sessionID)
	require.NoError(t, err)

	modes := make([]entity.InputMode, 0, len(history.Records))
	for _, r := range history.Records {
		modes = append(modes, r.InputMode)
	}
	return modes
}

// serve runs the app on a loopback listener and returns its address.
func (a testApp) serve(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = a.app.Listener(ln) }()
	t.Cleanup(func() { _ = a.app.ShutdownWithTimeout(time.Second) })

	return ln.Addr().String()
}

func dialLive(t *testing.T, addr, token string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/v1/detection/live/ws?token="+token, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readJSON(t *testing.T, conn *websocket.Conn, out interface{}) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(out))
}

func sendFrame(t *testing.T, conn *websocket.Conn) detection.LiveFrameResponse {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.BinaryMessage, []byte("frame")))

	var res detection.LiveFrameResponse
	readJSON(t, conn, &res)
	return res
}

func TestLiveRunFinishesAfterDwell(t *testing.T) {
	a := newTestApp(t, stubDetector{})
	sessionID, token := a.newSession(t)
	conn := dialLive(t, a.serve(t), token)

	for i := 1; i <= 3; i++ {
		res := sendFrame(t, conn)
		assert.Equal(t, "frame", res.Type)
		assert.Equal(t, i, res.Frame)
		assert.Equal(t, entity.EmotionHappy, res.Dominant)
		assert.Equal(t, 100.0, res.Distribution[entity.EmotionHappy])
		assert.Empty(t, res.Error)
	}

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(detection.LiveFinishCommand)))

	late := sendFrame(t, conn)
	assert.Equal(t, 4, late.Frame)

	var result detection.LiveResultResponse
	readJSON(t, conn, &result)
	assert.Equal(t, "result", result.Type)
	assert.Equal(t, 4, result.Result.FramesProcessed)
	assert.Equal(t, entity.EmotionHappy, result.Result.Dominant)
	assert.Equal(t, entity.InputModeWebcam, result.Result.Record.InputMode)
	require.NotNil(t, result.Result.Insights)
	assert.Equal(t, 1, result.Result.Insights.TotalSessions)

	assert.Equal(t, []entity.InputMode{entity.InputModeWebcam}, a.records(t, sessionID))
}

func TestLiveRunRecordedWhenClientClosesDuringDwell(t *testing.T) {
	a := newTestApp(t, stubDetector{})
	sessionID, token := a.newSession(t)
	conn := dialLive(t, a.serve(t), token)

	sendFrame(t, conn)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(detection.LiveFinishCommand)))
	require.NoError(t, conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second)))
	require.NoError(t, conn.Close())

	assert.Eventually(t, func() bool {
		return len(a.records(t, sessionID)) == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, []entity.InputMode{entity.InputModeWebcam}, a.records(t, sessionID))
}

func TestLiveRunDiscardedWithoutFinish(t *testing.T) {
	a := newTestApp(t, stubDetector{})
	sessionID, token := a.newSession(t)
	conn := dialLive(t, a.serve(t), token)

	sendFrame(t, conn)
	require.NoError(t, conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second)))
	require.NoError(t, conn.Close())

	assert.Never(t, func() bool {
		return len(a.records(t, sessionID)) > 0
	}, 500*time.Millisecond, 50*time.Millisecond)
}

func TestLiveRequiresSessionToken(t *testing.T) {
	a := newTestApp(t, stubDetector{})
	addr := a.serve(t)

	_, resp, err := websocket.DefaultDialer.Dial("ws://"+addr+"/api/v1/detection/live/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func imageUpload(t *testing.T, token string) *http.Request {
	t.Helper()

	var frame bytes.Buffer
	require.NoError(t, png.Encode(&frame, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="face.png"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(frame.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/detection/image", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRecordedImageRunIsReturnedPastDeadline(t *testing.T) {
	a := newTestApp(t, stubDetector{delay: 80 * time.Millisecond})
	a.handler.timeouts.image = 20 * time.Millisecond
	sessionID, token := a.newSession(t)

	resp, err := a.app.Test(imageUpload(t, token), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var res detection.RunResponse
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&res))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, entity.EmotionHappy, res.Dominant)
	assert.Equal(t, "session_1", res.Record.ID)
	assert.Equal(t, []entity.InputMode{entity.InputModeImage}, a.records(t, sessionID))
}
