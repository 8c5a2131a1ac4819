package detectionHandler

import (
	"MoodMate/internal/api/detection"
	"MoodMate/internal/middleware"
	contextPkg "MoodMate/pkg/context"
	jwtPkg "MoodMate/pkg/jwt"
	"MoodMate/pkg/log"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/websocket/v2"
	"golang.org/x/net/context"
)

const (
	maxReadTimeout  = 60 * time.Second
	writeTimeout    = 10 * time.Second
	frameTimeout    = 10 * time.Second
	finalizeTimeout = 10 * time.Second
)

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout()
}

func (h *DetectionHandler) writeJSON(c *websocket.Conn, v interface{}) error {
	if err := c.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}
	if err := c.WriteJSON(v); err != nil {
		return err
	}
	return c.SetWriteDeadline(time.Time{})
}

// handleLiveWebSocket runs one live capture. Binary messages are frames, the text message
// "finish" opens the dwell window after which the run is recorded and the result sent.
func (h *DetectionHandler) handleLiveWebSocket(c *websocket.Conn) {
	sessionID, _ := c.Locals(jwtPkg.SessionLocalsKey).(string)
	requestID, _ := c.Locals(middleware.RequestIDKey).(string)
	ctx := contextPkg.WithSessionID(contextPkg.WithRequestID(context.Background(), requestID), sessionID)
	logger := log.WithContext(ctx)

	logger.Info("Live detection WebSocket client connected")
	defer logger.Info("Live detection WebSocket client disconnected")

	var rawConf *float64
	if raw := c.Query("conf"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			_ = h.writeJSON(c, detection.LiveErrorResponse{Type: "error", Error: detection.ErrInvalidConfidence.Error()})
			return
		}
		rawConf = &v
	}
	conf, err := h.detectionService.Confidence(rawConf)
	if err != nil {
		_ = h.writeJSON(c, detection.LiveErrorResponse{Type: "error", Error: err.Error()})
		return
	}

	run := h.detectionService.StartLive(sessionID, conf)
	recorded := false
	defer func() {
		if !recorded {
			run.Abort()
		}
	}()

	c.SetPingHandler(func(data string) error {
		if err := c.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(5*time.Second)); err != nil {
			logger.Errorf("Error sending pong: %v", err)
		}
		return nil
	})

	var dwellUntil time.Time

	for {
		deadline := time.Now().Add(maxReadTimeout)
		if !dwellUntil.IsZero() {
			deadline = dwellUntil
		}
		if err := c.SetReadDeadline(deadline); err != nil {
			logger.Errorf("Error setting read deadline: %v", err)
			return
		}

		messageType, message, err := c.ReadMessage()
		if err != nil {
			// after finish the run is recorded however the stream ends
			if !dwellUntil.IsZero() {
				if !isTimeout(err) {
					logger.Debugf("Live WebSocket closed during dwell window: %v", err)
				}
				break
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("Live WebSocket error: %v", err)
			} else {
				logger.Info("Live WebSocket connection closed")
			}
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			frameCtx, cancel := context.WithTimeout(ctx, frameTimeout)
			res, err := h.detectionService.ProcessLiveFrame(frameCtx, run, message)
			cancel()

			if err != nil {
				logger.Errorf("Error processing live frame: %v", err)
				if writeErr := h.writeJSON(c, detection.LiveErrorResponse{Type: "error", Error: err.Error()}); writeErr != nil {
					return
				}
				continue
			}

			if err := h.writeJSON(c, res); err != nil {
				logger.Errorf("Error writing frame response: %v", err)
				return
			}
		case websocket.TextMessage:
			if strings.TrimSpace(string(message)) != detection.LiveFinishCommand || !dwellUntil.IsZero() {
				logger.Warnf("Ignoring text message %q", string(message))
				continue
			}
			dwellUntil = time.Now().Add(h.detectionService.Dwell())
			logger.Debug("Live run finishing after dwell window")
		default:
			logger.Warnf("Received unexpected message type: %d", messageType)
		}
	}

	finalCtx, cancel := context.WithTimeout(ctx, finalizeTimeout)
	defer cancel()

	recorded = true
	result, err := h.detectionService.FinishLive(finalCtx, run)
	if err != nil {
		logger.Errorf("Error recording live run: %v", err)
		_ = h.writeJSON(c, detection.LiveErrorResponse{Type: "error", Error: err.Error()})
		return
	}

	if err := h.writeJSON(c, detection.LiveResultResponse{Type: "result", Result: result}); err != nil {
		logger.Errorf("Error writing live result: %v", err)
		return
	}

	_ = c.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run recorded"),
		time.Now().Add(5*time.Second))
}
