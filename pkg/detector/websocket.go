package detector

import (
	"MoodMate/internal/entity"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
)

var ErrDetectorClosed = errors.New("detector is closed")

type frameRequest struct {
	ImageBase64 string  `json:"image_base64"`
	Conf        float64 `json:"conf"`
}

type websocketDetector struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	closed       bool
	log          *logrus.Logger
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewWebsocketDetector dials the model server once up front so an unreachable server fails
// startup instead of the first request.
func NewWebsocketDetector(url string, log *logrus.Logger) (IDetector, error) {
	d := &websocketDetector{
		url:          url,
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.connectLocked(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *websocketDetector) connectLocked() error {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}

	d.log.WithField("url", d.url).Info("Connecting to emotion detection service")

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(d.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", d.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		if err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(d.writeTimeout)); err != nil {
			d.log.WithError(err).Warn("Error sending pong to detection service")
		}
		return nil
	})

	d.conn = conn
	go d.keepAlive(conn)

	return nil
}

func (d *websocketDetector) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(d.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		d.mu.Lock()
		if d.conn != conn {
			d.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(d.writeTimeout))
		if err != nil {
			d.log.WithError(err).Warn("Ping failed for detection service, marking connection as dead")
			d.conn = nil
			conn.Close()
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
	}
}

// Detect sends one frame and waits for its answer. The lock is held for the whole exchange
// so replies can never be matched to the wrong frame.
func (d *websocketDetector) Detect(ctx context.Context, frame []byte, threshold float64) ([]entity.Detection, error) {
	payload, err := jsoniter.Marshal(frameRequest{
		ImageBase64: base64.StdEncoding.EncodeToString(frame),
		Conf:        threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding frame request: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, ErrDetectorClosed
	}

	if d.conn == nil {
		if err := d.connectLocked(); err != nil {
			return nil, fmt.Errorf("cannot connect to emotion detection service: %w", err)
		}
	}
	conn := d.conn

	if err := conn.SetWriteDeadline(d.deadline(ctx, d.writeTimeout)); err != nil {
		d.dropLocked()
		return nil, fmt.Errorf("error setting write deadline: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		d.dropLocked()
		return nil, fmt.Errorf("error sending frame: %w", err)
	}

	if err := conn.SetReadDeadline(d.deadline(ctx, d.readTimeout)); err != nil {
		d.dropLocked()
		return nil, fmt.Errorf("error setting read deadline: %w", err)
	}

	_, message, err := conn.ReadMessage()
	if err != nil {
		d.dropLocked()
		return nil, fmt.Errorf("error reading detection message: %w", err)
	}

	_ = conn.SetReadDeadline(time.Time{})
	_ = conn.SetWriteDeadline(time.Time{})

	detections, err := parseDetections(message)
	if err != nil {
		return nil, err
	}

	d.log.WithFields(logrus.Fields{
		"frame_size": len(frame),
		"detections": len(detections),
	}).Debug("Received response from emotion detection service")

	return detections, nil
}

func (d *websocketDetector) deadline(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}
	return deadline
}

func (d *websocketDetector) dropLocked() {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}
}

func (d *websocketDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	if d.conn == nil {
		return nil
	}

	_ = d.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(d.writeTimeout),
	)
	err := d.conn.Close()
	d.conn = nil
	return err
}
