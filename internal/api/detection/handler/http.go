package detectionHandler

import (
	detectionService "MoodMate/internal/api/detection/service"
	"MoodMate/internal/middleware"
	"MoodMate/pkg/utils"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type timeouts struct {
	image time.Duration
	video time.Duration
	text  time.Duration
}

var defaultTimeouts = timeouts{
	image: 15 * time.Second,
	video: 2 * time.Minute,
	text:  10 * time.Second,
}

type DetectionHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService
	utils            utils.IUtils
	timeouts         timeouts
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
	utils utils.IUtils,
) *DetectionHandler {
	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		validator:        validator,
		middleware:       middleware,
		utils:            utils,
		timeouts:         defaultTimeouts,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	detection := srv.Group("/detection")

	detection.Post("/image", h.middleware.NewTokenMiddleware, h.DetectImage)
	detection.Post("/video", h.middleware.NewTokenMiddleware, h.DetectVideo)
	detection.Post("/text", h.middleware.NewTokenMiddleware, h.DetectText)

	detection.Use("/live/ws", wsMiddleware)
	detection.Get("/live/ws", h.middleware.NewTokenMiddleware, websocket.New(h.handleLiveWebSocket))
}
