package sessionHandler

import (
	sessionService "MoodMate/internal/api/session/service"
	"MoodMate/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type SessionHandler struct {
	log            *logrus.Logger
	middleware     middleware.Middleware
	sessionService sessionService.ISessionService
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	sessionService sessionService.ISessionService,
) *SessionHandler {
	return &SessionHandler{
		log:            log,
		middleware:     middleware,
		sessionService: sessionService,
	}
}

func (h *SessionHandler) Start(srv fiber.Router) {
	sessions := srv.Group("/sessions")

	sessions.Post("", h.CreateSession)
	sessions.Get("/me", h.middleware.NewTokenMiddleware, h.GetSession)
	sessions.Get("/me/history", h.middleware.NewTokenMiddleware, h.GetHistory)
	sessions.Get("/me/insights", h.middleware.NewTokenMiddleware, h.GetInsights)
	sessions.Get("/me/stats", h.middleware.NewTokenMiddleware, h.GetStats)
	sessions.Delete("/me/history", h.middleware.NewTokenMiddleware, h.ClearHistory)
}
