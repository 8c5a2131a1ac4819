package recommendationHandler

import (
	recommendationService "MoodMate/internal/api/recommendation/service"
	"MoodMate/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type RecommendationHandler struct {
	log                   *logrus.Logger
	middleware            middleware.Middleware
	recommendationService recommendationService.IRecommendationService
}

func New(
	log *logrus.Logger,
	middleware middleware.Middleware,
	recommendationService recommendationService.IRecommendationService,
) *RecommendationHandler {
	return &RecommendationHandler{
		log:                   log,
		middleware:            middleware,
		recommendationService: recommendationService,
	}
}

func (h *RecommendationHandler) Start(srv fiber.Router) {
	recommendations := srv.Group("/recommendations")

	recommendations.Get("/:emotion", h.middleware.NewOptionalTokenMiddleware, h.GetRecommendations)
	recommendations.Get("/:emotion/breathing", h.GetBreathingExercise)
}
