package recommendationHandler

import (
	"MoodMate/internal/api/recommendation"
	"MoodMate/internal/entity"
	contextPkg "MoodMate/pkg/context"
	"MoodMate/pkg/handlerUtil"
	jwtPkg "MoodMate/pkg/jwt"
	"MoodMate/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *RecommendationHandler) GetRecommendations(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	emotion, _ := entity.ParseEmotionCategory(ctx.Params("emotion"))

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"emotion":    emotion,
	}).Debug("Processing recommendation request")

	sessionID, err := jwtPkg.GetSessionID(ctx)
	if err != nil {
		return errHandler.HandleSuccess(ctx, fiber.StatusOK,
			recommendation.NewRecommendationResponse(h.recommendationService.Select(emotion), false))
	}

	recs, err := h.recommendationService.ForSession(c, emotion, sessionID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "personalize_recommendations")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, recommendation.NewRecommendationResponse(recs, true))
	}
}

func (h *RecommendationHandler) GetBreathingExercise(ctx *fiber.Ctx) error {
	emotion, ok := entity.ParseEmotionCategory(ctx.Params("emotion"))
	if !ok {
		emotion = entity.FallbackEmotion
	}

	return handlerUtil.New(h.log).HandleSuccess(ctx, fiber.StatusOK, recommendation.BreathingResponse{
		Emotion:   emotion,
		Breathing: h.recommendationService.Breathing(emotion),
	})
}
