package detectionHandler

import (
	"MoodMate/internal/api/detection"
	contextPkg "MoodMate/pkg/context"
	"MoodMate/pkg/handlerUtil"
	jwtPkg "MoodMate/pkg/jwt"
	"MoodMate/pkg/log"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

// formConfidence reads the optional conf form field.
func formConfidence(ctx *fiber.Ctx) (*float64, error) {
	raw := strings.TrimSpace(ctx.FormValue("conf"))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, detection.ErrInvalidConfidence
	}
	return &v, nil
}

func (h *DetectionHandler) DetectImage(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeouts.image)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	sessionID, err := jwtPkg.GetSessionID(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"session_id": sessionID,
	}).Debug("Processing image detection request")

	var (
		frame   []byte
		rawConf *float64
	)

	file, err := ctx.FormFile("image")
	if err == nil {
		h.log.WithFields(log.Fields{
			"request_id": requestID,
			"path":       ctx.Path(),
			"file_name":  file.Filename,
			"file_size":  file.Size,
		}).Debug("Processing file upload")

		if err := h.utils.ValidateImageFile(file); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "validate_image_file")
		}

		frame, err = h.utils.ReadFile(file)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
		}

		rawConf, err = formConfidence(ctx)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_confidence")
		}
	} else {
		var req detection.ImageRequest
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.Handle(ctx, requestID, fiber.NewError(fiber.StatusBadRequest, err.Error()), ctx.Path(), "parse_request_body")
		}

		if err := h.validator.Struct(req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}

		frame, err = h.utils.DecodeBase64Image(req.ImageBase64)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "decode_base64")
		}
		rawConf = req.Conf
	}

	conf, err := h.detectionService.Confidence(rawConf)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_confidence")
	}

	// a recorded run is always reported, so the deadline is only checked up front
	if c.Err() != nil {
		return errHandler.HandleRequestTimeout(ctx)
	}

	res, err := h.detectionService.AnalyzeImage(c, sessionID, frame, conf)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_image")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"dominant":   res.Dominant,
	}).Info("Image detection successful")
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
}

func (h *DetectionHandler) DetectVideo(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeouts.video)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	sessionID, err := jwtPkg.GetSessionID(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return errHandler.Handle(ctx, requestID, detection.ErrNoFrames, ctx.Path(), "parse_multipart_form")
	}

	files := form.File["frames"]
	if len(files) == 0 {
		return errHandler.Handle(ctx, requestID, detection.ErrNoFrames, ctx.Path(), "parse_multipart_form")
	}
	if len(files) > detection.MaxVideoFrames {
		return errHandler.Handle(ctx, requestID, detection.ErrTooManyFrames, ctx.Path(), "parse_multipart_form")
	}

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
		"session_id": sessionID,
		"frames":     len(files),
	}).Debug("Processing video detection request")

	frames := make([][]byte, 0, len(files))
	for _, file := range files {
		if err := h.utils.ValidateImageFile(file); err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "validate_image_file")
		}
		frame, err := h.utils.ReadFile(file)
		if err != nil {
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "read_file")
		}
		frames = append(frames, frame)
	}

	rawConf, err := formConfidence(ctx)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_confidence")
	}
	conf, err := h.detectionService.Confidence(rawConf)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "parse_confidence")
	}

	previewEvery := detection.DefaultPreviewEvery
	if raw := ctx.FormValue("preview_every"); raw != "" {
		previewEvery, err = strconv.Atoi(raw)
		if err != nil || previewEvery < 1 {
			return errHandler.HandleValidationError(ctx, requestID, fiber.NewError(fiber.StatusBadRequest, "preview_every must be a positive integer"), ctx.Path())
		}
	}

	// a recorded run is always reported, so the deadline is only checked up front
	if c.Err() != nil {
		return errHandler.HandleRequestTimeout(ctx)
	}

	res, err := h.detectionService.AnalyzeVideo(c, sessionID, frames, conf, previewEvery)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_video")
	}

	h.log.WithFields(log.Fields{
		"request_id":    requestID,
		"path":          ctx.Path(),
		"dominant":      res.Dominant,
		"frames_failed": res.FramesFailed,
	}).Info("Video detection successful")
	return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
}

func (h *DetectionHandler) DetectText(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeouts.text)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	sessionID, err := jwtPkg.GetSessionID(ctx)
	if err != nil {
		return errHandler.HandleUnauthorized(ctx, requestID, "Unauthorized")
	}

	var req detection.TextRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.Handle(ctx, requestID, fiber.NewError(fiber.StatusBadRequest, err.Error()), ctx.Path(), "parse_request_body")
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	// a recorded run is always reported, so the deadline is only checked up front
	if c.Err() != nil {
		return errHandler.HandleRequestTimeout(ctx)
	}

	res, err := h.detectionService.AnalyzeText(c, sessionID, req.Emotion)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analyze_text")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, res)
}
