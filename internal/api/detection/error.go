package detection

import (
	"MoodMate/pkg/response"
	"net/http"
)

var (
	ErrDetectorUnavailable = response.NewError(http.StatusServiceUnavailable, "emotion detector unavailable")
	ErrUnknownEmotion      = response.NewError(http.StatusBadRequest, "unknown emotion")
	ErrInvalidConfidence   = response.NewError(http.StatusBadRequest, "confidence must be between 0.1 and 0.9")
	ErrNoFrames            = response.NewError(http.StatusBadRequest, "no frames uploaded")
	ErrTooManyFrames       = response.NewError(http.StatusBadRequest, "too many frames in one upload")
	ErrRunFinished         = response.NewError(http.StatusConflict, "live run already finished")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
