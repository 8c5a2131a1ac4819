package session

import (
	"MoodMate/pkg/response"
	"net/http"
)

var (
	ErrSessionNotFound     = response.NewError(http.StatusNotFound, "session not found or expired")
	ErrRecordNotFound      = response.NewError(http.StatusNotFound, "session record not found")
	ErrNoHistory           = response.NewError(http.StatusNotFound, "no mood history yet")
	ErrSessionBusy         = response.NewError(http.StatusConflict, "session is busy, retry later")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
