package report

import (
	"MoodMate/pkg/response"
	"net/http"
)

var (
	ErrReportNotFound      = response.NewError(http.StatusNotFound, "report not found")
	ErrForbidden           = response.NewError(http.StatusForbidden, "report belongs to another session")
	ErrInvalidFileName     = response.NewError(http.StatusBadRequest, "invalid report file name")
	ErrUploadFailed        = response.NewError(http.StatusBadGateway, "failed to upload report")
	ErrInternalServerError = response.NewError(http.StatusInternalServerError, "internal server error")
)
