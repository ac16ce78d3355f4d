package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/exchange_desk/internal/apperrors"
	"github.com/SscSPs/exchange_desk/internal/core/domain"
	"github.com/SscSPs/exchange_desk/internal/dto"
	"github.com/SscSPs/exchange_desk/internal/middleware"
	"github.com/gin-gonic/gin"
)

// respondError writes the {code, message} body for err. fallback is shown for
// server side failures whose message should not reach the client.
func respondError(c *gin.Context, err error, fallback string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: fallback})
		return
	}
	if errors.Is(err, apperrors.ErrSubmissionInFlight) {
		c.JSON(http.StatusConflict, dto.ErrorResponse{Code: "SUBMISSION_IN_FLIGHT", Message: err.Error()})
		return
	}

	kind := apperrors.KindOf(err)
	status := kind.HTTPStatus()
	message := apperrors.MessageOf(err, fallback)
	if status >= http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()), slog.String("kind", string(kind)))
		if kind == apperrors.KindFailure {
			message = fallback
			var apiErr *apperrors.APIError
			if errors.As(err, &apiErr) && apiErr.Status > 0 {
				// upstream rejections carry a message meant for the member
				message = apperrors.MessageOf(err, fallback)
			}
		}
	} else {
		logger.Warn(fallback, slog.String("error", err.Error()), slog.String("kind", string(kind)))
	}
	c.JSON(status, dto.ErrorResponse{Code: string(kind), Message: message})
}

// respondBindError answers a request whose body or query failed validation.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Warn("Invalid request", slog.String("error", err.Error()))
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    string(apperrors.KindValidation),
		Message: "Invalid request format: " + err.Error(),
	})
}

// resultStatus maps a failed submission result onto the status of its error kind.
func resultStatus(result domain.SubmissionResult) int {
	return apperrors.Kind(result.ErrorKind).HTTPStatus()
}
