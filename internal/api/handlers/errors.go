package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"signal-backtest/internal/api/models"
	"signal-backtest/internal/data"
	"signal-backtest/internal/model"
)

// errorDetail maps an error to an HTTP status and the response envelope.
func errorDetail(err error) (int, models.ErrorDetail) {
	var exErr *data.ExchangeError
	switch {
	case errors.Is(err, model.ErrInvalidParameter):
		return http.StatusBadRequest, models.ErrorDetail{Code: "INVALID_PARAMETER", Message: err.Error()}
	case errors.Is(err, model.ErrInvalidStrategy):
		return http.StatusBadRequest, models.ErrorDetail{Code: "INVALID_STRATEGY", Message: err.Error()}
	case errors.Is(err, model.ErrEmptySeries):
		return http.StatusBadRequest, models.ErrorDetail{Code: "EMPTY_SERIES", Message: err.Error()}
	case errors.As(err, &exErr):
		status := http.StatusBadGateway
		if exErr.Code == "RATE_LIMIT_EXCEEDED" {
			status = http.StatusTooManyRequests
		}
		return status, models.ErrorDetail{
			Code:    exErr.Code,
			Message: exErr.Error(),
			Details: map[string]interface{}{
				"exchange":    exErr.Exchange,
				"status_code": exErr.StatusCode,
				"retry_after": exErr.RetryAfter,
			},
		}
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, models.ErrorDetail{Code: "TIMEOUT", Message: err.Error()}
	}
	return http.StatusInternalServerError, models.ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()}
}

func writeError(c *gin.Context, err error) {
	status, detail := errorDetail(err)
	c.JSON(status, models.ErrorResponse{Error: detail})
}

func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}
