package response

import (
	"errors"
	"net/http"

	"stagefront/internal/upstream"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errs interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errs,
	})
}

// RespondUpstreamError maps a transport-layer failure to the standard envelope.
// Upstream HTTP errors keep their status code; network failures become 502.
func RespondUpstreamError(c *gin.Context, message string, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		RespondJSON(c, "error", apiErr.Status, message, nil, apiErr.Message)
		return
	}
	if errors.Is(err, upstream.ErrNetwork) {
		RespondJSON(c, "error", http.StatusBadGateway, message, nil, "network error")
		return
	}
	RespondJSON(c, "error", http.StatusInternalServerError, message, nil, err.Error())
}
