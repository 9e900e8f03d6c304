package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleClassify(c *gin.Context) {
	// unconfigured model client fails every call, whatever the body
	if !s.service.Available() {
		s.writeError(c, core.ErrServiceUnavailable)
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		s.writeError(c, &core.ValidationError{Fields: []core.FieldError{{Field: "body", Reason: "could not read request body"}}})
		return
	}

	req, err := core.ParseEmailRequest(raw)
	if err != nil {
		s.writeError(c, err)
		return
	}

	resp, err := s.service.Classify(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, detail := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Info("Request rejected", zap.Int("status", status), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}

// statusFor maps the error taxonomy onto HTTP statuses
func statusFor(err error) (int, string) {
	var (
		validationErr *core.ValidationError
		callErr       *core.UpstreamCallError
		networkErr    *core.UpstreamNetworkError
		protocolErr   *core.UpstreamProtocolError
		decodeErr     *core.UpstreamDecodeError
	)

	switch {
	case errors.Is(err, core.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, "Service unavailable: " + err.Error()
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, validationErr.Error()
	case errors.As(err, &networkErr):
		return http.StatusGatewayTimeout, "Could not reach the classification model: " + networkErr.Error()
	case errors.As(err, &callErr):
		return http.StatusBadGateway, "Classification model request failed: " + callErr.Error()
	case errors.As(err, &protocolErr):
		return http.StatusInternalServerError, "Failed to get structured classification from the model: " + protocolErr.Error()
	case errors.As(err, &decodeErr):
		return http.StatusInternalServerError, "Failed to parse classification details from the model: " + decodeErr.Error()
	default:
		return http.StatusInternalServerError, "An unexpected error occurred during classification"
	}
}
