package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	TraceID string      `json:"trace_id,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondSuccess(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{
		Status:  "success",
		Code:    http.StatusOK,
		Message: message,
		TraceID: c.GetString("trace_id"),
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, message string) {
	c.JSON(code, APIResponse{
		Status:  "error",
		Code:    code,
		Message: message,
		TraceID: c.GetString("trace_id"),
	})
}

type errorMapping struct {
	err     error
	code    int
	message string
}

// Order matters only for errors that wrap one another.
var serviceErrors = []errorMapping{
	{ErrWeakPassword, http.StatusBadRequest, "Password must be at least 6 characters"},
	{ErrInvalidCaptcha, http.StatusBadRequest, "Invalid captcha"},
	{ErrInvalidModule, http.StatusBadRequest, "Invalid module"},
	{ErrInvalidPlan, http.StatusBadRequest, "Invalid plan selected"},
	{ErrInvalidAction, http.StatusBadRequest, "Invalid action"},
	{ErrBadRequest, http.StatusBadRequest, "Invalid request"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{ErrInvalidAPIKey, http.StatusUnauthorized, "Invalid API key"},
	{ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	{ErrInvalidToken, http.StatusUnauthorized, "Invalid or expired token"},
	{ErrSessionInvalid, http.StatusUnauthorized, "Session expired or invalid"},
	{ErrInvalidSignature, http.StatusUnauthorized, "Invalid signature"},
	{ErrAccountBanned, http.StatusForbidden, "Account suspended"},
	{ErrAccountInactive, http.StatusForbidden, "Account inactive"},
	{ErrForbidden, http.StatusForbidden, "Forbidden"},
	{ErrUserNotFound, http.StatusNotFound, "User not found"},
	{ErrPaymentNotFound, http.StatusNotFound, "Payment not found"},
	{ErrNotFound, http.StatusNotFound, "Not found"},
	{ErrUsernameTaken, http.StatusConflict, "Username already taken"},
	{ErrQuotaExceeded, http.StatusTooManyRequests, "Daily search limit exceeded"},
	{ErrNoProviderConfig, http.StatusServiceUnavailable, "Service temporarily unavailable"},
	{ErrGateway, http.StatusBadGateway, "Payment gateway error"},
	{ErrUpstream, http.StatusInternalServerError, "Search provider request failed"},
}

// StatusForError returns the HTTP status and client message for a service error.
func StatusForError(err error) (int, string) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			return m.code, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

func HandleServiceError(c *gin.Context, err error) {
	code, message := StatusForError(err)
	if code >= http.StatusInternalServerError {
		zap.L().Error("unhandled service error",
			zap.Error(err),
			zap.String("path", c.FullPath()),
			zap.String("trace_id", c.GetString("trace_id")))
	}
	RespondError(c, code, message)
}
