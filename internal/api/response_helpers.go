// internal/api/response_helpers.go
package api

import (
	"net/http"
	"strings"
	"time"

	apperrors "github.com/Corphon/NarrativeDNA/internal/errors"
	"github.com/Corphon/NarrativeDNA/internal/utils"
	"github.com/gin-gonic/gin"
)

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseHelper 响应助手类
type ResponseHelper struct {
	metrics *utils.AnalysisMetrics
}

// NewResponseHelper 创建响应助手
func NewResponseHelper(metrics *utils.AnalysisMetrics) *ResponseHelper {
	return &ResponseHelper{metrics: metrics}
}

// Success 成功响应
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	rh.respond(c, http.StatusOK, data, message)
}

func (rh *ResponseHelper) respond(c *gin.Context, status int, data interface{}, message []string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: requestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(status, response)
}

// internalErrorMessage replaces the text of every 5xx error sent to clients.
const internalErrorMessage = "Failed to process request"

// sensitiveMarkers trigger a generic message instead of the original one.
var sensitiveMarkers = []string{"api_key", "secret", "token", "password"}

// sanitizeErrorMessage removes sensitive information from error messages
func sanitizeErrorMessage(message string) string {
	lower := strings.ToLower(message)
	for _, marker := range sensitiveMarkers {
		if strings.Contains(lower, marker) {
			return "An internal error occurred"
		}
	}
	return message
}

// Error 错误响应
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	apiError := &APIError{
		Code:    errorCode,
		Message: sanitizeErrorMessage(message),
	}
	if len(details) > 0 {
		apiError.Details = sanitizeErrorMessage(details[0])
	}

	c.JSON(statusCode, &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: requestID(c),
	})
}

// BadRequest 400错误响应
func (rh *ResponseHelper) BadRequest(c *gin.Context, code, message string, details ...string) {
	rh.Error(c, http.StatusBadRequest, code, message, details...)
}

// NotFound 404错误响应
func (rh *ResponseHelper) NotFound(c *gin.Context, code, message string, details ...string) {
	rh.Error(c, http.StatusNotFound, code, message, details...)
}

// TooManyRequests 429错误响应
func (rh *ResponseHelper) TooManyRequests(c *gin.Context, message string) {
	rh.Error(c, http.StatusTooManyRequests, ErrorRateLimited, message)
}

// StatusForError maps an application error to its HTTP status and error code.
func StatusForError(err error) (int, string) {
	switch apperrors.TypeOf(err) {
	case apperrors.ErrorTypeValidation:
		return http.StatusBadRequest, ErrorValidation
	case apperrors.ErrorTypeComputation:
		return http.StatusUnprocessableEntity, ErrorComputation
	case apperrors.ErrorTypeNotFound:
		return http.StatusNotFound, ErrorNotFound
	case apperrors.ErrorTypeTimeout:
		return http.StatusInternalServerError, ErrorTimeout
	default:
		return http.StatusInternalServerError, ErrorInternalError
	}
}

// HandleServiceError 将服务层错误转换为HTTP响应
func (rh *ResponseHelper) HandleServiceError(c *gin.Context, component string, err error) {
	status, code := StatusForError(err)
	if rh.metrics != nil {
		rh.metrics.RecordError(strings.ToLower(code), component)
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		utils.GetLogger().Error("Request failed", map[string]interface{}{
			"component":  component,
			"request_id": requestID(c),
			"error":      err.Error(),
		})
		message = internalErrorMessage
	}
	rh.Error(c, status, code, message)
}

// requestID 获取请求ID
func requestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
