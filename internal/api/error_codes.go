// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorInvalidJSON   = "INVALID_JSON"
	ErrorRateLimited   = "RATE_LIMIT_EXCEEDED"

	// 分析相关错误
	ErrorValidation  = "VALIDATION_ERROR"
	ErrorComputation = "COMPUTATION_ERROR"
	ErrorTimeout     = "TIMEOUT"

	// 报告相关错误
	ErrorReportNotFound   = "REPORT_NOT_FOUND"
	ErrorReportsDisabled  = "REPORTS_DISABLED"
	ErrorInvalidProjectID = "INVALID_PROJECT_ID"
)
