package apperrors

// ErrorCode is a stable machine-readable error identifier returned to clients.
type ErrorCode string

// Generic codes
const (
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeInvalidStatus    ErrorCode = "INVALID_STATUS"

	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInvalidToken ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
)

// Review flow codes. The UI switches on these to tell the user why a link
// no longer works.
const (
	CodeReviewWindowClosed ErrorCode = "REVIEW_WINDOW_CLOSED"
	CodeAlreadyReviewed    ErrorCode = "ALREADY_REVIEWED"
)
