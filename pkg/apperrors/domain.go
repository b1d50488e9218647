package apperrors

import (
	"net/http"
)

// ErrNotFound converts a repository miss into a 404.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrStateConflict reports a violated state-machine precondition. These are
// answered with 400 so the client shows the message instead of retrying.
func ErrStateConflict(domain, message string) *AppError {
	return New(CodeConflict, domain, message, http.StatusBadRequest)
}

func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// --- Hires ---

var ErrHireNotFound = New(
	CodeNotFound,
	"hire",
	"Hire not found",
	http.StatusNotFound,
)

var ErrWorkerNotFound = New(
	CodeNotFound,
	"hire",
	"Worker not found",
	http.StatusNotFound,
)

var ErrNotHireWorker = New(
	CodeForbidden,
	"hire",
	"Only the assigned worker can perform this action",
	http.StatusForbidden,
)

var ErrNotHireClient = New(
	CodeForbidden,
	"hire",
	"Only the client who created the hire can perform this action",
	http.StatusForbidden,
)

var ErrNotHireParty = New(
	CodeForbidden,
	"hire",
	"You are not a party to this hire",
	http.StatusForbidden,
)

var ErrClientNotEntitled = New(
	CodeForbidden,
	"hire",
	"Your plan does not allow hiring workers",
	http.StatusForbidden,
)

var ErrOnlyClientsCanHire = New(
	CodeForbidden,
	"hire",
	"Only clients can create hires",
	http.StatusForbidden,
)

// --- Review tokens ---

var ErrInvalidReviewToken = New(
	CodeInvalidToken,
	"review",
	"Invalid review link",
	http.StatusBadRequest,
)

var ErrReviewTokenExpired = New(
	CodeTokenExpired,
	"review",
	"This review link has expired",
	http.StatusBadRequest,
)

var ErrReviewWindowClosed = New(
	CodeReviewWindowClosed,
	"review",
	"The review period for this job has ended",
	http.StatusBadRequest,
)

var ErrAlreadyReviewed = New(
	CodeAlreadyReviewed,
	"review",
	"This job has already been reviewed",
	http.StatusBadRequest,
)

var ErrHireNotCompleted = New(
	CodeValidationFailed,
	"review",
	"The job has not been completed yet",
	http.StatusBadRequest,
)

// --- Notifications ---

var ErrNotificationNotFound = New(
	CodeNotFound,
	"notification",
	"Notification not found",
	http.StatusNotFound,
)
