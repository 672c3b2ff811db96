package services

import (
	"errors"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

// FormatLinkError converts a link-store failure into a user-facing message.
// Transport status classes get distinct explanations; not-found conditions
// are a recoverable case with their own message rather than the generic
// network-failure one.
func FormatLinkError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, link.ErrExerciseNotFound) || errors.Is(err, link.ErrLinkNotFound) {
		return "Exercise link not found. It may have been removed by another session."
	}

	switch dto.StoreErrorKindOf(err) {
	case dto.StoreErrUnauthorized:
		return "Your session has expired. Please log in again."
	case dto.StoreErrForbidden:
		return "You do not have permission to manage links for this exercise."
	case dto.StoreErrNotFound:
		return "Exercise link not found. It may have been removed by another session."
	case dto.StoreErrTimeout:
		return "The request timed out. Please try again."
	case dto.StoreErrRateLimited:
		return "Too many requests. Please wait a moment and try again."
	case dto.StoreErrUnavailable:
		return "The exercise service is temporarily unavailable. Please try again shortly."
	case dto.StoreErrServer:
		return "The exercise service reported an error. Please try again later."
	case dto.StoreErrNetwork:
		return "Unable to reach the exercise service. Check your connection and try again."
	case dto.StoreErrCanceled:
		return "The request was canceled before it completed."
	case dto.StoreErrInvalid:
		return "The link request was rejected by the exercise service."
	default:
		return "An unexpected error occurred while updating exercise links."
	}
}

// IsRetryable reports whether retrying the failed operation could plausibly
// succeed. Authorization and validation failures are not retryable;
// transient transport faults are.
func IsRetryable(err error) bool {
	switch dto.StoreErrorKindOf(err) {
	case dto.StoreErrTimeout, dto.StoreErrRateLimited, dto.StoreErrUnavailable,
		dto.StoreErrServer, dto.StoreErrNetwork:
		return true
	default:
		return false
	}
}
