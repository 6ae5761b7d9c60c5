package admission

import "github.com/pkg/errors"

// Messages shown to applicants when a status lookup fails.
const (
	MsgInputRequired = "Application number and mobile number are required"
	MsgNotFound      = "Application not found"
	MsgLoadFailed    = "Failed to load application"
	MsgUnexpected    = "Unexpected error while loading application status"
)

// ErrorResult is the payload returned in place of a StatusResult when a lookup fails.
type ErrorResult struct {
	Error string `json:"error"`
}

// NewErrorResult maps an error returned by Service.GetStatus to its public message.
// Errors outside the resolver's taxonomy never leak their detail.
func NewErrorResult(err error) ErrorResult {
	switch errors.Cause(err) {
	case ErrInputRequired:
		return ErrorResult{Error: MsgInputRequired}
	case ErrNotFound:
		return ErrorResult{Error: MsgNotFound}
	case ErrLoadFailed:
		return ErrorResult{Error: MsgLoadFailed}
	default:
		return ErrorResult{Error: MsgUnexpected}
	}
}
