package transport

import "errors"

// Errors for registry requests.
//
// Every failure returned by this package wraps exactly one of these, so callers classify with errors.Is.
var (
	// ErrAuthRequired indicates a 401 response to a request sent without a token.
	ErrAuthRequired = errors.New("authentication required")
	// ErrAuthRejected indicates a 401 response to a request sent with a token.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrNotFound indicates a 404 response.
	ErrNotFound = errors.New("not found")
	// ErrConnectionFailed indicates the registry could not be reached.
	ErrConnectionFailed = errors.New("connection failed")
	// ErrTimeout indicates the request did not complete in time.
	ErrTimeout = errors.New("connection timed out")
	// ErrRetriesExhausted indicates the registry kept failing after all retries.
	ErrRetriesExhausted = errors.New("request failed after retries")
	// ErrMalformedResponse indicates a missing header or field, or an unparseable body.
	ErrMalformedResponse = errors.New("malformed server response")
	// ErrUnexpectedStatus indicates a status code the protocol does not define for the request.
	ErrUnexpectedStatus = errors.New("unexpected status code")
)
