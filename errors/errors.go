package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v4"
	"github.com/livepeer/clip-api/log"
)

type apiError struct {
	Msg    string `json:"message"`
	Status int    `json:"status"`
	Err    error  `json:"-"`
}

func writeHttpError(w http.ResponseWriter, msg string, status int, err error) apiError {
	var errorDetail string
	if err != nil {
		// Source URLs may be presigned
		errorDetail = log.RedactLogs(err.Error(), " ")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg, "error_detail": errorDetail}); err != nil {
		log.LogNoRequestID("error writing HTTP error", "http_error_msg", msg, "error", err)
	}

	return apiError{msg, status, err}
}

// HTTP Errors
func WriteHTTPNotFound(w http.ResponseWriter, msg string, err error) apiError {
	return writeHttpError(w, msg, http.StatusNotFound, err)
}

func WriteHTTPMethodNotAllowed(w http.ResponseWriter, msg string, err error) apiError {
	return writeHttpError(w, msg, http.StatusMethodNotAllowed, err)
}

func WriteHTTPTooManyRequests(w http.ResponseWriter, msg string, err error) apiError {
	return writeHttpError(w, msg, http.StatusTooManyRequests, err)
}

func WriteHTTPInternalServerError(w http.ResponseWriter, msg string, err error) apiError {
	return writeHttpError(w, msg, http.StatusInternalServerError, err)
}

// WriteHTTPError classifies err and writes the matching status and message
func WriteHTTPError(w http.ResponseWriter, err error) apiError {
	status := HTTPStatus(err)
	var msg string
	if kind, ok := KindOf(err); ok {
		msg = kind.String()
	} else {
		msg = "internal server error"
	}
	return writeHttpError(w, msg, status, err)
}

// Kind classifies a pipeline failure
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindNotFound
	KindProbeFailure
	KindTranscodeFailure
	KindCacheUnavailable
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad request"
	case KindNotFound:
		return "not found"
	case KindProbeFailure:
		return "probe failure"
	case KindTranscodeFailure:
		return "transcode failure"
	case KindCacheUnavailable:
		return "cache unavailable"
	case KindTimeout:
		return "timeout"
	}
	return "unknown"
}

// ClassifiedError carries a Kind alongside the underlying cause
type ClassifiedError struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e ClassifiedError) Error() string {
	if e.Cause == nil {
		return e.Msg
	}
	if e.Msg == "" {
		return e.Cause.Error()
	}
	return fmt.Sprintf("%s: %s", e.Msg, e.Cause)
}

func (e ClassifiedError) Unwrap() error {
	return e.Cause
}

func newClassified(kind Kind, msg string, cause error) error {
	return ClassifiedError{Kind: kind, Msg: msg, Cause: cause}
}

func NewBadRequestError(msg string, cause error) error {
	return newClassified(KindBadRequest, msg, cause)
}

func NewNotFoundError(msg string, cause error) error {
	return newClassified(KindNotFound, msg, cause)
}

func NewProbeFailureError(msg string, cause error) error {
	return newClassified(KindProbeFailure, msg, cause)
}

func NewCacheUnavailableError(msg string, cause error) error {
	return newClassified(KindCacheUnavailable, msg, cause)
}

func NewTimeoutError(msg string, cause error) error {
	return newClassified(KindTimeout, msg, cause)
}

// TranscodeError is a TranscodeFailure that keeps the engine diagnostics
type TranscodeError struct {
	Args   []string
	Stderr string
	Cause  error
}

func (e TranscodeError) Error() string {
	return fmt.Sprintf("transcode failed: %s", e.Cause)
}

func (e TranscodeError) Unwrap() error {
	return e.Cause
}

func NewTranscodeError(args []string, stderr string, cause error) error {
	return TranscodeError{Args: args, Stderr: stderr, Cause: cause}
}

// KindOf returns the classification of the first classified error in err's chain
func KindOf(err error) (Kind, bool) {
	if err == nil {
		return 0, false
	}
	var ce ClassifiedError
	if errors.As(err, &ce) && ce.Kind != 0 {
		return ce.Kind, true
	}
	var te TranscodeError
	if errors.As(err, &te) {
		return KindTranscodeFailure, true
	}
	return 0, false
}

func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

func IsBadRequest(err error) bool       { return Is(err, KindBadRequest) }
func IsNotFound(err error) bool         { return Is(err, KindNotFound) }
func IsProbeFailure(err error) bool     { return Is(err, KindProbeFailure) }
func IsTranscodeFailure(err error) bool { return Is(err, KindTranscodeFailure) }
func IsCacheUnavailable(err error) bool { return Is(err, KindCacheUnavailable) }
func IsTimeout(err error) bool          { return Is(err, KindTimeout) }

// HTTPStatus maps a pipeline error onto the status code surfaced to clients
func HTTPStatus(err error) int {
	kind, ok := KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindProbeFailure:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

type unretriableError struct{ error }

func (e unretriableError) Unwrap() error {
	return e.error
}

// Unretriable returns an error that should be treated as final. This
// effectively means that the error stops backoff retry loops automatically.
func Unretriable(err error) error {
	return backoff.Permanent(unretriableError{err})
}

func IsUnretriable(err error) bool {
	return errors.As(err, &unretriableError{})
}
