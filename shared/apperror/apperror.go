package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind struct {
	s string
}

var (
	KindMissingParameter  = Kind{"missing_parameter"}
	KindInvalidParameter  = Kind{"invalid_parameter"}
	KindOriginUnreachable = Kind{"origin_unreachable"}
	KindOriginFetchFailed = Kind{"origin_fetch_failed"}
	KindOriginTooLarge    = Kind{"origin_too_large"}
	KindDecodeFailed      = Kind{"decode_failed"}
	KindEncodeFailed      = Kind{"encode_failed"}
	KindMethodNotAllowed  = Kind{"method_not_allowed"}
	KindRateLimited       = Kind{"rate_limited"}
	KindTimeout           = Kind{"timeout"}
	KindInternal          = Kind{"internal"}
)

func (k Kind) String() string {
	return k.s
}

// Error is a terminal pipeline failure. Status is the HTTP status it surfaces as.
type Error struct {
	Kind   Kind
	Param  string
	Status int

	// OriginStatus is set for KindOriginFetchFailed.
	OriginStatus int

	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindMissingParameter:
		return fmt.Sprintf("missing parameter: %s", e.Param)
	case KindInvalidParameter:
		if e.Err != nil {
			return fmt.Sprintf("invalid parameter %s: %v", e.Param, e.Err)
		}
		return fmt.Sprintf("invalid parameter: %s", e.Param)
	case KindOriginFetchFailed:
		return fmt.Sprintf("origin responded with status %d", e.OriginStatus)
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func MissingParameter(name string) *Error {
	return &Error{Kind: KindMissingParameter, Param: name, Status: http.StatusBadRequest}
}

func InvalidParameter(name string, err error) *Error {
	return &Error{Kind: KindInvalidParameter, Param: name, Status: http.StatusBadRequest, Err: err}
}

func OriginUnreachable(err error) *Error {
	return &Error{Kind: KindOriginUnreachable, Status: http.StatusBadGateway, Err: err}
}

// OriginFetchFailed mirrors "gone" style origin statuses and reports everything else as a bad gateway.
func OriginFetchFailed(status int) *Error {
	code := http.StatusBadGateway
	if status == http.StatusNotFound || status == http.StatusGone {
		code = http.StatusNotFound
	}
	return &Error{Kind: KindOriginFetchFailed, Status: code, OriginStatus: status}
}

func OriginTooLarge(limit int64) *Error {
	return &Error{
		Kind:   KindOriginTooLarge,
		Status: http.StatusBadRequest,
		Err:    fmt.Errorf("origin body exceeds %d bytes", limit),
	}
}

func DecodeFailed(err error) *Error {
	return &Error{Kind: KindDecodeFailed, Status: http.StatusBadRequest, Err: err}
}

func EncodeFailed(err error) *Error {
	return &Error{Kind: KindEncodeFailed, Status: http.StatusInternalServerError, Err: err}
}

func MethodNotAllowed(method string) *Error {
	return &Error{
		Kind:   KindMethodNotAllowed,
		Status: http.StatusMethodNotAllowed,
		Err:    fmt.Errorf("method %s is not allowed", method),
	}
}

func RateLimited() *Error {
	return &Error{Kind: KindRateLimited, Status: http.StatusTooManyRequests}
}

func Timeout(err error) *Error {
	return &Error{Kind: KindTimeout, Status: http.StatusGatewayTimeout, Err: err}
}

func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Err: err}
}

// From returns err as *Error, wrapping anything unknown as KindInternal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
