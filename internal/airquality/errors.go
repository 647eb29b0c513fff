package airquality

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies failures so the transport layer can choose a status code
// without inspecting messages.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindNotFound        Kind = "not_found"
	KindUpstream        Kind = "upstream"
	KindPersistence     Kind = "persistence"
)

// HTTPStatus maps the kind to its HTTP status code.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Exposed reports whether the message of an error of this kind may be shown
// to API callers as-is.
func (k Kind) Exposed() bool {
	return k == KindInvalidArgument || k == KindNotFound || k == KindUpstream
}

// Error is the error type returned by the domain and its adapters.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds an Error of the given kind.
func NewError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func InvalidArgument(msg string) *Error {
	return NewError(KindInvalidArgument, msg, nil)
}

func NotFound(msg string) *Error {
	return NewError(KindNotFound, msg, nil)
}

// Upstream reports a provider failure. detail is surfaced to callers after
// the fixed prefix.
func Upstream(detail string, err error) *Error {
	return NewError(KindUpstream, "Failed to fetch air quality data: "+detail, err)
}

func Persistence(msg string, err error) *Error {
	return NewError(KindPersistence, msg, err)
}

// KindOf returns the kind of the first *Error in err's chain, or "" when err
// is unclassified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Messages shared by every store backend and the query service.
const (
	MsgCoordinatesRequired = "Latitude and Longitude are required"
	MsgCoordinatesNumeric  = "Latitude and Longitude must be numeric"
	MsgZoneRequired        = "Zone is required"
	MsgInvalidPollutant    = "Invalid pollution type. Supported values: 'aqius' or 'aqicn'"
)

// NoDataForZone is the NotFound error for a zone without readings.
func NoDataForZone(zone string) *Error {
	return NotFound("No data found for zone: " + zone)
}
