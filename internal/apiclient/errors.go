package apiclient

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind enumerates every failure the pipeline can report.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindNetworkFailure
	KindInvalidResponse
	KindUnauthorized
	KindNotFound
	KindClientError
	KindServerError
	KindNoData
	KindEncodingFailure
	KindDecodingFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindNetworkFailure:
		return "network_failure"
	case KindInvalidResponse:
		return "invalid_response"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindClientError:
		return "client_error"
	case KindServerError:
		return "server_error"
	case KindNoData:
		return "no_data"
	case KindEncodingFailure:
		return "encoding_failure"
	case KindDecodingFailure:
		return "decoding_failure"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by Client. It is a comparable value:
// two errors are equal when kind and payload match, so errors.Is works against
// the sentinels below and against constructed values like ClientError(422).
type Error struct {
	Kind Kind
	// StatusCode is set for KindClientError and KindServerError.
	StatusCode int
	// Detail is set for KindNetworkFailure.
	Detail string
}

var (
	ErrInvalidURL      = Error{Kind: KindInvalidURL}
	ErrInvalidResponse = Error{Kind: KindInvalidResponse}
	ErrUnauthorized    = Error{Kind: KindUnauthorized}
	ErrNotFound        = Error{Kind: KindNotFound}
	ErrNoData          = Error{Kind: KindNoData}
	ErrEncodingFailure = Error{Kind: KindEncodingFailure}
	ErrDecodingFailure = Error{Kind: KindDecodingFailure}
	ErrUnknown         = Error{Kind: KindUnknown}
)

func NetworkFailure(detail string) Error {
	return Error{Kind: KindNetworkFailure, Detail: detail}
}

func ClientError(status int) Error {
	return Error{Kind: KindClientError, StatusCode: status}
}

func ServerError(status int) Error {
	return Error{Kind: KindServerError, StatusCode: status}
}

func (e Error) Error() string {
	switch e.Kind {
	case KindNetworkFailure:
		return fmt.Sprintf("api: network failure: %s", e.Detail)
	case KindClientError, KindServerError:
		return fmt.Sprintf("api: %s (status %d)", e.Kind, e.StatusCode)
	default:
		return "api: " + e.Kind.String()
	}
}

// Message is the text shown to the player.
func (e Error) Message() string {
	switch e.Kind {
	case KindInvalidURL:
		return "The request address is invalid."
	case KindNetworkFailure:
		return "Network error: " + e.Detail
	case KindInvalidResponse:
		return "The server sent an invalid response."
	case KindUnauthorized:
		return "You need to sign in again."
	case KindNotFound:
		return "The requested item was not found."
	case KindClientError:
		return fmt.Sprintf("The request was rejected (code %d).", e.StatusCode)
	case KindServerError:
		return fmt.Sprintf("The server is having trouble (code %d). Try again later.", e.StatusCode)
	case KindNoData:
		return "The server returned no data."
	case KindEncodingFailure:
		return "Could not prepare the request."
	case KindDecodingFailure:
		return "Could not read the server response."
	default:
		return "Something went wrong."
	}
}

// KindOf returns the kind of the first Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// Message renders any error for display, preferring the Error wording.
func Message(err error) string {
	var apiErr Error
	if errors.As(err, &apiErr) {
		return apiErr.Message()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// Classify maps an HTTP status code onto the taxonomy. ok is true only for
// 2xx, where the body should be decoded.
func Classify(status int) (err Error, ok bool) {
	switch {
	case status >= 200 && status <= 299:
		return Error{}, true
	case status == http.StatusUnauthorized:
		return ErrUnauthorized, false
	case status == http.StatusNotFound:
		return ErrNotFound, false
	case status >= 400 && status <= 499:
		return ClientError(status), false
	case status >= 500 && status <= 599:
		return ServerError(status), false
	default:
		return ErrUnknown, false
	}
}
