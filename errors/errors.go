package errors

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	ErrWorkerPanic        = fmt.Errorf("worker panic")
	ErrEmptyContent       = fmt.Errorf("message content is empty")
	ErrContentTooLong     = fmt.Errorf("message content is too long")
	ErrActionNotAllowed   = fmt.Errorf("action not allowed by current plan")
	ErrNotParticipant     = fmt.Errorf("user is not a participant of the conversation")
	ErrUnknownAction      = fmt.Errorf("unknown plan action")
	ErrInvalidToken       = fmt.Errorf("invalid access token")
	ErrInvalidRecord      = fmt.Errorf("invalid record")
	ErrEmptyWords         = fmt.Errorf("no words have been found")
	ErrOnlyTermFiles      = fmt.Errorf("terms directory contains directories")
	ErrChannelClosed      = fmt.Errorf("realtime channel closed")
	ErrSubscriptionFailed = fmt.Errorf("realtime subscription refused")
	ErrMissingColumn      = fmt.Errorf("csv header is missing a column")
	ErrInvalidRow         = fmt.Errorf("invalid csv row")
	ErrNoCheckoutURL      = fmt.Errorf("checkout did not return an url")
	ErrUnsupportedFile    = fmt.Errorf("unsupported file type")
)

// Backend builds a structured backend error carrying a code and a message.
func Backend(code codes.Code, format string, args ...any) error {
	return status.Errorf(code, format, args...)
}

// Code extracts the backend code of err, codes.Unknown when err carries none.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if s, ok := status.FromError(err); ok {
		return s.Code()
	}
	return codes.Unknown
}

// Message returns the human-readable part of a backend error.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if s, ok := status.FromError(err); ok {
		return s.Message()
	}
	return err.Error()
}

func IsNotFound(err error) bool {
	return Code(err) == codes.NotFound
}
