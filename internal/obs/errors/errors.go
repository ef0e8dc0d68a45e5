package errors

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Error codes used across the council, fitted to a peer-to-peer protocol
// with no HTTP/RPC surface of its own.
const (
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeInternal        = "INTERNAL"
	CodeBind            = "BIND_FAILED"
	CodeTimeout         = "TIMEOUT"
	CodeDropped         = "DROPPED"
	CodeDecode          = "DECODE_FAILED"
)

// AppError is a custom error type that includes an error code, message, and underlying error.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code string, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func InvalidArgument(msg string, err error) *AppError {
	if msg == "" {
		msg = "invalid argument"
	}
	return New(CodeInvalidArgument, msg, err)
}

func Internal(msg string, err error) *AppError {
	if msg == "" {
		msg = "internal error"
	}
	return New(CodeInternal, msg, err)
}

func Bind(msg string, err error) *AppError {
	if msg == "" {
		msg = "listener bind failed"
	}
	return New(CodeBind, msg, err)
}

func Dropped(msg string, err error) *AppError {
	if msg == "" {
		msg = "message dropped"
	}
	return New(CodeDropped, msg, err)
}

func Decode(msg string, err error) *AppError {
	if msg == "" {
		msg = "decode failed"
	}
	return New(CodeDecode, msg, err)
}

// GRPCStatus maps an AppError onto a gRPC status. cmd/council logs this
// mapped status alongside a bind failure so the process's exit diagnostics
// carry a stable status code even without an RPC server in front of it.
func GRPCStatus(err error) *status.Status {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case CodeInvalidArgument:
			return status.New(codes.InvalidArgument, appErr.Message)
		case CodeBind, CodeInternal:
			return status.New(codes.Internal, appErr.Message)
		case CodeTimeout:
			return status.New(codes.DeadlineExceeded, appErr.Message)
		}
	}
	return status.New(codes.Unknown, err.Error())
}

// Wrap is a utility to wrap an error with a message
func Wrap(err error, msg string) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target, and if so, sets target to that error value and returns true.
func As(err error, target any) bool {
	return errors.As(err, target)
}
