package errors_test

import (
	stderrors "errors"
	"testing"

	appErrors "github.com/paxos-council/council/internal/obs/errors"
	"github.com/paxos-council/council/internal/obs/test"
)

type ErrorsSuite struct {
	*test.Suite
}

func TestErrorsSuite(t *testing.T) {
	test.Run(t, &ErrorsSuite{Suite: test.NewSuite()})
}

func (s *ErrorsSuite) TestAppError() {
	originalErr := stderrors.New("dial tcp: connection refused")

	e := appErrors.New(appErrors.CodeInternal, "peer unreachable", originalErr)

	s.Equal(appErrors.CodeInternal, e.Code)
	s.Equal("peer unreachable", e.Message)
	s.Equal(originalErr, e.Err)
	s.Equal("[INTERNAL] peer unreachable: dial tcp: connection refused", e.Error())
	s.Equal(originalErr, stderrors.Unwrap(e))
}

func (s *ErrorsSuite) TestHelpers() {
	err := stderrors.New("oops")

	invalid := appErrors.InvalidArgument("bad proposal number", err)
	s.Equal(appErrors.CodeInvalidArgument, invalid.Code)

	internal := appErrors.Internal("", nil)
	s.Equal(appErrors.CodeInternal, internal.Code)
	s.Equal("internal error", internal.Message)

	bind := appErrors.Bind("", err)
	s.Equal(appErrors.CodeBind, bind.Code)
	s.Equal("listener bind failed", bind.Message)
}

func (s *ErrorsSuite) TestWrap() {
	original := stderrors.New("root cause")
	wrapped := appErrors.Wrap(original, "context")

	s.Contains(wrapped.Error(), "context: root cause")
	s.Equal(original, stderrors.Unwrap(wrapped))
}

func (s *ErrorsSuite) TestGRPCStatus() {
	invalid := appErrors.InvalidArgument("bad value", nil)
	st := appErrors.GRPCStatus(invalid)
	s.Equal("rpc error: code = InvalidArgument desc = bad value", st.Err().Error())

	bind := appErrors.Bind("address already in use", nil)
	stBind := appErrors.GRPCStatus(bind)
	s.Equal("rpc error: code = Internal desc = address already in use", stBind.Err().Error())

	unknown := stderrors.New("random error")
	stUnknown := appErrors.GRPCStatus(unknown)
	s.Equal("rpc error: code = Unknown desc = random error", stUnknown.Err().Error())
}

func (s *ErrorsSuite) TestIsAndAs() {
	original := appErrors.New(appErrors.CodeTimeout, "election timed out", nil)
	wrapped := appErrors.Wrap(original, "start election")

	var target *appErrors.AppError
	s.True(appErrors.As(wrapped, &target))
	s.Equal(appErrors.CodeTimeout, target.Code)
	s.True(appErrors.Is(wrapped, original))
}
