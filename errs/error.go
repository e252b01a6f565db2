package errs

import (
	"errors"
	"fmt"
	"strings"
)

// CodeError is an error carrying a numeric code. Two CodeErrors match under
// errors.Is when their codes are equal, whatever their descriptions say.
type CodeError interface {
	error
	Code() int32
	Print(extras ...string) CodeError
	Printf(format string, args ...any) CodeError
	Wrap(cause error) CodeError
	Is(error) bool
}

func CreateCodeError(code int32, desc string) CodeError {
	return &codeError{
		Errno: code, // 错误码数字
		Desc:  desc, // 错误描述字符串, 如: TIMER_OVERLOADED
	}
}

// WrapError converts any error into a CodeError, keeping it as the cause.
func WrapError(err error) CodeError {
	if err == nil {
		return nil
	}
	var x *codeError
	if errors.As(err, &x) {
		return x
	}
	return &codeError{Errno: ErrCode_Unknown, Desc: err.Error(), cause: err}
}

type codeError struct {
	Errno int32
	Desc  string
	cause error
}

func (e *codeError) Code() int32 {
	return e.Errno
}

func (e *codeError) Error() string {
	if e.cause != nil && e.cause.Error() != e.Desc {
		return e.Desc + ": " + e.cause.Error()
	}
	return e.Desc
}

func (e *codeError) String() string {
	return fmt.Sprintf("errno: %d, desc: %s", e.Errno, e.Error())
}

func (e *codeError) Unwrap() error {
	return e.cause
}

func (e *codeError) Print(extras ...string) CodeError {
	if len(extras) == 0 {
		return e
	}
	builder := strings.Builder{}
	builder.WriteString(e.Desc)
	for _, extra := range extras {
		builder.WriteByte(',')
		builder.WriteString(extra)
	}
	return &codeError{Errno: e.Errno, Desc: builder.String(), cause: e.cause}
}

func (e *codeError) Printf(format string, args ...any) CodeError {
	if len(format) == 0 {
		return e
	}
	desc := fmt.Sprintf(e.Desc+","+format, args...)
	return &codeError{Errno: e.Errno, Desc: desc, cause: e.cause}
}

func (e *codeError) Wrap(cause error) CodeError {
	return &codeError{Errno: e.Errno, Desc: e.Desc, cause: cause}
}

func (e *codeError) Is(target error) bool {
	if x, ok := target.(*codeError); ok {
		return x.Errno == e.Errno
	}
	return false
}
