// Package oops builds errors that carry the call stack of the place they
// were created, so that a failed decode can be traced back through the
// pipeline stage that rejected the input.
package oops

import (
	"fmt"

	"github.com/go-stack/stack"
	"github.com/rs/zerolog"
)

type Error struct {
	Message string
	Wrapped error
	Stack   CallStack
}

func (e *Error) Error() string {
	if e.Wrapped == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Wrapped)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

type CallStack []StackFrame

func (s CallStack) MarshalZerologArray(a *zerolog.Array) {
	for _, frame := range s {
		a.Object(frame)
	}
}

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

func (f StackFrame) MarshalZerologObject(e *zerolog.Event) {
	e.
		Str("file", f.File).
		Int("line", f.Line).
		Str("function", f.Function)
}

// ZerologStackMarshaler is installed as zerolog.ErrorStackMarshaler by the
// logging package. Events built with .Stack().Err(err) then carry the frames
// recorded by New.
var ZerologStackMarshaler = func(err error) interface{} {
	for err != nil {
		if asOops, ok := err.(*Error); ok {
			return asOops.Stack
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil
		}
		err = u.Unwrap()
	}
	return nil
}

// Trace captures the call stack of its caller, minus runtime frames.
func Trace() CallStack {
	return trace(2)
}

func trace(skip int) CallStack {
	calls := stack.Trace().TrimRuntime()
	if skip > len(calls) {
		skip = len(calls)
	}
	calls = calls[skip:]
	frames := make(CallStack, len(calls))
	for i, call := range calls {
		callFrame := call.Frame()
		frames[i] = StackFrame{
			File:     callFrame.File,
			Line:     callFrame.Line,
			Function: callFrame.Function,
		}
	}
	return frames
}

// New wraps an error with a formatted message and the caller's stack.
// wrapped may be nil.
func New(wrapped error, format string, args ...interface{}) error {
	return &Error{
		Message: fmt.Sprintf(format, args...),
		Wrapped: wrapped,
		Stack:   trace(2),
	}
}
