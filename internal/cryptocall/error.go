package cryptocall

import "fmt"

// CallError wraps a marshaling failure with the call it occurred in. The
// wrapped error is one of the wire package sentinels; a CallError means the
// two ends disagree about the message layout and the connection is not worth
// keeping.
type CallError struct {
	Call CallID
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("%s: %s", e.Call, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// UnknownCallError is reported by a server receiving a call number it was not
// built with.
type UnknownCallError struct {
	Call CallID
}

func (e *UnknownCallError) Error() string {
	return fmt.Sprintf("unknown call: %d", int32(e.Call))
}
