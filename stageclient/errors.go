package stageclient

import "errors"

var (
	// ErrDestroyed is returned when a request is created or executed
	// through a destroyed client
	ErrDestroyed = errors.New("the client has been destroyed")

	// ErrExecuted is returned when Execute is invoked twice on the same
	// request.  Requests are single-use.
	ErrExecuted = errors.New("the request has already been executed")

	// ErrBlankName indicates a blank parameter, header or cookie name
	ErrBlankName = errors.New("names must not be blank")
)

// ClientError wraps any error raised at the client boundary, including
// errors from the underlying client library.  The Op field identifies
// the operation that failed.
type ClientError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (ce *ClientError) Error() string {
	return "stageclient: " + ce.Op + ": " + ce.Err.Error()
}

// Unwrap supports errors.Is and errors.As
func (ce *ClientError) Unwrap() error {
	return ce.Err
}

func clientError(op string, err error) error {
	if err == nil {
		return nil
	}

	return &ClientError{Op: op, Err: err}
}
