package stagehttp

import "errors"

var (
	// ErrAlreadyStarted is returned by Server.Start when the server is
	// already running
	ErrAlreadyStarted = errors.New("the server has already been started")

	// ErrNotStarted is returned by Server.Stop when the server is not running
	ErrNotStarted = errors.New("the server has not been started")
)

// ServerError wraps any error raised while starting or stopping a staged
// server, including errors from the underlying server library.  The Op
// field identifies the operation that failed.
type ServerError struct {
	Op  string
	Err error
}

// Error satisfies the error interface
func (se *ServerError) Error() string {
	return "stagehttp: " + se.Op + ": " + se.Err.Error()
}

// Unwrap supports errors.Is and errors.As
func (se *ServerError) Unwrap() error {
	return se.Err
}

func serverError(op string, err error) error {
	if err == nil {
		return nil
	}

	return &ServerError{Op: op, Err: err}
}
