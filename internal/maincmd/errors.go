package maincmd

import "errors"

// errIO wraps a file-read failure so Main can map it to exit code 74
// instead of the 65 used for compile/runtime errors.
var errIO = errors.New("i/o error")

type ioError struct {
	err error
}

func (e *ioError) Error() string { return e.err.Error() }
func (e *ioError) Unwrap() error { return errIO }

func wrapIOError(err error) error {
	if err == nil {
		return nil
	}
	return &ioError{err: err}
}
