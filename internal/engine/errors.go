package engine

import "errors"

// InputError marks invalid caller input: no stock lengths, no profiles, or no
// parts matching the requested profiles. It is raised before any computation,
// so no partial report ever accompanies it. The HTTP layer maps it to a 4xx.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

// NewInputError builds an InputError with the given message.
func NewInputError(msg string) error {
	return &InputError{Msg: msg}
}

// IsInputError reports whether err is (or wraps) an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
