package costs

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is matched by every EmptyInputError
var ErrEmptyInput = errors.New("empty input")

// EmptyInputError reports that an operation needed at least one dated record
// to anchor its date math and received none.
type EmptyInputError struct {
	Op string
}

func (e EmptyInputError) Error() string {
	return fmt.Sprintf("%s: no cost records to anchor on", e.Op)
}

// Is makes errors.Is(err, ErrEmptyInput) succeed
func (e EmptyInputError) Is(target error) bool {
	return target == ErrEmptyInput
}
