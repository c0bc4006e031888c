package generation

import (
	"errors"
	"fmt"
)

var (
	ErrGenerationTransient = errors.New("transient generation failure")
	ErrGenerationInvalid   = errors.New("generated output failed validation")
	ErrSegmentOutOfRange   = errors.New("segment index out of range")
)

// TransientError wraps a transport or timeout failure from the model
// provider. The caller decides whether to retry the whole operation; the
// generator itself never retries transport failures.
type TransientError struct {
	Provider string
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient generation failure: %v", e.Provider, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

func (e *TransientError) Is(target error) bool { return target == ErrGenerationTransient }

// InvalidResultError reports model output that still failed structural
// validation after the strict-format retry. Raw carries the last reply for
// inspection; retrying with the same prompt is unlikely to help.
type InvalidResultError struct {
	Reason string
	Raw    string
}

func (e *InvalidResultError) Error() string {
	return fmt.Sprintf("generated output failed validation: %s", e.Reason)
}

func (e *InvalidResultError) Is(target error) bool { return target == ErrGenerationInvalid }
