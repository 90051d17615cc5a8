package accumulator

import "fmt"

// FormatError reports a buffer whose length does not match the precomputed
// size for the chosen mode and power bound. Raised before any parsing.
type FormatError struct {
	Expected int
	Actual   int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("wrong accumulator size: have %d bytes, want %d", e.Actual, e.Expected)
}

// IoError reports a failed file operation. Contributions are single-shot, so
// there is no retry; the caller reports and exits.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// ArithmeticError reports an identity element where the protocol requires a
// nonzero point. It signals corruption or adversarial input and is never
// defaulted over.
type ArithmeticError struct {
	Vector string
	Index  int
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("%s[%d] is the point at infinity", e.Vector, e.Index)
}
