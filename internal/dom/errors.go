package dom

import (
	"errors"
	"fmt"
)

// ErrTooManyElements is returned by Parse when the document's element
// count exceeds Options.MaxElemsToParse. errors.Is(err, ErrTooManyElements)
// succeeds against the error TooManyElementsError returns (spec §6, §8
// property 9).
var ErrTooManyElements = errors.New("Aborting parsing document")

// TooManyElementsError formats the oversize-input failure with the exact
// wording spec.md §6 requires, wrapping ErrTooManyElements so callers can
// match it with errors.Is.
func TooManyElementsError(n int) error {
	return fmt.Errorf("%w; %d elements found", ErrTooManyElements, n)
}
