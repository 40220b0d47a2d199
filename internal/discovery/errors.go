package discovery

import (
	"errors"
	"fmt"
)

// ErrNoIngredients is returned when a search is invoked with an empty
// pantry. This is the one precondition that raises instead of degrading:
// there is nothing meaningful to compute.
var ErrNoIngredients = errors.New("no pantry ingredients provided")

// ErrGenerationInFlight is returned when a web or AI discovery call starts
// while another one is still running. The caller is expected to surface it
// as "a generation is already running"; the in-flight call is unaffected.
var ErrGenerationInFlight = errors.New("a recipe generation is already in progress")

// SourceError wraps a failure of one external recipe source. In web mode
// it is recovered per-source: the failing source contributes zero recipes
// and the others proceed.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
