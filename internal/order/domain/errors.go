package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not_found")
	ErrInvalidAmount = errors.New("invalid_amount")
)

// PartialBatchError signals that a best-effort batch completed with a
// mix of successes and failures. The embedded report tells callers
// which items landed; nothing is rolled back.
type PartialBatchError struct {
	Failed int
	Total  int
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("partial_batch_failure: %d of %d items failed", e.Failed, e.Total)
}
