package ledger

import (
	"errors"

	"github.com/merchstock/backend/internal/domain/shared"
)

// documentNumberAttempts bounds retries when a generated document number
// loses the race to a concurrent insert.
const documentNumberAttempts = 3

// RetryOnDuplicateNumber runs fn, rerunning it when it fails because the
// document number it generated already exists. Numbers are produced by a
// max-scan inside the transaction, so a rerun observes the competing insert
// and moves past its number. Any other error returns immediately, as does
// a duplicate that survives every attempt.
func RetryOnDuplicateNumber(fn func() error) error {
	var err error
	for attempt := 0; attempt < documentNumberAttempts; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
	}
	return err
}
