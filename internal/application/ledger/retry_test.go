package ledger_test

import (
	"testing"

	appledger "github.com/merchstock/backend/internal/application/ledger"
	"github.com/merchstock/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestRetryOnDuplicateNumber(t *testing.T) {
	t.Run("retries until the number is free", func(t *testing.T) {
		calls := 0
		err := appledger.RetryOnDuplicateNumber(func() error {
			calls++
			if calls < 3 {
				return shared.ErrAlreadyExists
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		calls := 0
		err := appledger.RetryOnDuplicateNumber(func() error {
			calls++
			return shared.ErrAlreadyExists
		})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		calls := 0
		err := appledger.RetryOnDuplicateNumber(func() error {
			calls++
			return shared.ErrConcurrencyConflict
		})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.Equal(t, 1, calls)
	})
}
