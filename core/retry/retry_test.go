package retry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDoRetriesUntilSuccess(t *testing.T) {
	attempts := 0
	v, err := Do(context.Background(), 5, func() (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnPermanent(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), 5, func() (int, error) {
		attempts++
		return 0, Permanent(errors.New("validation failed"))
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestDoRespectsAttemptCap(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), 2, func() (int, error) {
		attempts++
		return 0, errors.New("transient")
	})
	assert.Error(t, err)
	assert.Equal(t, 2, attempts)
}
