package core_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fcrew-ai/smartmem-go/pkg/core"
)

func TestMemoryErrorFormat(t *testing.T) {
	err := core.NewMemoryError("Remember", core.ErrInvalidArgument)
	assert.Equal(t, "smartmem: Remember: invalid argument", err.Error())
}

func TestMemoryErrorUnwrap(t *testing.T) {
	err := core.NewMemoryError("Get", core.ErrNotFound)

	assert.ErrorIs(t, err, core.ErrNotFound)

	var memErr *core.MemoryError
	assert.ErrorAs(t, err, &memErr)
	assert.Equal(t, "Get", memErr.Op)
}

func TestNewMemoryErrorNil(t *testing.T) {
	assert.NoError(t, core.NewMemoryError("Anything", nil))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		core.ErrNotFound,
		core.ErrInvalidArgument,
		core.ErrInvalidConfig,
		core.ErrCapacityExceeded,
		core.ErrEvictionDeadlock,
		core.ErrEmbeddingUnavailable,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}
