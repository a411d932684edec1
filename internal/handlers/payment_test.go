package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCodesUnique(t *testing.T) {
	seen := make(map[int64]struct{}, 5000)
	for i := 0; i < 5000; i++ {
		code := newOrderCode()
		_, dup := seen[code]
		require.False(t, dup, "duplicate order code %d", code)
		seen[code] = struct{}{}

		assert.Positive(t, code)
		assert.Less(t, code, int64(1)<<53)
	}
}
