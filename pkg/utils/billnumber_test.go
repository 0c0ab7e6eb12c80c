package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBillNumberGenerator_Unique(t *testing.T) {
	gen, err := NewBillNumberGenerator(1)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		n := gen.Next()
		assert.True(t, strings.HasPrefix(n, "BILL-"))
		assert.False(t, seen[n], "duplicate bill number %s", n)
		seen[n] = true
	}
}

func TestBillNumberGenerator_InvalidNode(t *testing.T) {
	_, err := NewBillNumberGenerator(1024)
	assert.Error(t, err)
}
