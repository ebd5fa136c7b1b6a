package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidUUID(t *testing.T) {
	assert.True(t, IsValidUUID("123e4567-e89b-12d3-a456-426614174000"))
	assert.True(t, IsValidUUID("123E4567-E89B-12D3-A456-426614174000"))

	assert.False(t, IsValidUUID(""))
	assert.False(t, IsValidUUID("not-a-uuid"))
	assert.False(t, IsValidUUID("123e4567e89b12d3a456426614174000"))
	assert.False(t, IsValidUUID("123e4567-e89b-12d3-a456-42661417400"))
	assert.False(t, IsValidUUID("123e4567-e89b-12d3-a456-426614174000 "))
	assert.False(t, IsValidUUID("123e4567-e89b-12d3-a456-42661417400g"))
}
