package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"validation", Invalid("star_rating", "must be between %d and %d", 1, 5), 400, "star_rating: must be between 1 and 5"},
		{"not found", NotFound("submission"), 404, "submission not found"},
		{"wrapped not found", fmt.Errorf("approve: %w", NotFound("submission")), 404, "approve: submission not found"},
		{"conflict", Conflict("submission already approved"), 409, "submission already approved"},
		{"unauthorized", ErrUnauthorized, 401, "Unauthorized"},
		{"fiber client error", fiber.NewError(fiber.StatusRequestEntityTooLarge, "too big"), 413, "too big"},
		{"internal", errors.New("pq: connection refused"), 500, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, msg := Status(tt.err)
			assert.Equal(t, tt.wantCode, code)
			assert.Equal(t, tt.wantMsg, msg)
		})
	}
}

func TestConflictMatches(t *testing.T) {
	err := Conflict("x")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
}
