package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", ErrPostNotFound, http.StatusNotFound},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"invalid", Invalid("bad %s", "input"), http.StatusBadRequest},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"unauthenticated", ErrUnauthenticated, http.StatusUnauthorized},
		{"wrapped", fmt.Errorf("load: %w", ErrCommentNotFound), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := NotFound("comment %s not found", "c1")
	assert.True(t, errors.Is(err, ErrCommentNotFound))
	assert.True(t, IsNotFound(err))
	assert.False(t, errors.Is(err, ErrUnauthenticated))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "post not found", PublicMessage(ErrPostNotFound))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("dynamo exploded")))
	assert.Equal(t, "internal server error", PublicMessage(Wrap(errors.New("x"), CodeInternal, "secret")))
}
