package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/babushkai/saas-marketplace/internal/apperr"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{apperr.Validation("missing required field: name"), http.StatusBadRequest},
		{apperr.Conflict("username already taken"), http.StatusBadRequest},
		{apperr.Unauthenticated("authentication required"), http.StatusUnauthorized},
		{apperr.Forbidden("forbidden"), http.StatusForbidden},
		{apperr.NotFound("product not found"), http.StatusNotFound},
		{apperr.RateLimited("too many requests"), http.StatusTooManyRequests},
		{apperr.Unavailable("database unavailable", errors.New("conn refused")), http.StatusServiceUnavailable},
		{apperr.Internal("boom", errors.New("cause")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, apperr.HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", apperr.Forbidden("forbidden"))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	assert.Equal(t, "forbidden", apperr.PublicMessage(err))
}

func TestPublicMessageHidesInternals(t *testing.T) {
	err := apperr.Internal("failed to create product", errors.New("pq: connection reset"))
	assert.Equal(t, "internal server error", apperr.PublicMessage(err))
	assert.Contains(t, err.Error(), "connection reset")

	assert.Equal(t, "internal server error", apperr.PublicMessage(errors.New("raw")))
	assert.Equal(t, "service temporarily unavailable", apperr.PublicMessage(apperr.Unavailable("db down", nil)))
}
