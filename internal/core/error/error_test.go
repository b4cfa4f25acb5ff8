package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
		{name: "bad request", err: BadRequest(errors.New("query is required")), want: http.StatusBadRequest},
		{name: "method", err: MethodNotAllowed(http.MethodGet), want: http.StatusMethodNotAllowed},
		{name: "wrapped synthesis", err: fmt.Errorf("run: %w", Synthesis(errors.New("quota"))), want: http.StatusInternalServerError},
		{name: "redis", err: WrapRedis(errors.New("conn refused")), want: http.StatusBadGateway},
		{name: "redis nil", err: WrapRedis(redis.Nil), want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusOf(tt.err))
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("quota exceeded")
	err := fmt.Errorf("invoke: %w", Synthesis(cause))

	assert.ErrorIs(t, err, cause)

	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, SynthesisErrorMessage, appErr.Message)
	assert.Equal(t, "quota exceeded", appErr.Details())
}

func TestWrapNil(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))
	assert.NoError(t, WrapPostgres(nil))
	assert.NoError(t, Synthesis(nil))
}
