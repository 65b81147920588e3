package apperror

import (
	"errors"
	"fmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"testing"
)

func TestStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
		kind   Kind
	}{
		{"missing", MissingParameter("src"), http.StatusBadRequest, KindMissingParameter},
		{"invalid", InvalidParameter("w", nil), http.StatusBadRequest, KindInvalidParameter},
		{"unreachable", OriginUnreachable(errors.New("dial tcp")), http.StatusBadGateway, KindOriginUnreachable},
		{"origin 404", OriginFetchFailed(http.StatusNotFound), http.StatusNotFound, KindOriginFetchFailed},
		{"origin 410", OriginFetchFailed(http.StatusGone), http.StatusNotFound, KindOriginFetchFailed},
		{"origin 500", OriginFetchFailed(http.StatusInternalServerError), http.StatusBadGateway, KindOriginFetchFailed},
		{"origin 403", OriginFetchFailed(http.StatusForbidden), http.StatusBadGateway, KindOriginFetchFailed},
		{"too large", OriginTooLarge(10), http.StatusBadRequest, KindOriginTooLarge},
		{"decode", DecodeFailed(errors.New("bad")), http.StatusBadRequest, KindDecodeFailed},
		{"encode", EncodeFailed(errors.New("bad")), http.StatusInternalServerError, KindEncodeFailed},
		{"method", MethodNotAllowed(http.MethodPost), http.StatusMethodNotAllowed, KindMethodNotAllowed},
		{"rate", RateLimited(), http.StatusTooManyRequests, KindRateLimited},
		{"timeout", Timeout(errors.New("deadline")), http.StatusGatewayTimeout, KindTimeout},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError, KindInternal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.err.Status)
			assert.Equal(t, tc.kind, tc.err.Kind)
			assert.NotEmpty(t, tc.err.Error())
		})
	}
}

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("decode stage: %w", DecodeFailed(errors.New("unexpected EOF")))

	got := From(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, KindDecodeFailed, got.Kind)
	assert.True(t, IsKind(wrapped, KindDecodeFailed))
	assert.False(t, IsKind(wrapped, KindEncodeFailed))

	plain := From(errors.New("boom"))
	assert.Equal(t, KindInternal, plain.Kind)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "missing parameter: src", MissingParameter("src").Error())
	assert.Equal(t, "invalid parameter: q", InvalidParameter("q", nil).Error())
	assert.Equal(t, "origin responded with status 503", OriginFetchFailed(503).Error())
	assert.Contains(t, DecodeFailed(errors.New("unexpected EOF")).Error(), "unexpected EOF")
}
