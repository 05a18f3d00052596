package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	assert.Empty(t, FromContext(context.Background()))

	ctx := WithRequestID(context.Background(), "abc-123")
	assert.Equal(t, "abc-123", FromContext(ctx))
}

func TestEnsure(t *testing.T) {
	t.Run("keeps existing ID", func(t *testing.T) {
		ctx := WithRequestID(context.Background(), "existing")
		got, id := Ensure(ctx)
		assert.Equal(t, "existing", id)
		assert.Equal(t, ctx, got)
	})

	t.Run("generates UUID", func(t *testing.T) {
		ctx, id := Ensure(context.Background())
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, FromContext(ctx))
	})
}

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantSame bool
	}{
		{name: "no header generates ID", header: "", wantSame: false},
		{name: "valid header propagated", header: "req-42_a.b", wantSame: true},
		{name: "header with spaces replaced", header: "bad id", wantSame: false},
		{name: "header with newline replaced", header: "x\ny", wantSame: false},
		{name: "overlong header replaced", header: strings.Repeat("a", maxIDLength+1), wantSame: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/menu", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.NotEmpty(t, seen)
			assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
			if tt.wantSame {
				assert.Equal(t, tt.header, seen)
			} else {
				_, err := uuid.Parse(seen)
				assert.NoError(t, err)
			}
		})
	}
}
