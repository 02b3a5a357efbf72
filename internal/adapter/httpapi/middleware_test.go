package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerAuth(t *testing.T) {
	validToken := "test-token-123"

	tests := []struct {
		name           string
		header         string
		handlerCalled  bool
		expectedStatus int
	}{
		{
			name:           "Valid Token",
			header:         "Bearer test-token-123",
			handlerCalled:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid Token",
			header:         "Bearer wrong-token",
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Header",
			header:         "",
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Scheme",
			header:         "Basic dXNlcjpwYXNz",
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := BearerAuth(validToken)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Equal(t, tt.handlerCalled, handlerCalled)
		})
	}
}
