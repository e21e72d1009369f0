package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func protectedHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthAllowsNonAPIRoutes(t *testing.T) {
	handler := Auth("secret")(protectedHandler())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("health must not require auth, got %d", recorder.Code)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth("secret")(protectedHandler())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/reports", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", recorder.Code)
	}
}

func TestAuthAcceptsBearerToken(t *testing.T) {
	handler := Auth("secret")(protectedHandler())

	request := httptest.NewRequest(http.MethodPost, "/v1/reports", nil)
	request.Header.Set("Authorization", "Bearer secret")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
}

func TestAuthAcceptsQueryTokenOnStreamRoutes(t *testing.T) {
	handler := Auth("secret")(protectedHandler())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/jobs/abc/stream?token=secret", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("stream route must accept the query token, got %d", recorder.Code)
	}

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/v1/jobs/abc?token=secret", nil))
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("non-stream route must reject the query token, got %d", recorder.Code)
	}
}

func TestAuthDisabledWithoutToken(t *testing.T) {
	handler := Auth("")(protectedHandler())

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/v1/reports", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("auth must be disabled without a configured token, got %d", recorder.Code)
	}
}
