package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(UserID(r.Context())))
	})
}

func serve(h http.Handler, userID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/post/p1", nil)
	if userID != "" {
		req.Header.Set(UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(echoUser())

	assert.Equal(t, "u1", serve(h, " u1 ").Body.String())
	assert.Empty(t, serve(h, "").Body.String())
}

func TestRequireUser(t *testing.T) {
	h := Authenticate(RequireUser(echoUser()))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)

	rec := serve(h, "u1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	h := Authenticate(RequireAdmin([]string{"root"})(echoUser()))

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, "u1").Code)
	assert.Equal(t, http.StatusOK, serve(h, "root").Code)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	h := RequestLogger(logger)(Authenticate(echoUser()))

	rec := serve(h, "u1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	line := buf.String()
	assert.Contains(t, line, `"method":"GET"`)
	assert.Contains(t, line, `"status":200`)
	assert.Contains(t, line, `"userId":"u1"`)
	assert.Contains(t, line, `"requestId":`)
}
