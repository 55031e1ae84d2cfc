package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	Logger = zap.NewNop()
}

func TestAppErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{NewValidationError("start_time", "bad"), http.StatusBadRequest},
		{NewNotFoundError("event", "abc"), http.StatusNotFound},
		{NewUpstreamError("calendar", errors.New("boom")), http.StatusServiceUnavailable},
		{&AppError{Kind: KindInternal}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.err.HTTPStatus(); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.err.Code, tc.want, got)
		}
	}
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewNotFoundError("event", "x"))
	if !IsKind(err, KindNotFound) {
		t.Fatal("expected wrapped not-found to be detected")
	}
	if IsKind(err, KindValidation) {
		t.Fatal("unexpected validation kind")
	}
}

func TestRespondErrorHidesUpstreamDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, NewUpstreamError("calendar", errors.New("secret stack trace")))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret stack trace") {
		t.Fatalf("response leaked downstream error: %s", w.Body.String())
	}
	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Code != "upstream_unavailable" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestRespondErrorNamesField(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, NewValidationError("duration_minutes", "must be positive"))

	var body ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if body.Field != "duration_minutes" || body.Code != "invalid_duration_minutes" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
