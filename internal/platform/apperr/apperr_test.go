package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestKindOf(t *testing.T) {
	if got := KindOf(NotFound("missing")); got != KindNotFound {
		t.Errorf("expected KindNotFound, got %v", got)
	}
	if got := KindOf(errors.New("plain")); got != KindInternal {
		t.Errorf("expected KindInternal for plain error, got %v", got)
	}
	if got := KindOf(nil); got != KindInternal {
		t.Errorf("expected KindInternal for nil, got %v", got)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := Conflict("slot is already taken")
	outer := fmt.Errorf("create appointment: %w", inner)

	if got := KindOf(outer); got != KindConflict {
		t.Errorf("expected KindConflict through wrapping, got %v", got)
	}
	if !IsKind(outer, KindConflict) {
		t.Error("IsKind should match through wrapping")
	}
	if IsKind(outer, KindNotFound) {
		t.Error("IsKind matched the wrong kind")
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindUnavailable, "storage unavailable", cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}
	if err.Error() != "storage unavailable: connection reset" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindBusinessRule, http.StatusUnprocessableEntity},
		{KindConflict, http.StatusConflict},
		{KindAccessDenied, http.StatusForbidden},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindInvalidInput, http.StatusBadRequest},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatus(tc.kind); got != tc.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tc.kind, got, tc.want)
		}
	}
}

func TestKindCode(t *testing.T) {
	if KindConflict.Code() != "conflict" {
		t.Errorf("unexpected code: %s", KindConflict.Code())
	}
	if KindBusinessRule.Code() != "business_rule_violation" {
		t.Errorf("unexpected code: %s", KindBusinessRule.Code())
	}
	if Kind(99).Code() != "internal" {
		t.Errorf("unknown kinds should report internal, got %s", Kind(99).Code())
	}
}

func runErrorHandler(t *testing.T, err error) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	HTTPErrorHandler(zerolog.Nop())(err, c)

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	return rec, body
}

func TestHTTPErrorHandler_TaxonomyError(t *testing.T) {
	rec, body := runErrorHandler(t, BusinessRule("staff is not available on this day"))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", rec.Code)
	}
	if body.Code != "business_rule_violation" {
		t.Errorf("unexpected code: %s", body.Code)
	}
	if body.Message != "staff is not available on this day" {
		t.Errorf("unexpected message: %s", body.Message)
	}
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	rec, body := runErrorHandler(t, echo.NewHTTPError(http.StatusBadRequest, "bad date"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if body.Code != "invalid_input" {
		t.Errorf("unexpected code: %s", body.Code)
	}
}

func TestHTTPErrorHandler_HidesInternalDetail(t *testing.T) {
	rec, body := runErrorHandler(t, errors.New("pq: relation appointment does not exist"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if body.Message != "internal server error" {
		t.Errorf("internal detail leaked to the client: %s", body.Message)
	}
}
