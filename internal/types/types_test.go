package types

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestStringListForms(t *testing.T) {
	cases := map[string][]string{
		`["a.pdf", " ", "b.pdf"]`: {"a.pdf", "b.pdf"},
		`"a.pdf, b.pdf"`:          {"a.pdf", "b.pdf"},
		`"single.pdf"`:            {"single.pdf"},
		`null`:                    nil,
		`""`:                      nil,
	}

	for input, want := range cases {
		var got StringList
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("Unmarshal(%s) failed: %v", input, err)
		}
		if len(got) != len(want) {
			t.Fatalf("Unmarshal(%s): expected %v, got %v", input, want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("Unmarshal(%s)[%d]: expected %q, got %q", input, i, want[i], got[i])
			}
		}
	}
}

func TestStringListRejectsNumbers(t *testing.T) {
	var got StringList
	if err := json.Unmarshal([]byte(`42`), &got); err == nil {
		t.Error("Expected an error for a numeric value")
	}
}

func TestCustomErrorKinds(t *testing.T) {
	cases := []struct {
		err    *CustomError
		status int
		kind   ErrorKind
	}{
		{NotFound("course.not_found", "Course not found"), http.StatusNotFound, KindNotFound},
		{Conflict("enrollment.exists", "Already enrolled"), http.StatusConflict, KindConflict},
		{Unauthorized("session.missing", "No session"), http.StatusUnauthorized, KindUnauthorized},
		{Forbidden("role.admin", "Admins only"), http.StatusForbidden, KindForbidden},
		{ValidationFailed("input", "Invalid", nil), http.StatusBadRequest, KindValidationFailed},
		{Infrastructure("store", errors.New("boom")), http.StatusInternalServerError, KindInfrastructure},
	}

	for _, tc := range cases {
		if tc.err.Code != tc.status {
			t.Errorf("%s: expected status %d, got %d", tc.err.Type, tc.status, tc.err.Code)
		}
		if tc.err.Kind != tc.kind {
			t.Errorf("%s: expected kind %s, got %s", tc.err.Type, tc.kind, tc.err.Kind)
		}
	}
}

func TestInfrastructureUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(Infrastructure("store", cause))

	if !errors.Is(err, cause) {
		t.Error("Expected the cause to be reachable with errors.Is")
	}
	if !IsKind(err, KindInfrastructure) {
		t.Error("Expected infrastructure kind")
	}
	if IsKind(cause, KindInfrastructure) {
		t.Error("A plain error must not report a kind")
	}
}
