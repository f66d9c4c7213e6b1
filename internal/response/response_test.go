package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHelpers(t *testing.T) {
	tests := []struct {
		name    string
		write   func(http.ResponseWriter)
		status  int
		success bool
		code    string
	}{
		{"ok", func(w http.ResponseWriter) { OK(w, map[string]int{"id": 1}) }, http.StatusOK, true, ""},
		{"created", func(w http.ResponseWriter) { Created(w, "x") }, http.StatusCreated, true, ""},
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "nope") }, http.StatusBadRequest, false, ""},
		{"coded", func(w http.ResponseWriter) { Coded(w, http.StatusBadRequest, "EMPTY_FILE", "file is empty") }, http.StatusBadRequest, false, "EMPTY_FILE"},
		{"internal", InternalError, http.StatusInternalServerError, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("content type = %q", ct)
			}
			var env Envelope
			if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
				t.Fatal(err)
			}
			if env.Success != tt.success || env.Code != tt.code {
				t.Fatalf("unexpected envelope %+v", env)
			}
		})
	}
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	NoContent(rec)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("got %d with %d body bytes", rec.Code, rec.Body.Len())
	}
}
