package template

import (
	"strings"
	"testing"
	"time"

	"trainload/internal/core"
)

func TestSubstitute_NoPlaceholders(t *testing.T) {
	text := "http://localhost:3001"
	result, err := Substitute(text, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != text {
		t.Errorf("expected %q, got %q", text, result)
	}
}

func TestSubstitute_Variables(t *testing.T) {
	vars := core.NewVariables()
	vars.Set("host", "http://localhost:3001")
	vars.Set("page", 1)

	result, err := Substitute("${host}/api/v1/training/list-for-user?page=${page}", vars)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "http://localhost:3001/api/v1/training/list-for-user?page=1" {
		t.Errorf("unexpected result %q", result)
	}
}

func TestSubstitute_EnvironmentVariable(t *testing.T) {
	t.Setenv("TRAINLOAD_TEST_TOKEN", "eyJhbGciOi")

	result, err := Substitute("${env:TRAINLOAD_TEST_TOKEN}", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "eyJhbGciOi" {
		t.Errorf("expected token, got %q", result)
	}
}

func TestSubstitute_MissingValuesAreJoined(t *testing.T) {
	_, err := Substitute("${missing} ${env:TRAINLOAD_DEFINITELY_UNSET}", core.NewVariables())
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, `variable "missing" not found`) {
		t.Errorf("missing variable not reported: %s", msg)
	}
	if !strings.Contains(msg, `env var "TRAINLOAD_DEFINITELY_UNSET" not set`) {
		t.Errorf("missing env var not reported: %s", msg)
	}
}

func TestSubstitute_Functions(t *testing.T) {
	defer func(orig func() time.Time) { now = orig }(now)
	now = func() time.Time { return time.Date(2025, 10, 26, 9, 0, 0, 0, time.UTC) }

	tests := []struct {
		text string
		want string
	}{
		{"${date(2006-01-02)}", "2025-10-26"},
		{"${date(2006-01-02, +2952h)}", "2026-02-26"},
		{"${timestamp()}", "1761469200"},
		{"from=${date(2006-01-02)}&to=x", "from=2025-10-26&to=x"},
	}
	for _, tt := range tests {
		got, err := Substitute(tt.text, nil)
		if err != nil {
			t.Errorf("Substitute(%q): %v", tt.text, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Substitute(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestSubstitute_FunctionError(t *testing.T) {
	_, err := Substitute("${random(10,1)}", nil)
	if err == nil || !strings.Contains(err.Error(), "function random") {
		t.Errorf("expected random() error, got %v", err)
	}
}

func TestSubstitute_UnknownFunctionIsVariableLookup(t *testing.T) {
	_, err := Substitute("${nope()}", core.NewVariables())
	if err == nil || !strings.Contains(err.Error(), `variable "nope()" not found`) {
		t.Errorf("expected variable lookup error, got %v", err)
	}
}

func TestSubstituteMap(t *testing.T) {
	t.Setenv("TRAINLOAD_TEST_TOKEN", "abc")

	got, err := SubstituteMap(map[string]string{
		"Authorization": "Bearer ${env:TRAINLOAD_TEST_TOKEN}",
		"X-Static":      "1",
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["Authorization"] != "Bearer abc" || got["X-Static"] != "1" {
		t.Errorf("unexpected map %v", got)
	}

	if m, err := SubstituteMap(nil, nil); m != nil || err != nil {
		t.Errorf("nil map should pass through, got %v, %v", m, err)
	}

	if _, err := SubstituteMap(map[string]string{"X": "${missing}"}, nil); err == nil {
		t.Error("expected error for missing variable")
	}
}
