package util

import "testing"

func TestParseBoolEnv(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"false", true, false},
		{"0", true, false},
		{"No", true, false},
		{"off", true, false},
		{"maybe", true, true},
		{"maybe", false, false},
		{"  true  ", false, true},
	}
	for _, tt := range tests {
		t.Setenv("ENROLLBOT_TEST_BOOL", tt.value)
		if got := ParseBoolEnv("ENROLLBOT_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestEnvOrDefault(t *testing.T) {
	t.Setenv("ENROLLBOT_TEST_STR", "")
	if got := EnvOrDefault("ENROLLBOT_TEST_STR", "fallback"); got != "fallback" {
		t.Errorf("got %q", got)
	}
	t.Setenv("ENROLLBOT_TEST_STR", "set")
	if got := EnvOrDefault("ENROLLBOT_TEST_STR", "fallback"); got != "set" {
		t.Errorf("got %q", got)
	}
}
