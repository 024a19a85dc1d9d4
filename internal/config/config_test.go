package config

import (
	"strings"
	"testing"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		want   string
	}{
		{name: "empty", secret: "", want: ""},
		{name: "short fully masked", secret: "abc", want: maskedValue},
		{name: "eight chars fully masked", secret: "12345678", want: maskedValue},
		{name: "long keeps edges", secret: "my_long_secret_key_123", want: "my<" + maskedValue + ">23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := maskSecret(tt.secret); got != tt.want {
				t.Errorf("maskSecret(%q) = %q, want %q", tt.secret, got, tt.want)
			}
		})
	}
}

func TestMarshalJSONMasksPassword(t *testing.T) {
	cfg := Config{PostgresPassword: "super_secret_password"}

	data, err := cfg.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error: %v", err)
	}
	if strings.Contains(string(data), "super_secret_password") {
		t.Errorf("marshaled config leaks password: %s", data)
	}
	if !strings.Contains(string(data), maskedValue) {
		t.Errorf("marshaled config missing mask: %s", data)
	}
}

func TestStringMasksPassword(t *testing.T) {
	cfg := Config{PostgresPassword: "another_secret_value"}

	if s := cfg.String(); strings.Contains(s, "another_secret_value") {
		t.Errorf("String() leaks password: %s", s)
	}
}

func TestFullModelName(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "bare name gets googleai prefix",
			cfg:  Config{Provider: ProviderGemini, ModelName: "gemini-2.5-flash"},
			want: "googleai/gemini-2.5-flash",
		},
		{
			name: "qualified name returned as-is",
			cfg:  Config{Provider: ProviderGemini, ModelName: "googleai/gemini-2.5-pro"},
			want: "googleai/gemini-2.5-pro",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.FullModelName(); got != tt.want {
				t.Errorf("FullModelName() = %q, want %q", got, tt.want)
			}
		})
	}
}
