package yamlutil_test

// Notes:
// - MaxInputSize is a package variable; the oversize test builds input from its
//   current value instead of mutating it, so tests stay parallel-safe.

import (
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-html2pdf/internal/yamlutil"
)

type testConfig struct {
	Styles   []string `yaml:"styles"`
	Timeout  string   `yaml:"timeout"`
	KeepTemp bool     `yaml:"keepTemp"`
}

// ---------------------------------------------------------------------------
// TestDecode - Strict YAML decoding
// ---------------------------------------------------------------------------

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		data       []byte
		dest       any
		wantErr    error
		wantAnyErr bool
		check      func(t *testing.T, v any)
	}{
		{
			name: "valid YAML",
			data: []byte("styles:\n  - a.css\n  - b.css\ntimeout: 45s\nkeepTemp: true\n"),
			dest: &testConfig{},
			check: func(t *testing.T, v any) {
				cfg := v.(*testConfig)
				if len(cfg.Styles) != 2 || cfg.Styles[0] != "a.css" || cfg.Styles[1] != "b.css" {
					t.Errorf("Styles = %v, want [a.css b.css]", cfg.Styles)
				}
				if cfg.Timeout != "45s" {
					t.Errorf("Timeout = %q, want %q", cfg.Timeout, "45s")
				}
				if !cfg.KeepTemp {
					t.Error("KeepTemp = false, want true")
				}
			},
		},
		{
			name:       "unknown field rejected",
			data:       []byte("styles: []\nport: 9000\n"),
			dest:       &testConfig{},
			wantAnyErr: true,
		},
		{
			name:       "malformed YAML",
			data:       []byte("styles: [a.css\n"),
			dest:       &testConfig{},
			wantAnyErr: true,
		},
		{
			name:    "nil data",
			data:    nil,
			dest:    &testConfig{},
			wantErr: yamlutil.ErrNilData,
		},
		{
			name:    "nil destination",
			data:    []byte("timeout: 1s"),
			dest:    nil,
			wantErr: yamlutil.ErrNilDestination,
		},
		{
			name:    "oversized input",
			data:    []byte("timeout: \"" + strings.Repeat("x", yamlutil.MaxInputSize) + "\""),
			dest:    &testConfig{},
			wantErr: yamlutil.ErrInputTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Decode(tt.data, tt.dest)

			if tt.wantErr != nil || tt.wantAnyErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.check != nil {
				tt.check(t, tt.dest)
			}
		})
	}
}
