package shader

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func TestPreProcessor_Process(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantErr  string
		contains []string
		includes []string
	}{
		{
			name:     "single include",
			source:   "//@oxy:include camera\nfn f() {}",
			contains: []string{"struct CameraUniform", "fn f() {}"},
			includes: []string{IncludeCamera},
		},
		{
			name:     "indented and repeated",
			source:   "  //@oxy:include overlay_rect\n//@oxy:include overlay_rect",
			contains: []string{"struct OverlayRect"},
			includes: []string{IncludeOverlayRect},
		},
		{
			name:     "plain comments untouched",
			source:   "// @oxy:include camera is documented here",
			contains: []string{"// @oxy:include camera is documented here"},
		},
		{
			name:    "unknown key",
			source:  "\n//@oxy:include shadow",
			wantErr: `line 2: unknown @oxy:include argument "shadow"`,
		},
		{
			name:    "unknown directive",
			source:  "//@oxy:group 0 0 uniform camera camera",
			wantErr: "line 1: malformed directive",
		},
		{
			name:    "missing key",
			source:  "//@oxy:include",
			wantErr: "malformed directive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pp := NewPreProcessor()
			out, err := pp.Process(tt.source)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Process() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Process() unexpected error: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			if strings.Count(out, "struct ") > len(tt.includes) {
				t.Errorf("output repeats a struct:\n%s", out)
			}
			if !slices.Equal(pp.Includes(), tt.includes) {
				t.Errorf("Includes() = %v, want %v", pp.Includes(), tt.includes)
			}
		})
	}
}

func TestEmbeddedShaders(t *testing.T) {
	tests := []struct {
		key, source      string
		vertex, fragment string
		includes         []string
	}{
		{SceneShaderKey, SceneSource, "vs_main", "fs_main",
			[]string{IncludeCamera, IncludeSpotLight, IncludeModelData, IncludeMaterialParams, IncludeVertex}},
		{BlitShaderKey, BlitSource, "vs_blit", "fs_blit", []string{IncludeOverlayRect}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := NewShader(tt.key, tt.source)
			if s.VertexEntryPoint() != tt.vertex || s.FragmentEntryPoint() != tt.fragment {
				t.Errorf("entry points = %q/%q, want %q/%q", s.VertexEntryPoint(), s.FragmentEntryPoint(), tt.vertex, tt.fragment)
			}
			if strings.Contains(s.Source(), directivePrefix) {
				t.Error("processed source still contains directives")
			}
			if !slices.Equal(s.Includes(), tt.includes) {
				t.Errorf("Includes() = %v, want %v", s.Includes(), tt.includes)
			}
			if s.Module() == nil || s.Module().Label != tt.key {
				t.Errorf("Module() label mismatch")
			}
		})
	}
}

func TestParse_NoEntryPoint(t *testing.T) {
	_, err := Parse("empty", "//@oxy:include camera\n// @vertex fn commented_out() {}")
	if !errors.Is(err, ErrNoEntryPoint) {
		t.Fatalf("Parse() error = %v, want ErrNoEntryPoint", err)
	}
}
