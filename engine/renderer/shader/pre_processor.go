// pre_processor.go implements the Oxy WGSL shader pre-processor. It scans shader
// source code for //@oxy:include lines and replaces each with the WGSL struct
// definition embedded by the Go package that owns the matching GPU type, so the
// CPU-side layout and the shader-side layout come from one file.
package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/oxy-dpr/engine/camera"
	"github.com/Carmen-Shannon/oxy-dpr/engine/light"
	"github.com/Carmen-Shannon/oxy-dpr/engine/model"
	"github.com/Carmen-Shannon/oxy-dpr/engine/renderer/material"
)

// directivePrefix marks a pre-processor line. It must start the line, after optional whitespace.
const directivePrefix = "//@oxy:"

// Include keys understood by the default registry.
const (
	IncludeCamera         = "camera"
	IncludeSpotLight      = "spot_light"
	IncludeModelData      = "model_data"
	IncludeVertex         = "vertex"
	IncludeMaterialParams = "material_params"
	IncludeOverlayRect    = "overlay_rect"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	// registry maps include keys to embedded WGSL struct sources.
	registry map[string]string

	// includes lists the keys expanded by the most recent Process call, in source order.
	includes []string
}

// PreProcessor expands //@oxy:include directives in WGSL source.
type PreProcessor interface {
	// Process replaces every //@oxy:include line with the registered struct source.
	// A key included more than once is emitted only the first time.
	//
	// Parameters:
	//   - source: the raw WGSL shader source code
	//
	// Returns:
	//   - string: the processed WGSL source
	//   - error: an error naming the line of a malformed directive or unknown key
	Process(source string) (string, error)

	// Includes returns the keys expanded during the most recent call to Process.
	//
	// Returns:
	//   - []string: include keys in source order
	Includes() []string
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor whose registry holds every GPU struct the engine defines.
//
// Returns:
//   - PreProcessor: a ready-to-use pre-processor instance
func NewPreProcessor() PreProcessor {
	return &preProcessor{
		registry: map[string]string{
			IncludeCamera:         camera.GPUCameraUniformSource,
			IncludeSpotLight:      light.GPUSpotLightSource,
			IncludeModelData:      model.GPUModelDataSource,
			IncludeVertex:         model.GPUVertexSource,
			IncludeMaterialParams: material.GPUMaterialParamsSource,
			IncludeOverlayRect:    material.GPUOverlayRectSource,
		},
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.includes = p.includes[:0]
	seen := make(map[string]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		rest, ok := strings.CutPrefix(strings.TrimSpace(line), directivePrefix)
		if !ok {
			out = append(out, line)
			continue
		}

		fields := strings.Fields(rest)
		if len(fields) != 2 || fields[0] != "include" {
			return "", fmt.Errorf("line %d: malformed directive %q, want //@oxy:include <key>", i+1, strings.TrimSpace(line))
		}
		key := fields[1]
		src, ok := p.registry[key]
		if !ok {
			return "", fmt.Errorf("line %d: unknown @oxy:include argument %q", i+1, key)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		p.includes = append(p.includes, key)
		out = append(out, strings.TrimRight(src, "\n"))
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Includes() []string {
	return p.includes
}
