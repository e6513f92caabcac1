package shader

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"

	"github.com/cogentcore/webgpu/wgpu"
)

// Keys for the shaders the renderer builds its pipelines from.
const (
	SceneShaderKey = "scene"
	BlitShaderKey  = "blit"
)

// SceneSource is the lit mesh shader, before pre-processing.
//
//go:embed assets/scene.wgsl
var SceneSource string

// BlitSource draws a textured rectangle. It is used both to upscale the scene target onto the
// surface and to composite the readout overlay.
//
//go:embed assets/blit.wgsl
var BlitSource string

var (
	// vertexEntryRegex matches the first function marked @vertex.
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches the first function marked @fragment.
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// lineCommentRegex strips // comments before entry points are searched.
	lineCommentRegex = regexp.MustCompile(`//[^\n]*`)
)

// ErrNoEntryPoint is returned when a source declares neither a vertex nor a fragment stage.
var ErrNoEntryPoint = errors.New("shader: no @vertex or @fragment entry point")

// shader is the implementation of the Shader interface.
type shader struct {
	key              string
	source           string
	vertexEntryPoint string
	fragEntryPoint   string
	includes         []string
	module           *wgpu.ShaderModuleDescriptor
}

// Shader is a pre-processed WGSL module ready for pipeline creation.
type Shader interface {
	// Key retrieves the unique identifier for this shader, used as the module label.
	//
	// Returns:
	//   - string: the shader's unique key
	Key() string

	// Source retrieves the pre-processed WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source code of the shader
	Source() string

	// VertexEntryPoint returns the name of the @vertex function, or "" if there is none.
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the @fragment function, or "" if there is none.
	FragmentEntryPoint() string

	// Includes returns the struct keys the pre-processor expanded into this shader.
	Includes() []string

	// Module returns the wgpu.ShaderModuleDescriptor for this shader.
	//
	// Returns:
	//   - *wgpu.ShaderModuleDescriptor: the shader module descriptor containing the WGSL code and label
	Module() *wgpu.ShaderModuleDescriptor
}

var _ Shader = &shader{}

// Parse pre-processes source and locates its entry points.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: raw WGSL containing //@oxy:include directives
//
// Returns:
//   - Shader: the parsed shader
//   - error: a pre-processing error, or ErrNoEntryPoint
func Parse(key, source string) (Shader, error) {
	pp := NewPreProcessor()
	processed, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}

	s := &shader{
		key:      key,
		source:   processed,
		includes: append([]string(nil), pp.Includes()...),
	}
	cleaned := lineCommentRegex.ReplaceAllString(processed, "")
	if m := vertexEntryRegex.FindStringSubmatch(cleaned); m != nil {
		s.vertexEntryPoint = m[1]
	}
	if m := fragmentEntryRegex.FindStringSubmatch(cleaned); m != nil {
		s.fragEntryPoint = m[1]
	}
	if s.vertexEntryPoint == "" && s.fragEntryPoint == "" {
		return nil, fmt.Errorf("shader %s: %w", key, ErrNoEntryPoint)
	}

	s.module = &wgpu.ShaderModuleDescriptor{
		Label: key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	return s, nil
}

// NewShader is like Parse but panics on error. It is meant for the embedded sources.
//
// Parameters:
//   - key: a unique identifier for the shader
//   - source: raw WGSL containing //@oxy:include directives
//
// Returns:
//   - Shader: the parsed shader
func NewShader(key, source string) Shader {
	s, err := Parse(key, source)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragEntryPoint
}

func (s *shader) Includes() []string {
	return s.includes
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}
