package loader

import (
	"github.com/Carmen-Shannon/oxy-dpr/common"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithWorkers sets how many textures are prepared in parallel. Defaults to runtime.NumCPU()-1.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the workers option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithTexture is an option builder that pre-populates the texture cache.
//
// Parameters:
//   - key: the cache key for the texture
//   - tex: the texture to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the texture option to a loader
func WithTexture(key string, tex *common.TextureStagingData) LoaderBuilderOption {
	return func(l *loader) {
		l.textureCache[key] = tex
	}
}
