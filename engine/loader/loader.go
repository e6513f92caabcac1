package loader

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-dpr/common"
)

// ErrNoSource is returned when a Source has neither a path nor a generator.
var ErrNoSource = errors.New("texture source has no path or generator")

// Source describes one texture to prepare. When Path is set the file is decoded; if that
// fails, or Path is empty, Generate produces the pixels instead.
type Source struct {
	// Name is the cache key. Defaults to Path when empty.
	Name string

	// Path is an optional PNG or JPEG file.
	Path string

	// Generate draws the texture procedurally.
	Generate Generator
}

func (s Source) key() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Path
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	textureCache map[string]*common.TextureStagingData

	file       loaderBackend
	procedural loaderBackend

	pool    worker.DynamicWorkerPool
	workers int
}

// Loader prepares texture pixels for GPU upload and caches them by name. Decoding and
// procedural drawing run on a worker pool so several textures load in parallel.
type Loader interface {
	// Load prepares a single texture, returning the cached copy if one exists.
	//
	// Parameters:
	//   - src: the texture to prepare
	//
	// Returns:
	//   - *common.TextureStagingData: RGBA pixels ready for upload
	//   - error: error if neither the file nor the generator produced pixels
	Load(src Source) (*common.TextureStagingData, error)

	// LoadAll prepares every source in parallel. Results are in the same order as srcs.
	//
	// Parameters:
	//   - srcs: the textures to prepare
	//
	// Returns:
	//   - []*common.TextureStagingData: one entry per source
	//   - error: the joined errors of every source that failed
	LoadAll(srcs ...Source) ([]*common.TextureStagingData, error)

	// Get retrieves a cached texture by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *common.TextureStagingData: the cached texture or nil
	Get(name string) *common.TextureStagingData
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the options applied.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		textureCache: make(map[string]*common.TextureStagingData),
		file:         newFileLoaderBackend(),
		procedural:   newProceduralLoaderBackend(),
		workers:      max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(l)
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, 16, 1*time.Second)
	return l
}

func (l *loader) Load(src Source) (*common.TextureStagingData, error) {
	key := src.key()
	if cached := l.Get(key); cached != nil {
		return cached, nil
	}

	tex, err := l.prepare(src)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.textureCache[key] = tex
	l.mu.Unlock()
	return tex, nil
}

// prepare runs the file backend and falls back to the procedural one.
func (l *loader) prepare(src Source) (*common.TextureStagingData, error) {
	if src.Path == "" && src.Generate == nil {
		return nil, fmt.Errorf("%q: %w", src.key(), ErrNoSource)
	}

	if src.Path != "" {
		tex, err := l.file.Load(src)
		if err == nil {
			return tex, nil
		}
		if src.Generate == nil {
			return nil, fmt.Errorf("failed to load %s: %w", src.Path, err)
		}
		log.Printf("[Loader] %v, drawing %q instead", err, src.key())
	}

	tex, err := l.procedural.Load(src)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %q: %w", src.key(), err)
	}
	return tex, nil
}

func (l *loader) LoadAll(srcs ...Source) ([]*common.TextureStagingData, error) {
	out := make([]*common.TextureStagingData, len(srcs))
	errs := make([]error, len(srcs))

	// A WaitGroup gives the barrier; pool.Wait would block until workers idle out.
	var wg sync.WaitGroup
	for i, src := range srcs {
		wg.Add(1)
		l.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				out[i], errs[i] = l.Load(src)
				return nil, nil
			},
		})
	}
	wg.Wait()

	return out, errors.Join(errs...)
}

func (l *loader) Get(name string) *common.TextureStagingData {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textureCache[name]
}
