package loader

import (
	"github.com/Carmen-Shannon/rig-go/engine/model"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLoadWorkers is an option builder that sets the worker pool size used by
// LoadAll. Defaults to the CPU count.
//
// Parameters:
//   - workers: the number of concurrent load workers
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker count option to a loader
func WithLoadWorkers(workers int) LoaderBuilderOption {
	return func(l *loader) {
		if workers > 0 {
			l.loadWorkers = workers
		}
	}
}

// WithModel is an option builder that pre-populates the model cache with a model.
//
// Parameters:
//   - key: the cache key for the model
//   - model: the model to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the model option to a loader
func WithModel(key string, model model.Model) LoaderBuilderOption {
	return func(l *loader) {
		l.modelCache[key] = model
	}
}
