// internal/platform/registry/source_registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"exposechain/internal/core/domain"
	"exposechain/internal/core/ports"
	"exposechain/internal/platform/logx"
)

// SourceRegistry gestiona el registro y construcción de adapters de lookup.
// Implementa el patrón Registry + Factory para desacoplar la creación de
// adapters del código de aplicación.
type SourceRegistry struct {
	mu        sync.RWMutex
	factories map[domain.SourceKind]SourceFactory
	metadata  map[domain.SourceKind]ports.SourceMetadata
	logger    logx.Logger
}

// SourceFactory es una función que crea una instancia de Source.
type SourceFactory func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error)

// globalRegistry es la instancia global del registry.
var globalRegistry *SourceRegistry
var once sync.Once

// Global retorna la instancia global del registry. Cada adapter se
// auto-registra aquí desde su init().
func Global() *SourceRegistry {
	once.Do(func() {
		globalRegistry = NewSourceRegistry(logx.New())
	})
	return globalRegistry
}

// NewSourceRegistry crea un nuevo registry de adapters.
func NewSourceRegistry(logger logx.Logger) *SourceRegistry {
	return &SourceRegistry{
		factories: make(map[domain.SourceKind]SourceFactory),
		metadata:  make(map[domain.SourceKind]ports.SourceMetadata),
		logger:    logger.With("component", "source-registry"),
	}
}

// Register registra una factory con su metadata.
func (r *SourceRegistry) Register(kind domain.SourceKind, factory SourceFactory, meta ports.SourceMetadata) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if factory == nil {
		return fmt.Errorf("factory cannot be nil for source %s", kind)
	}
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("source %s is already registered", kind)
	}

	r.factories[kind] = factory
	r.metadata[kind] = meta
	r.logger.Debug("source registered", "kind", kind.String(), "needs_socket", meta.NeedsSocket)

	return nil
}

// Build construye los adapters habilitados según la configuración.
// Un adapter que falla al construirse se omite con un warning; el registry
// solo falla completamente cuando no se pudo construir ninguno.
func (r *SourceRegistry) Build(configs map[domain.SourceKind]ports.SourceConfig, logger logx.Logger) (map[domain.SourceKind]ports.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if configs == nil {
		return nil, fmt.Errorf("configs cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	sources := make(map[domain.SourceKind]ports.Source, len(configs))
	for kind, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		factory, exists := r.factories[kind]
		if !exists {
			r.logger.Warn("source not registered, skipping", "kind", kind.String())
			continue
		}

		source, err := factory(cfg, logger)
		if err != nil {
			r.logger.Warn("failed to build source", "kind", kind.String(), "error", err.Error())
			continue
		}

		sources[kind] = source
		r.logger.Debug("source built", "kind", kind.String())
	}

	if len(sources) == 0 && len(configs) > 0 {
		return nil, domain.ErrNoSourcesAvailable
	}

	logger.Info("sources built", "count", len(sources), "requested", len(configs))
	return sources, nil
}

// List retorna los kinds de todos los adapters registrados, ordenados.
func (r *SourceRegistry) List() []domain.SourceKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]domain.SourceKind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// GetMetadata retorna el metadata de un adapter.
func (r *SourceRegistry) GetMetadata(kind domain.SourceKind) (ports.SourceMetadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, exists := r.metadata[kind]
	return meta, exists
}

// IsRegistered verifica si un adapter está registrado.
func (r *SourceRegistry) IsRegistered(kind domain.SourceKind) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[kind]
	return exists
}

// Clear elimina todos los adapters registrados (útil para testing).
func (r *SourceRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories = make(map[domain.SourceKind]SourceFactory)
	r.metadata = make(map[domain.SourceKind]ports.SourceMetadata)
}
