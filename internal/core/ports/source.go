// internal/core/ports/source.go
package ports

import (
	"context"
	"time"

	"exposechain/internal/core/domain"
)

// Source es el port primario para los adapters de lookup en ExposeChain.
// Cada adapter (DNS, WHOIS, SSL, geolocalización) implementa esta interfaz.
type Source interface {
	// Name retorna el nombre único del adapter (ej: "dns", "whois")
	Name() string

	// Kind retorna el tipo de lookup que realiza el adapter
	Kind() domain.SourceKind

	// NeedsSocket indica si el adapter abre conexiones de red salientes
	// hacia el target (relevante para la política de bloqueo SSRF)
	NeedsSocket() bool

	// Lookup ejecuta la consulta contra el target. El payload retornado
	// es el tipo concreto del adapter (*domain.DNSRecords, *domain.WhoisInfo,
	// *domain.CertInfo o *domain.GeoInfo).
	Lookup(ctx context.Context, target domain.Target) (any, error)

	// Close libera recursos del adapter (conexiones, clientes)
	Close() error
}

// SourceConfig contiene la configuración específica de un adapter.
type SourceConfig struct {
	// Enabled indica si el adapter está habilitado
	Enabled bool

	// Timeout tiempo máximo por lookup individual
	Timeout time.Duration

	// Custom configuración específica del adapter (resolvers, endpoints, puertos)
	Custom map[string]interface{}
}

// DefaultSourceConfig retorna una configuración por defecto.
func DefaultSourceConfig() SourceConfig {
	return SourceConfig{
		Enabled: true,
		Timeout: 10 * time.Second,
		Custom:  make(map[string]interface{}),
	}
}

// SourceFactory es una función que crea una instancia de Source.
type SourceFactory func(cfg SourceConfig) (Source, error)

// SourceMetadata contiene metadatos sobre un adapter.
type SourceMetadata struct {
	Name        string
	Description string
	Kind        domain.SourceKind
	NeedsSocket bool

	// SupportsIPs indica si el adapter acepta targets IP además de dominios
	SupportsIPs bool

	// SupportsDomains indica si el adapter acepta dominios
	SupportsDomains bool
}

// Supports indica si el adapter puede consultar el tipo de target dado.
func (m SourceMetadata) Supports(kind domain.TargetKind) bool {
	if kind.IsIP() {
		return m.SupportsIPs
	}
	return m.SupportsDomains
}
