// internal/core/domain/scan_result.go
package domain

import (
	"fmt"
	"time"
)

// ScanResult representa el resultado completo de un escaneo.
// Invariante: los cuatro campos de lookup están siempre poblados —
// una fuente que falla, expira o no se despacha produce un
// Failure/TimedOut/Skipped explícito, nunca una ausencia.
type ScanResult struct {
	// ID identificador único del escaneo
	ID string

	// Target objetivo validado
	Target Target

	// ScanType profundidad del escaneo
	ScanType ScanType

	// Resultados por fuente
	DNS   LookupResult
	Whois LookupResult
	SSL   LookupResult
	Geo   LookupResult

	// Risk evaluación agregada
	Risk RiskAssessment

	// Metadata información sobre la ejecución
	Metadata ScanMetadata
}

// ScanMetadata contiene información sobre la ejecución del escaneo.
type ScanMetadata struct {
	// StartTime momento de inicio
	StartTime time.Time

	// EndTime momento de finalización
	EndTime time.Time

	// Duration duración total
	Duration time.Duration

	// Deadline deadline global aplicado
	Deadline time.Time

	// Caller identidad del caller que inició el escaneo
	Caller string

	// SourcesDispatched fuentes despachadas para este escaneo
	SourcesDispatched []string

	// Version versión de exposechain
	Version string
}

// NewScanResult crea un resultado con los cuatro campos pre-poblados
// como Skipped, de modo que el invariante se cumple desde la construcción.
func NewScanResult(target Target, scanType ScanType) *ScanResult {
	return &ScanResult{
		ID:       generateScanID(),
		Target:   target,
		ScanType: scanType,
		DNS:      NewSkipped(SourceKindDNS),
		Whois:    NewSkipped(SourceKindWhois),
		SSL:      NewSkipped(SourceKindSSL),
		Geo:      NewSkipped(SourceKindGeo),
		Metadata: ScanMetadata{StartTime: time.Now()},
	}
}

// Set asigna el resultado de una fuente a su campo.
func (r *ScanResult) Set(lr LookupResult) {
	switch lr.Source {
	case SourceKindDNS:
		r.DNS = lr
	case SourceKindWhois:
		r.Whois = lr
	case SourceKindSSL:
		r.SSL = lr
	case SourceKindGeo:
		r.Geo = lr
	}
}

// Field retorna el resultado de la fuente indicada.
func (r *ScanResult) Field(kind SourceKind) LookupResult {
	switch kind {
	case SourceKindDNS:
		return r.DNS
	case SourceKindWhois:
		return r.Whois
	case SourceKindSSL:
		return r.SSL
	case SourceKindGeo:
		return r.Geo
	default:
		return LookupResult{}
	}
}

// Lookups retorna los cuatro resultados en orden estable.
func (r *ScanResult) Lookups() []LookupResult {
	return []LookupResult{r.DNS, r.Whois, r.SSL, r.Geo}
}

// Finalize marca el escaneo como completado y calcula la duración.
func (r *ScanResult) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// Summary retorna un resumen legible del resultado.
func (r *ScanResult) Summary() string {
	return fmt.Sprintf(
		"ScanResult{target=%s, type=%s, dns=%s, whois=%s, ssl=%s, geo=%s, risk=%d/%s, duration=%s}",
		r.Target.Normalized,
		r.ScanType,
		r.DNS.Status,
		r.Whois.Status,
		r.SSL.Status,
		r.Geo.Status,
		r.Risk.Score,
		r.Risk.Level,
		r.Metadata.Duration,
	)
}

// generateScanID genera un ID único basado en timestamp.
func generateScanID() string {
	return fmt.Sprintf("scan-%d", time.Now().UnixNano())
}
