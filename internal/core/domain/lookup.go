// internal/core/domain/lookup.go
package domain

import "time"

// LookupResult es el resultado etiquetado de la invocación de una fuente.
// Las fuentes (a través del orchestrator) son las únicas productoras;
// el orchestrator y el risk scorer son los únicos consumidores que
// ramifican sobre Status.
type LookupResult struct {
	// Source fuente que produjo el resultado
	Source SourceKind

	// Status tag del resultado: success, failure, timeout o skipped
	Status LookupStatus

	// Data payload tipado en caso de éxito:
	// *DNSRecords, *WhoisInfo, *CertInfo o *GeoInfo según Source
	Data any

	// ErrKind clasificación del fallo (solo con StatusFailure)
	ErrKind ErrorKind

	// Message descripción del fallo (solo con StatusFailure)
	Message string

	// Elapsed tiempo de ejecución de la fuente
	Elapsed time.Duration
}

// NewSuccess construye un resultado exitoso.
func NewSuccess(source SourceKind, data any, elapsed time.Duration) LookupResult {
	return LookupResult{
		Source:  source,
		Status:  StatusSuccess,
		Data:    data,
		Elapsed: elapsed,
	}
}

// NewFailure construye un resultado de fallo tipado.
func NewFailure(source SourceKind, kind ErrorKind, message string) LookupResult {
	return LookupResult{
		Source:  source,
		Status:  StatusFailure,
		ErrKind: kind,
		Message: message,
	}
}

// NewTimedOut construye el resultado de una fuente que no terminó
// antes del deadline.
func NewTimedOut(source SourceKind) LookupResult {
	return LookupResult{
		Source: source,
		Status: StatusTimedOut,
	}
}

// NewSkipped construye el resultado de una fuente no despachada para
// este tipo de escaneo. Mantiene el invariante de que todo campo de
// ScanResult está poblado.
func NewSkipped(source SourceKind) LookupResult {
	return LookupResult{
		Source: source,
		Status: StatusSkipped,
	}
}

// OK indica si el lookup produjo datos.
func (r LookupResult) OK() bool {
	return r.Status == StatusSuccess
}

// Settled indica si la fuente terminó de una forma u otra
// (cualquier estado excepto el zero value).
func (r LookupResult) Settled() bool {
	return r.Status != ""
}

// DNS retorna el payload DNS si está presente.
func (r LookupResult) DNS() (*DNSRecords, bool) {
	d, ok := r.Data.(*DNSRecords)
	return d, ok && r.OK()
}

// Whois retorna el payload WHOIS si está presente.
func (r LookupResult) Whois() (*WhoisInfo, bool) {
	w, ok := r.Data.(*WhoisInfo)
	return w, ok && r.OK()
}

// Cert retorna el payload de certificado si está presente.
func (r LookupResult) Cert() (*CertInfo, bool) {
	c, ok := r.Data.(*CertInfo)
	return c, ok && r.OK()
}

// Geo retorna el payload de geolocalización si está presente.
func (r LookupResult) Geo() (*GeoInfo, bool) {
	g, ok := r.Data.(*GeoInfo)
	return g, ok && r.OK()
}
