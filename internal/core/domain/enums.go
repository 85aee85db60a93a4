// internal/core/domain/enums.go
package domain

// TargetKind clasifica el objetivo de un escaneo.
type TargetKind string

const (
	// TargetKindDomain nombre de dominio DNS
	TargetKindDomain TargetKind = "domain"

	// TargetKindIPv4 dirección IPv4 en forma dotted-quad
	TargetKindIPv4 TargetKind = "ipv4"

	// TargetKindIPv6 dirección IPv6 textual
	TargetKindIPv6 TargetKind = "ipv6"
)

// IsValid verifica si el tipo de target es válido.
func (k TargetKind) IsValid() bool {
	switch k {
	case TargetKindDomain, TargetKindIPv4, TargetKindIPv6:
		return true
	default:
		return false
	}
}

// IsIP indica si el target es una dirección IP (v4 o v6).
func (k TargetKind) IsIP() bool {
	return k == TargetKindIPv4 || k == TargetKindIPv6
}

func (k TargetKind) String() string { return string(k) }

// ScanType define la profundidad del escaneo.
type ScanType string

const (
	// ScanTypeQuick despacha solo DNS y SSL
	ScanTypeQuick ScanType = "quick"

	// ScanTypeFull despacha las cuatro fuentes
	ScanTypeFull ScanType = "full"
)

// IsValid verifica si el tipo de escaneo es válido.
func (t ScanType) IsValid() bool {
	return t == ScanTypeQuick || t == ScanTypeFull
}

func (t ScanType) String() string { return string(t) }

// SourceKind identifica cada una de las fuentes de lookup.
type SourceKind string

const (
	SourceKindDNS   SourceKind = "dns"
	SourceKindWhois SourceKind = "whois"
	SourceKindSSL   SourceKind = "ssl"
	SourceKindGeo   SourceKind = "geo"
)

// IsValid verifica si el tipo de fuente es válido.
func (k SourceKind) IsValid() bool {
	switch k {
	case SourceKindDNS, SourceKindWhois, SourceKindSSL, SourceKindGeo:
		return true
	default:
		return false
	}
}

func (k SourceKind) String() string { return string(k) }

// AllSourceKinds retorna las fuentes en orden estable.
func AllSourceKinds() []SourceKind {
	return []SourceKind{SourceKindDNS, SourceKindWhois, SourceKindSSL, SourceKindGeo}
}

// SourcesFor retorna el subconjunto de fuentes que despacha cada tipo de
// escaneo. Es una decisión de configuración, no un code path distinto.
func SourcesFor(t ScanType) []SourceKind {
	if t == ScanTypeQuick {
		return []SourceKind{SourceKindDNS, SourceKindSSL}
	}
	return AllSourceKinds()
}

// LookupStatus es el tag del resultado de una fuente.
type LookupStatus string

const (
	// StatusSuccess la fuente produjo datos
	StatusSuccess LookupStatus = "success"

	// StatusFailure error de red o protocolo local a la fuente
	StatusFailure LookupStatus = "failure"

	// StatusTimedOut la fuente no terminó dentro del deadline
	StatusTimedOut LookupStatus = "timeout"

	// StatusSkipped la fuente no fue despachada para este tipo de escaneo
	StatusSkipped LookupStatus = "skipped"
)

func (s LookupStatus) String() string { return string(s) }

// ErrorKind clasifica los fallos de una fuente.
type ErrorKind string

const (
	ErrorKindNetwork     ErrorKind = "network"
	ErrorKindProtocol    ErrorKind = "protocol"
	ErrorKindRateLimited ErrorKind = "rate_limited"
	ErrorKindBlocked     ErrorKind = "blocked"
	ErrorKindInternal    ErrorKind = "internal"
)

func (k ErrorKind) String() string { return string(k) }

// ThreatLevel clasifica el riesgo agregado de un escaneo.
type ThreatLevel string

const (
	ThreatLevelLow      ThreatLevel = "low"
	ThreatLevelMedium   ThreatLevel = "medium"
	ThreatLevelHigh     ThreatLevel = "high"
	ThreatLevelCritical ThreatLevel = "critical"
)

func (l ThreatLevel) String() string { return string(l) }
