// internal/core/domain/target.go
package domain

import (
	"fmt"
	"strings"

	"exposechain/internal/platform/validator"
)

// Target representa el objetivo validado de un escaneo.
// Es inmutable una vez construido por ParseTarget.
type Target struct {
	// Raw entrada original tal como la envió el caller
	Raw string

	// Kind clasificación del target
	Kind TargetKind

	// Normalized forma canónica (lowercase, sin punto final, IP canónica)
	Normalized string
}

// ValidationReason nombra el motivo de rechazo de un target.
type ValidationReason string

const (
	ReasonEmpty      ValidationReason = "empty"
	ReasonTooLong    ValidationReason = "too-long"
	ReasonNotAnIP    ValidationReason = "not-an-IP"
	ReasonNotADomain ValidationReason = "not-a-domain"
)

// ValidationError describe por qué una entrada no es un target válido.
type ValidationError struct {
	Reason ValidationReason
	Input  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid target %q: %s", e.Input, e.Reason)
}

// ParseTarget clasifica y normaliza una entrada cruda en un Target.
// Sin efectos secundarios: nunca resuelve DNS ni abre sockets.
func ParseTarget(raw string) (Target, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))

	if validator.IsEmpty(trimmed) {
		return Target{}, &ValidationError{Reason: ReasonEmpty, Input: raw}
	}
	if !validator.MaxLength(trimmed, 253) {
		return Target{}, &ValidationError{Reason: ReasonTooLong, Input: raw}
	}

	// IPv6 textual siempre contiene ':'
	if strings.Contains(trimmed, ":") {
		if !validator.IsIPv6(trimmed) {
			return Target{}, &ValidationError{Reason: ReasonNotAnIP, Input: raw}
		}
		return Target{Raw: raw, Kind: TargetKindIPv6, Normalized: validator.NormalizeIP(trimmed)}, nil
	}

	if validator.IsIPv4(trimmed) {
		return Target{Raw: raw, Kind: TargetKindIPv4, Normalized: validator.NormalizeIP(trimmed)}, nil
	}

	// Algo que parece una IPv4 malformada no debe tratarse como dominio
	if looksLikeIPv4(trimmed) {
		return Target{}, &ValidationError{Reason: ReasonNotAnIP, Input: raw}
	}

	normalized := validator.NormalizeDomain(trimmed)
	if !validator.IsDomain(normalized) {
		return Target{}, &ValidationError{Reason: ReasonNotADomain, Input: raw}
	}

	return Target{Raw: raw, Kind: TargetKindDomain, Normalized: normalized}, nil
}

// looksLikeIPv4 detecta entradas compuestas solo por dígitos y puntos.
func looksLikeIPv4(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' {
			return false
		}
	}
	return strings.Contains(s, ".")
}

// String retorna una representación legible del target.
func (t Target) String() string {
	return fmt.Sprintf("Target{kind=%s, normalized=%s}", t.Kind, t.Normalized)
}
