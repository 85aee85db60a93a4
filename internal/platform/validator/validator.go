// internal/platform/validator/validator.go
package validator

import (
	"net"
	"strings"
)

// Límites de RFC 1035 para nombres de dominio.
const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

// IsDomain verifica si un string es un dominio válido.
// Aplica las reglas LDH por label: letras, dígitos y guiones,
// sin guión inicial ni final, label <= 63, total <= 253.
func IsDomain(domain string) bool {
	if len(domain) == 0 || len(domain) > maxDomainLength {
		return false
	}

	// Verificar que no sea una IP
	if net.ParseIP(domain) != nil {
		return false
	}

	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return false
	}

	for _, label := range labels {
		if !isValidLabel(label) {
			return false
		}
	}

	// El TLD no puede ser puramente numérico (se confundiría con una IP parcial)
	tld := labels[len(labels)-1]
	if isAllDigits(tld) {
		return false
	}

	return true
}

// isValidLabel aplica las reglas LDH a un label individual.
func isValidLabel(label string) bool {
	if len(label) == 0 || len(label) > maxLabelLength {
		return false
	}
	if label[0] == '-' || label[len(label)-1] == '-' {
		return false
	}
	for i := 0; i < len(label); i++ {
		c := label[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-':
		default:
			return false
		}
	}
	return true
}

func isAllDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeDomain normaliza un dominio a su forma canónica.
func NormalizeDomain(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimSuffix(domain, ".")
	return domain
}

// IsIP verifica si un string es una dirección IP válida (v4 o v6).
func IsIP(ip string) bool {
	return net.ParseIP(ip) != nil
}

// IsIPv4 verifica si un string es una dirección IPv4 válida en forma
// dotted-quad estricta.
func IsIPv4(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	// net.ParseIP acepta formas IPv6 que mapean a v4; exigir notación dotted-quad.
	return parsed.To4() != nil && strings.Count(ip, ".") == 3
}

// IsIPv6 verifica si un string es una dirección IPv6 válida.
func IsIPv6(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return strings.Contains(ip, ":")
}

// NormalizeIP normaliza una IP a su forma canónica.
// Si la IP es inválida, retorna string vacío.
func NormalizeIP(ip string) string {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return ""
	}
	return parsed.String()
}

// IsEmpty verifica si un string está vacío o solo contiene espacios.
func IsEmpty(s string) bool {
	return len(strings.TrimSpace(s)) == 0
}

// MaxLength verifica que un string no exceda una longitud máxima.
func MaxLength(s string, max int) bool {
	return len(s) <= max
}
