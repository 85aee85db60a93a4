// internal/core/domain/records.go
package domain

import "time"

// DNSRecords agrupa los registros DNS observados para un target.
// Cada tipo de registro se consulta de forma independiente: un tipo
// ausente es una lista vacía, nunca un fallo del adapter completo.
type DNSRecords struct {
	A    []IPRecord
	AAAA []IPRecord
	MX   []MXRecord
	NS   []HostRecord
	TXT  []TXTRecord

	// PTR hostnames de reverse lookup (solo para targets IP)
	PTR []string

	// QueryErrors errores por tipo de registro (NXDOMAIN, refused...)
	QueryErrors map[string]string

	// TotalQueryTime suma de los tiempos de query individuales
	TotalQueryTime time.Duration
}

// IPRecord es un registro A o AAAA con su TTL observado.
type IPRecord struct {
	IP  string
	TTL uint32
}

// MXRecord es un registro MX; Preference menor = mayor prioridad.
type MXRecord struct {
	Host       string
	Preference uint16
	TTL        uint32
}

// HostRecord es un registro NS.
type HostRecord struct {
	Host string
	TTL  uint32
}

// TXTRecord es un registro TXT con sus strings ya concatenados.
type TXTRecord struct {
	Data string
	TTL  uint32
}

// IPs retorna todas las direcciones resueltas (A + AAAA).
func (d *DNSRecords) IPs() []string {
	out := make([]string, 0, len(d.A)+len(d.AAAA))
	for _, r := range d.A {
		out = append(out, r.IP)
	}
	for _, r := range d.AAAA {
		out = append(out, r.IP)
	}
	return out
}

// HasTXTPrefix indica si existe algún registro TXT con el prefijo dado.
// Usado para detectar SPF ("v=spf1") y DMARC ("v=DMARC1").
func (d *DNSRecords) HasTXTPrefix(prefix string) bool {
	for _, r := range d.TXT {
		if len(r.Data) >= len(prefix) && equalFold(r.Data[:len(prefix)], prefix) {
			return true
		}
	}
	return false
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// WhoisInfo agrupa los datos de registro de un dominio.
// "Sin datos WHOIS" (TLDs sin servicio, registros privados) es un
// Success con campos vacíos, nunca un Failure.
type WhoisInfo struct {
	Domain    string
	Registrar string

	// Fechas zero value = desconocida
	CreatedDate    time.Time
	ExpirationDate time.Time
	UpdatedDate    time.Time

	Statuses    []string
	NameServers []string

	RegistrantName    string
	RegistrantOrg     string
	RegistrantCountry string

	// PrivacyProtected indica un servicio de protección de privacidad
	PrivacyProtected bool
}

// AgeDays retorna la edad del dominio en días, o -1 si es desconocida.
func (w *WhoisInfo) AgeDays(now time.Time) int {
	if w.CreatedDate.IsZero() {
		return -1
	}
	return int(now.Sub(w.CreatedDate).Hours() / 24)
}

// DaysUntilExpiration retorna los días hasta la expiración (negativo si
// ya expiró), o 0 con ok=false si es desconocida.
func (w *WhoisInfo) DaysUntilExpiration(now time.Time) (int, bool) {
	if w.ExpirationDate.IsZero() {
		return 0, false
	}
	return int(w.ExpirationDate.Sub(now).Hours() / 24), true
}

// HasLock indica si el dominio tiene locks de transferencia/actualización.
func (w *WhoisInfo) HasLock() bool {
	for _, s := range w.Statuses {
		if containsFold(s, "lock") || containsFold(s, "transferprohibited") {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if equalFold(s[i:i+len(sub)], sub) {
			return true
		}
	}
	return false
}

// CertInfo agrupa los metadatos del certificado hoja y la evaluación
// local de validez/fortaleza.
type CertInfo struct {
	Subject      string
	SubjectOrg   string
	Issuer       string
	IssuerOrg    string
	SerialNumber string

	NotBefore time.Time
	NotAfter  time.Time

	SignatureAlgorithm string
	PublicKeyAlgorithm string
	KeyBits            int
	SANs               []string

	TLSVersion  string
	CipherSuite string

	// Evaluación local
	Expired       bool
	SelfSigned    bool
	WeakKey       bool
	SHA1Signature bool
	HostnameMatch bool
	OutdatedTLS   bool
	WeakCipher    bool
	KeyStrength   string
}

// DaysUntilExpiry retorna los días hasta la expiración del certificado
// (negativo si ya expiró).
func (c *CertInfo) DaysUntilExpiry(now time.Time) int {
	return int(c.NotAfter.Sub(now).Hours() / 24)
}

// GeoInfo agrupa los datos de geolocalización y hosting de una IP.
type GeoInfo struct {
	IP string

	Country     string
	CountryCode string
	Region      string
	City        string
	Timezone    string

	Latitude  float64
	Longitude float64

	ISP     string
	Org     string
	ASN     string
	ASNName string

	Mobile  bool
	Proxy   bool
	Hosting bool

	ReverseDNS string
}

// IsCDN detecta heurísticamente si la IP pertenece a un CDN o cloud provider.
func (g *GeoInfo) IsCDN() bool {
	keywords := []string{"cloudflare", "akamai", "fastly", "amazon", "google", "microsoft", "azure"}
	for _, kw := range keywords {
		if containsFold(g.ISP, kw) || containsFold(g.Org, kw) {
			return true
		}
	}
	return false
}
