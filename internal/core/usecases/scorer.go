// internal/core/usecases/scorer.go
package usecases

import (
	"time"

	"exposechain/internal/core/domain"
)

// IDs estables de las condiciones que el scorer detecta. El peso de
// cada una es configurable; el catálogo no.
const (
	findingCertExpired          = "cert_expired"
	findingCertExpiring7d       = "cert_expiring_7d"
	findingCertExpiring30d      = "cert_expiring_30d"
	findingCertSelfSigned       = "cert_self_signed"
	findingCertWeakKey          = "cert_weak_key"
	findingCertSHA1             = "cert_sha1_signature"
	findingCertHostnameMismatch = "cert_hostname_mismatch"
	findingTLSOutdated          = "tls_outdated_protocol"
	findingTLSWeakCipher        = "tls_weak_cipher"

	findingDNSMissingSPF   = "dns_missing_spf"
	findingDNSMissingDMARC = "dns_missing_dmarc"
	findingDNSNoAddresses  = "dns_no_addresses"

	findingWhoisDomainNew   = "whois_domain_new"
	findingWhoisDomainYoung = "whois_domain_young"
	findingWhoisExpired     = "whois_domain_expired"
	findingWhoisExpiring30d = "whois_expiring_30d"
	findingWhoisNoLock      = "whois_no_transfer_lock"
	findingWhoisPrivacy     = "whois_privacy_protected"

	findingGeoProxy   = "geo_proxy"
	findingGeoHosting = "geo_hosting"
)

// DefaultWeights retorna los pesos de severidad por defecto de cada
// condición. Un override de configuración puede reemplazar cualquiera.
func DefaultWeights() map[string]int {
	return map[string]int{
		findingCertExpired:          50,
		findingCertExpiring7d:       30,
		findingCertExpiring30d:      15,
		findingCertSelfSigned:       25,
		findingCertWeakKey:          20,
		findingCertSHA1:             20,
		findingCertHostnameMismatch: 15,
		findingTLSOutdated:          15,
		findingTLSWeakCipher:        15,

		findingDNSMissingSPF:   10,
		findingDNSMissingDMARC: 10,
		findingDNSNoAddresses:  10,

		findingWhoisDomainNew:   25,
		findingWhoisDomainYoung: 10,
		findingWhoisExpired:     30,
		findingWhoisExpiring30d: 15,
		findingWhoisNoLock:      5,
		findingWhoisPrivacy:     5,

		findingGeoProxy:   20,
		findingGeoHosting: 5,
	}
}

// descriptions y recommendations son texto fijo por condición.
var descriptions = map[string]string{
	findingCertExpired:          "TLS certificate is expired or not yet valid",
	findingCertExpiring7d:       "TLS certificate expires within 7 days",
	findingCertExpiring30d:      "TLS certificate expires within 30 days",
	findingCertSelfSigned:       "TLS certificate is self-signed",
	findingCertWeakKey:          "TLS certificate uses a weak public key",
	findingCertSHA1:             "TLS certificate is signed with SHA-1",
	findingCertHostnameMismatch: "TLS certificate does not match the target hostname",
	findingTLSOutdated:          "server negotiated an outdated TLS protocol version",
	findingTLSWeakCipher:        "server negotiated a weak cipher suite",
	findingDNSMissingSPF:        "no SPF record published",
	findingDNSMissingDMARC:      "no DMARC record published",
	findingDNSNoAddresses:       "domain resolves to no addresses",
	findingWhoisDomainNew:       "domain registered less than 30 days ago",
	findingWhoisDomainYoung:     "domain registered less than 180 days ago",
	findingWhoisExpired:         "domain registration is expired",
	findingWhoisExpiring30d:     "domain registration expires within 30 days",
	findingWhoisNoLock:          "domain has no transfer lock",
	findingWhoisPrivacy:         "domain registrant is privacy-protected",
	findingGeoProxy:             "target IP is flagged as proxy or VPN",
	findingGeoHosting:           "target IP belongs to a hosting provider",
}

var recommendations = map[string]string{
	findingCertExpired:          "Renew the TLS certificate immediately",
	findingCertExpiring7d:       "Renew the TLS certificate before it expires",
	findingCertExpiring30d:      "Schedule TLS certificate renewal",
	findingCertSelfSigned:       "Replace the self-signed certificate with one from a trusted CA",
	findingCertWeakKey:          "Reissue the certificate with at least RSA 2048 or ECC 256",
	findingCertSHA1:             "Reissue the certificate with a SHA-256 signature",
	findingCertHostnameMismatch: "Reissue the certificate covering the target hostname",
	findingTLSOutdated:          "Disable TLS 1.1 and older on the server",
	findingTLSWeakCipher:        "Remove weak cipher suites from the server configuration",
	findingDNSMissingSPF:        "Publish an SPF record to prevent mail spoofing",
	findingDNSMissingDMARC:      "Publish a DMARC policy to protect the domain's mail identity",
	findingDNSNoAddresses:       "Verify the domain's A/AAAA records",
	findingWhoisDomainNew:       "Recently registered domains are common in phishing; verify ownership",
	findingWhoisDomainYoung:     "Verify the domain's ownership history",
	findingWhoisExpired:         "Renew the domain registration immediately",
	findingWhoisExpiring30d:     "Renew the domain registration before it lapses",
	findingWhoisNoLock:          "Enable registrar transfer lock",
	findingGeoProxy:             "Traffic from this IP is anonymized; apply additional verification",
}

// neutralScore es el score cuando ninguna fuente aporta señal. Ni 0
// (que afirmaría ausencia de riesgo) ni 100 (que afirmaría riesgo
// máximo): sin datos no hay veredicto.
const neutralScore = 25

// Scorer deriva una evaluación de riesgo a partir de un ScanResult.
// Es una función pura sobre su entrada: no hace I/O, es determinista
// (el reloj es inyectable para tests) y monótona en los pesos.
type Scorer struct {
	weights map[string]int
	now     func() time.Time
}

// NewScorer crea un scorer con los pesos por defecto, aplicando los
// overrides recibidos (normalmente de la configuración).
func NewScorer(overrides map[string]int) *Scorer {
	weights := DefaultWeights()
	for id, w := range overrides {
		if _, known := weights[id]; known && w >= 0 {
			weights[id] = w
		}
	}
	return &Scorer{weights: weights, now: time.Now}
}

// Score evalúa el resultado de un escaneo. Solo las fuentes en Success
// aportan señal: failure, timeout y skipped son neutrales y no mueven
// el score en ninguna dirección.
func (s *Scorer) Score(result *domain.ScanResult) domain.RiskAssessment {
	var findings []domain.Finding
	scored := 0

	for _, lr := range result.Lookups() {
		if !lr.OK() {
			continue
		}
		scored++
		switch lr.Source {
		case domain.SourceKindDNS:
			if records, ok := lr.DNS(); ok {
				findings = append(findings, s.scoreDNS(records, result.Target)...)
			}
		case domain.SourceKindWhois:
			if info, ok := lr.Whois(); ok {
				findings = append(findings, s.scoreWhois(info)...)
			}
		case domain.SourceKindSSL:
			if cert, ok := lr.Cert(); ok {
				findings = append(findings, s.scoreCert(cert)...)
			}
		case domain.SourceKindGeo:
			if geo, ok := lr.Geo(); ok {
				findings = append(findings, s.scoreGeo(geo)...)
			}
		}
	}

	if scored == 0 {
		return domain.RiskAssessment{
			Score:         neutralScore,
			Level:         domain.LevelFor(neutralScore),
			SourcesScored: 0,
		}
	}

	total := 0
	recs := make([]string, 0, len(findings))
	seen := make(map[string]bool)
	for _, f := range findings {
		total += f.Severity
		if rec, ok := recommendations[f.ID]; ok && !seen[f.ID] {
			seen[f.ID] = true
			recs = append(recs, rec)
		}
	}

	score := domain.ClampScore(total)
	return domain.RiskAssessment{
		Score:           score,
		Level:           domain.LevelFor(score),
		Findings:        findings,
		Recommendations: recs,
		SourcesScored:   scored,
	}
}

func (s *Scorer) scoreDNS(records *domain.DNSRecords, target domain.Target) []domain.Finding {
	if target.Kind.IsIP() {
		return nil
	}
	var out []domain.Finding
	if len(records.IPs()) == 0 {
		out = append(out, s.finding(findingDNSNoAddresses, domain.SourceKindDNS))
	}
	if !records.HasTXTPrefix("v=spf1") {
		out = append(out, s.finding(findingDNSMissingSPF, domain.SourceKindDNS))
	}
	if !records.HasTXTPrefix("v=DMARC1") {
		out = append(out, s.finding(findingDNSMissingDMARC, domain.SourceKindDNS))
	}
	return out
}

func (s *Scorer) scoreWhois(info *domain.WhoisInfo) []domain.Finding {
	var out []domain.Finding
	now := s.now()

	switch age := info.AgeDays(now); {
	case age < 0:
		// fecha de creación desconocida: sin señal
	case age < 30:
		out = append(out, s.finding(findingWhoisDomainNew, domain.SourceKindWhois))
	case age < 180:
		out = append(out, s.finding(findingWhoisDomainYoung, domain.SourceKindWhois))
	}

	if days, ok := info.DaysUntilExpiration(now); ok {
		switch {
		case days < 0:
			out = append(out, s.finding(findingWhoisExpired, domain.SourceKindWhois))
		case days <= 30:
			out = append(out, s.finding(findingWhoisExpiring30d, domain.SourceKindWhois))
		}
	}

	// Un WHOIS vacío (TLD sin servicio) no tiene statuses; solo
	// penaliza la falta de lock cuando hay registro que evaluar.
	if len(info.Statuses) > 0 && !info.HasLock() {
		out = append(out, s.finding(findingWhoisNoLock, domain.SourceKindWhois))
	}
	if info.PrivacyProtected {
		out = append(out, s.finding(findingWhoisPrivacy, domain.SourceKindWhois))
	}
	return out
}

func (s *Scorer) scoreCert(cert *domain.CertInfo) []domain.Finding {
	var out []domain.Finding
	now := s.now()

	if cert.Expired {
		out = append(out, s.finding(findingCertExpired, domain.SourceKindSSL))
	} else {
		switch days := cert.DaysUntilExpiry(now); {
		case days <= 7:
			out = append(out, s.finding(findingCertExpiring7d, domain.SourceKindSSL))
		case days <= 30:
			out = append(out, s.finding(findingCertExpiring30d, domain.SourceKindSSL))
		}
	}
	if cert.SelfSigned {
		out = append(out, s.finding(findingCertSelfSigned, domain.SourceKindSSL))
	}
	if cert.WeakKey {
		out = append(out, s.finding(findingCertWeakKey, domain.SourceKindSSL))
	}
	if cert.SHA1Signature {
		out = append(out, s.finding(findingCertSHA1, domain.SourceKindSSL))
	}
	if !cert.HostnameMatch {
		out = append(out, s.finding(findingCertHostnameMismatch, domain.SourceKindSSL))
	}
	if cert.OutdatedTLS {
		out = append(out, s.finding(findingTLSOutdated, domain.SourceKindSSL))
	}
	if cert.WeakCipher {
		out = append(out, s.finding(findingTLSWeakCipher, domain.SourceKindSSL))
	}
	return out
}

func (s *Scorer) scoreGeo(geo *domain.GeoInfo) []domain.Finding {
	var out []domain.Finding
	if geo.Proxy {
		out = append(out, s.finding(findingGeoProxy, domain.SourceKindGeo))
	}
	if geo.Hosting && !geo.IsCDN() {
		out = append(out, s.finding(findingGeoHosting, domain.SourceKindGeo))
	}
	return out
}

func (s *Scorer) finding(id string, source domain.SourceKind) domain.Finding {
	return domain.Finding{
		ID:          id,
		Description: descriptions[id],
		Severity:    s.weights[id],
		Source:      source,
	}
}
