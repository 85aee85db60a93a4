// Package sslx implements the SSL/TLS lookup adapter. It performs a TLS
// handshake against the target, captures the leaf certificate and runs a
// local assessment of validity and key strength. Handshake verification
// is disabled on purpose: an expired or self-signed certificate is data,
// not a lookup failure.
package sslx

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"strings"
	"time"

	"exposechain/internal/core/domain"
	"exposechain/internal/core/ports"
	"exposechain/internal/platform/errors"
	"exposechain/internal/platform/logx"
	"exposechain/internal/platform/registry"
)

// Auto-registro del adapter al importar el package
func init() {
	if err := registry.Global().Register(
		domain.SourceKindSSL,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:            "ssl",
			Description:     "TLS certificate capture and local security assessment",
			Kind:            domain.SourceKindSSL,
			NeedsSocket:     true,
			SupportsIPs:     true,
			SupportsDomains: true,
		},
	); err != nil {
		logx.New().Warn("failed to register ssl source", "error", err.Error())
	}
}

const (
	sourceName     = "ssl"
	defaultPort    = 443
	defaultTimeout = 10 * time.Second

	minRSABits = 2048
	minECCBits = 256
)

// Source implements ports.Source for TLS certificate lookups.
type Source struct {
	port    int
	timeout time.Duration
	logger  logx.Logger

	// now es inyectable para tests de la evaluación temporal.
	now func() time.Time
}

// New creates an SSL adapter. cfg.Custom admite "port" (int).
func New(cfg ports.SourceConfig, logger logx.Logger) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	port := defaultPort
	if p, ok := cfg.Custom["port"].(int); ok && p > 0 && p <= 65535 {
		port = p
	}

	return &Source{
		port:    port,
		timeout: timeout,
		logger:  logger.With("source", sourceName),
		now:     time.Now,
	}
}

func (s *Source) Name() string            { return sourceName }
func (s *Source) Kind() domain.SourceKind { return domain.SourceKindSSL }
func (s *Source) NeedsSocket() bool       { return true }
func (s *Source) Close() error            { return nil }

// Lookup handshakes with the target and assesses its leaf certificate.
func (s *Source) Lookup(ctx context.Context, target domain.Target) (any, error) {
	addr := net.JoinHostPort(target.Normalized, fmt.Sprintf("%d", s.port))

	tlsCfg := &tls.Config{
		// La verificación se hace localmente: capturamos también
		// certificados inválidos.
		InsecureSkipVerify: true,
	}
	if !target.Kind.IsIP() {
		tlsCfg.ServerName = target.Normalized
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: s.timeout},
		Config:    tlsCfg,
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrConnectionFailed, "tls handshake with %s: %v", addr, err)
	}
	defer conn.Close()

	tlsConn, ok := conn.(*tls.Conn)
	if !ok {
		return nil, errors.Wrap(errors.ErrInvalidResponse, "connection is not tls")
	}

	state := tlsConn.ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "%s presented no certificate", addr)
	}

	info := s.assess(state.PeerCertificates[0], state, target)
	return info, nil
}

// assess builds the CertInfo for a leaf certificate and handshake state.
func (s *Source) assess(cert *x509.Certificate, state tls.ConnectionState, target domain.Target) *domain.CertInfo {
	now := s.now()
	keyBits := publicKeyBits(cert)

	info := &domain.CertInfo{
		Subject:      cert.Subject.CommonName,
		SubjectOrg:   firstOf(cert.Subject.Organization),
		Issuer:       cert.Issuer.CommonName,
		IssuerOrg:    firstOf(cert.Issuer.Organization),
		SerialNumber: cert.SerialNumber.Text(16),

		NotBefore: cert.NotBefore,
		NotAfter:  cert.NotAfter,

		SignatureAlgorithm: cert.SignatureAlgorithm.String(),
		PublicKeyAlgorithm: cert.PublicKeyAlgorithm.String(),
		KeyBits:            keyBits,
		SANs:               cert.DNSNames,

		TLSVersion:  tls.VersionName(state.Version),
		CipherSuite: tls.CipherSuiteName(state.CipherSuite),

		Expired:       now.After(cert.NotAfter) || now.Before(cert.NotBefore),
		SelfSigned:    isSelfSigned(cert),
		WeakKey:       isWeakKey(cert.PublicKeyAlgorithm, keyBits),
		SHA1Signature: isSHA1(cert.SignatureAlgorithm),
		HostnameMatch: cert.VerifyHostname(target.Normalized) == nil,
		OutdatedTLS:   state.Version <= tls.VersionTLS11,
		WeakCipher:    isWeakCipher(tls.CipherSuiteName(state.CipherSuite)),
		KeyStrength:   keyStrength(cert.PublicKeyAlgorithm, keyBits),
	}
	return info
}

// isWeakCipher detecta suites con cifrados rotos u obsoletos.
func isWeakCipher(name string) bool {
	for _, weak := range []string{"RC4", "3DES", "DES_", "NULL", "EXPORT"} {
		if strings.Contains(name, weak) {
			return true
		}
	}
	return false
}

// publicKeyBits extrae el tamaño de la clave pública en bits.
func publicKeyBits(cert *x509.Certificate) int {
	switch pub := cert.PublicKey.(type) {
	case *rsa.PublicKey:
		return pub.N.BitLen()
	case *ecdsa.PublicKey:
		return pub.Curve.Params().BitSize
	case ed25519.PublicKey:
		return 256
	default:
		return 0
	}
}

// isWeakKey aplica los umbrales mínimos por algoritmo.
func isWeakKey(alg x509.PublicKeyAlgorithm, bits int) bool {
	switch alg {
	case x509.RSA:
		return bits < minRSABits
	case x509.ECDSA:
		return bits < minECCBits
	case x509.Ed25519:
		return false
	default:
		// Algoritmo desconocido o sin tamaño determinable.
		return bits == 0
	}
}

func isSHA1(alg x509.SignatureAlgorithm) bool {
	switch alg {
	case x509.SHA1WithRSA, x509.ECDSAWithSHA1, x509.DSAWithSHA1:
		return true
	default:
		return false
	}
}

// isSelfSigned comprueba emisor == sujeto y que la firma se valide con la
// propia clave del certificado.
func isSelfSigned(cert *x509.Certificate) bool {
	if cert.Subject.String() != cert.Issuer.String() {
		return false
	}
	return cert.CheckSignatureFrom(cert) == nil || cert.CheckSignature(
		cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature) == nil
}

func keyStrength(alg x509.PublicKeyAlgorithm, bits int) string {
	switch alg {
	case x509.RSA:
		switch {
		case bits >= 4096:
			return "strong"
		case bits >= minRSABits:
			return "adequate"
		default:
			return "weak"
		}
	case x509.ECDSA:
		switch {
		case bits >= 384:
			return "strong"
		case bits >= minECCBits:
			return "adequate"
		default:
			return "weak"
		}
	case x509.Ed25519:
		return "strong"
	default:
		return "unknown"
	}
}

func firstOf(list []string) string {
	if len(list) > 0 {
		return strings.TrimSpace(list[0])
	}
	return ""
}
