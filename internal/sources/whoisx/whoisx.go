// Package whoisx implements the WHOIS lookup adapter. It queries the
// registry for the target's registrable domain and parses registration
// dates, registrar, statuses and nameservers. Sparse or redacted records
// are still successes: absence of data is not a lookup failure.
package whoisx

import (
	"context"
	"strings"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"golang.org/x/net/publicsuffix"

	"exposechain/internal/core/domain"
	"exposechain/internal/core/ports"
	"exposechain/internal/platform/errors"
	"exposechain/internal/platform/logx"
	"exposechain/internal/platform/registry"
)

// Auto-registro del adapter al importar el package
func init() {
	if err := registry.Global().Register(
		domain.SourceKindWhois,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:            "whois",
			Description:     "Domain registration data (registrar, dates, statuses)",
			Kind:            domain.SourceKindWhois,
			NeedsSocket:     false,
			SupportsIPs:     false,
			SupportsDomains: true,
		},
	); err != nil {
		logx.New().Warn("failed to register whois source", "error", err.Error())
	}
}

const (
	sourceName     = "whois"
	defaultTimeout = 10 * time.Second
)

// privacyKeywords señalan servicios de protección de privacidad en los
// campos de registrante.
var privacyKeywords = []string{
	"privacy", "redacted", "protected", "proxy", "withheld", "not disclosed",
}

// Source implements ports.Source for WHOIS lookups.
type Source struct {
	client *whois.Client
	logger logx.Logger
}

// New creates a WHOIS adapter.
func New(cfg ports.SourceConfig, logger logx.Logger) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := whois.NewClient()
	client.SetTimeout(timeout)

	return &Source{
		client: client,
		logger: logger.With("source", sourceName),
	}
}

func (s *Source) Name() string            { return sourceName }
func (s *Source) Kind() domain.SourceKind { return domain.SourceKindWhois }
func (s *Source) NeedsSocket() bool       { return false }
func (s *Source) Close() error            { return nil }

// Lookup queries the registry for the target's registrable domain
// (eTLD+1) so subdomains resolve to their registered parent.
func (s *Source) Lookup(ctx context.Context, target domain.Target) (any, error) {
	if target.Kind.IsIP() {
		return nil, errors.Wrap(errors.ErrInvalidInput, "whois adapter only handles domains")
	}

	query := registrableDomain(target.Normalized)

	// El cliente whois no acepta context; la query corre en una goroutine
	// y el deadline del ctx la abandona si el registro no responde.
	type answer struct {
		raw string
		err error
	}
	ch := make(chan answer, 1)
	go func() {
		raw, err := s.client.Whois(query)
		ch <- answer{raw: raw, err: err}
	}()

	var raw string
	select {
	case <-ctx.Done():
		return nil, errors.Wrapf(errors.ErrTimeout, "whois query for %s", query)
	case a := <-ch:
		if a.err != nil {
			return nil, errors.Wrapf(errors.ErrConnectionFailed, "whois query for %s: %v", query, a.err)
		}
		raw = a.raw
	}

	info, err := parseResponse(query, raw)
	if err != nil {
		return nil, err
	}
	return info, nil
}

// parseResponse converts the raw registry text into WhoisInfo. A record
// the parser cannot find data in (unregistered, redacted, unsupported
// TLD) produces an empty WhoisInfo, not an error.
func parseResponse(query, raw string) (*domain.WhoisInfo, error) {
	parsed, err := whoisparser.Parse(raw)
	if err != nil {
		switch err {
		case whoisparser.ErrNotFoundDomain,
			whoisparser.ErrReservedDomain,
			whoisparser.ErrPremiumDomain,
			whoisparser.ErrBlockedDomain,
			whoisparser.ErrDomainLimitExceed,
			whoisparser.ErrDomainDataInvalid:
			// Sin datos utilizables: success con campos vacíos.
			return &domain.WhoisInfo{Domain: query}, nil
		default:
			return nil, errors.Wrapf(errors.ErrInvalidResponse, "parsing whois for %s: %v", query, err)
		}
	}

	info := &domain.WhoisInfo{Domain: query}

	if d := parsed.Domain; d != nil {
		if d.Domain != "" {
			info.Domain = d.Domain
		}
		info.Statuses = d.Status
		info.NameServers = normalizeHosts(d.NameServers)
		if d.CreatedDateInTime != nil {
			info.CreatedDate = *d.CreatedDateInTime
		}
		if d.ExpirationDateInTime != nil {
			info.ExpirationDate = *d.ExpirationDateInTime
		}
		if d.UpdatedDateInTime != nil {
			info.UpdatedDate = *d.UpdatedDateInTime
		}
	}
	if r := parsed.Registrar; r != nil {
		info.Registrar = r.Name
	}
	if r := parsed.Registrant; r != nil {
		info.RegistrantName = r.Name
		info.RegistrantOrg = r.Organization
		info.RegistrantCountry = r.Country
	}

	info.PrivacyProtected = detectPrivacy(info)
	return info, nil
}

// registrableDomain reduce el target a su eTLD+1; si la heurística de
// sufijos falla se consulta el nombre tal cual.
func registrableDomain(name string) string {
	if etld, err := publicsuffix.EffectiveTLDPlusOne(name); err == nil {
		return etld
	}
	return name
}

// detectPrivacy busca keywords de servicios de privacidad en los campos
// del registrante.
func detectPrivacy(info *domain.WhoisInfo) bool {
	fields := []string{info.RegistrantName, info.RegistrantOrg}
	for _, f := range fields {
		lower := strings.ToLower(f)
		for _, kw := range privacyKeywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

func normalizeHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(h), "."))
		if h != "" {
			out = append(out, h)
		}
	}
	return out
}
