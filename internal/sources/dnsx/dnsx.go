// Package dnsx implements the DNS lookup adapter. It queries A, AAAA, MX,
// NS and TXT records for domains and PTR records for IP targets, each
// record type independently: a type that fails or is absent never fails
// the whole lookup.
package dnsx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"exposechain/internal/core/domain"
	"exposechain/internal/core/ports"
	"exposechain/internal/platform/errors"
	"exposechain/internal/platform/logx"
	"exposechain/internal/platform/registry"
)

// Auto-registro del adapter al importar el package
func init() {
	if err := registry.Global().Register(
		domain.SourceKindDNS,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:            "dns",
			Description:     "DNS record enumeration (A, AAAA, MX, NS, TXT, PTR)",
			Kind:            domain.SourceKindDNS,
			NeedsSocket:     false,
			SupportsIPs:     true,
			SupportsDomains: true,
		},
	); err != nil {
		logx.New().Warn("failed to register dns source", "error", err.Error())
	}
}

const (
	sourceName     = "dns"
	defaultTimeout = 5 * time.Second
)

var defaultResolvers = []string{"8.8.8.8:53", "8.8.4.4:53"}

// queryTypes are the record types resolved for domain targets.
var queryTypes = map[string]uint16{
	"A":    dns.TypeA,
	"AAAA": dns.TypeAAAA,
	"MX":   dns.TypeMX,
	"NS":   dns.TypeNS,
	"TXT":  dns.TypeTXT,
}

// Source implements ports.Source for DNS lookups.
type Source struct {
	client    *dns.Client
	resolvers []string
	logger    logx.Logger
}

// New creates a DNS adapter. cfg.Custom admite "resolvers" ([]string,
// host:puerto) y cfg.Timeout acota cada query individual.
func New(cfg ports.SourceConfig, logger logx.Logger) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	resolvers := defaultResolvers
	if raw, ok := cfg.Custom["resolvers"].([]string); ok && len(raw) > 0 {
		resolvers = raw
	}

	return &Source{
		client:    &dns.Client{Timeout: timeout},
		resolvers: resolvers,
		logger:    logger.With("source", sourceName),
	}
}

func (s *Source) Name() string            { return sourceName }
func (s *Source) Kind() domain.SourceKind { return domain.SourceKindDNS }
func (s *Source) NeedsSocket() bool       { return false }
func (s *Source) Close() error            { return nil }

// Lookup resolves the target's records. For domains it runs the standard
// forward queries; for IPs only the reverse (PTR) lookup applies.
func (s *Source) Lookup(ctx context.Context, target domain.Target) (any, error) {
	records := &domain.DNSRecords{QueryErrors: make(map[string]string)}
	start := time.Now()

	if target.Kind.IsIP() {
		s.lookupPTR(ctx, target.Normalized, records)
	} else {
		for name, qtype := range queryTypes {
			s.lookupType(ctx, target.Normalized, name, qtype, records)
		}
	}

	records.TotalQueryTime = time.Since(start)

	// Solo es un fallo del adapter cuando ninguna query produjo respuesta.
	if s.allQueriesFailed(target, records) {
		return nil, errors.Wrapf(errors.ErrConnectionFailed,
			"all dns queries failed for %s", target.Normalized)
	}

	return records, nil
}

// lookupType runs a single record-type query and folds the answer into
// records. Errors land in QueryErrors under the type name.
func (s *Source) lookupType(ctx context.Context, name, typeName string, qtype uint16, records *domain.DNSRecords) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	resp, err := s.exchange(ctx, msg)
	if err != nil {
		records.QueryErrors[typeName] = err.Error()
		return
	}
	if resp.Rcode != dns.RcodeSuccess && resp.Rcode != dns.RcodeNameError {
		records.QueryErrors[typeName] = dns.RcodeToString[resp.Rcode]
		return
	}

	for _, rr := range resp.Answer {
		ttl := rr.Header().Ttl
		switch a := rr.(type) {
		case *dns.A:
			records.A = append(records.A, domain.IPRecord{IP: a.A.String(), TTL: ttl})
		case *dns.AAAA:
			records.AAAA = append(records.AAAA, domain.IPRecord{IP: a.AAAA.String(), TTL: ttl})
		case *dns.MX:
			records.MX = append(records.MX, domain.MXRecord{
				Host:       strings.TrimSuffix(a.Mx, "."),
				Preference: a.Preference,
				TTL:        ttl,
			})
		case *dns.NS:
			records.NS = append(records.NS, domain.HostRecord{
				Host: strings.TrimSuffix(a.Ns, "."),
				TTL:  ttl,
			})
		case *dns.TXT:
			records.TXT = append(records.TXT, domain.TXTRecord{
				Data: strings.Join(a.Txt, ""),
				TTL:  ttl,
			})
		}
	}
}

// lookupPTR resolves the reverse record for an IP target.
func (s *Source) lookupPTR(ctx context.Context, ip string, records *domain.DNSRecords) {
	rev, err := dns.ReverseAddr(ip)
	if err != nil {
		records.QueryErrors["PTR"] = err.Error()
		return
	}

	msg := new(dns.Msg)
	msg.SetQuestion(rev, dns.TypePTR)
	msg.RecursionDesired = true

	resp, err := s.exchange(ctx, msg)
	if err != nil {
		records.QueryErrors["PTR"] = err.Error()
		return
	}

	for _, rr := range resp.Answer {
		if ptr, ok := rr.(*dns.PTR); ok {
			records.PTR = append(records.PTR, strings.TrimSuffix(ptr.Ptr, "."))
		}
	}
}

// exchange tries each configured resolver in order until one answers.
func (s *Source) exchange(ctx context.Context, msg *dns.Msg) (*dns.Msg, error) {
	var lastErr error
	for _, resolver := range s.resolvers {
		resp, _, err := s.client.ExchangeContext(ctx, msg, resolver)
		if err != nil {
			lastErr = err
			s.logger.Debug("resolver failed",
				"resolver", resolver,
				"qtype", dns.TypeToString[msg.Question[0].Qtype],
				"error", err.Error(),
			)
			continue
		}
		return resp, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no resolvers configured")
	}
	return nil, lastErr
}

// allQueriesFailed reports whether every attempted query errored with no
// answers at all.
func (s *Source) allQueriesFailed(target domain.Target, records *domain.DNSRecords) bool {
	expected := len(queryTypes)
	if target.Kind.IsIP() {
		expected = 1
	}
	if len(records.QueryErrors) < expected {
		return false
	}
	return len(records.A) == 0 && len(records.AAAA) == 0 &&
		len(records.MX) == 0 && len(records.NS) == 0 &&
		len(records.TXT) == 0 && len(records.PTR) == 0
}
