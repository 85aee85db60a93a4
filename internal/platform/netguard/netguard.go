// Package netguard blocks scans against private, loopback and otherwise
// reserved address space before any network activity is dispatched.
//
// The guard fails closed: if a hostname cannot be resolved, or any error
// occurs while classifying it, the target is treated as blocked.
package netguard

import (
	"context"
	"fmt"
	"net"
	"time"

	"exposechain/internal/core/domain"
	"exposechain/internal/platform/logx"
)

// Resolver abstracts hostname resolution so the guard can be exercised in
// tests without touching the network.
type Resolver interface {
	LookupIP(ctx context.Context, host string) ([]net.IP, error)
}

// NetResolver resolves through the platform resolver.
type NetResolver struct {
	Timeout time.Duration
}

// LookupIP resuelve todas las direcciones A/AAAA del host.
func (r *NetResolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		ips = append(ips, a.IP)
	}
	return ips, nil
}

// Guard decides whether a validated target may be scanned.
type Guard struct {
	resolver Resolver
	extra    []*net.IPNet
	logger   logx.Logger
}

// builtinBlocked are the address ranges that are never scannable.
var builtinBlocked = mustParseCIDRs(
	"0.0.0.0/8",       // "this network"
	"10.0.0.0/8",      // RFC 1918
	"100.64.0.0/10",   // carrier-grade NAT
	"127.0.0.0/8",     // loopback
	"169.254.0.0/16",  // link-local
	"172.16.0.0/12",   // RFC 1918
	"192.0.0.0/24",    // IETF protocol assignments
	"192.0.2.0/24",    // TEST-NET-1
	"192.168.0.0/16",  // RFC 1918
	"198.18.0.0/15",   // benchmarking
	"198.51.100.0/24", // TEST-NET-2
	"203.0.113.0/24",  // TEST-NET-3
	"224.0.0.0/4",     // multicast
	"240.0.0.0/4",     // reserved, includes broadcast
	"::/128",          // unspecified
	"::1/128",         // loopback
	"::ffff:0:0/96",   // IPv4-mapped, classified via the v4 ranges anyway
	"64:ff9b::/96",    // NAT64
	"100::/64",        // discard
	"2001:db8::/32",   // documentation
	"fc00::/7",        // unique local
	"fe80::/10",       // link-local
	"ff00::/8",        // multicast
)

// New creates a guard. extraCIDRs amplía la lista de rangos bloqueados
// (deny-list configurable); entradas inválidas se descartan con un warning.
func New(resolver Resolver, extraCIDRs []string, logger logx.Logger) *Guard {
	if resolver == nil {
		resolver = &NetResolver{}
	}
	g := &Guard{
		resolver: resolver,
		logger:   logger.With("component", "netguard"),
	}
	for _, raw := range extraCIDRs {
		_, ipnet, err := net.ParseCIDR(raw)
		if err != nil {
			g.logger.Warn("ignoring invalid blocked cidr", "cidr", raw, "error", err.Error())
			continue
		}
		g.extra = append(g.extra, ipnet)
	}
	return g
}

// Check returns nil when the target is safe to scan. It returns a
// domain.BlockedError when the target resolves into blocked address space
// or cannot be classified at all.
func (g *Guard) Check(ctx context.Context, target domain.Target) error {
	if target.Kind.IsIP() {
		ip := net.ParseIP(target.Normalized)
		if ip == nil {
			// ParseTarget ya validó esto; si llega aquí algo anda mal.
			return &domain.BlockedError{Reason: "unparseable address"}
		}
		if reason := g.classify(ip); reason != "" {
			return &domain.BlockedError{Reason: reason}
		}
		return nil
	}

	ips, err := g.resolver.LookupIP(ctx, target.Normalized)
	if err != nil {
		// Fail closed: un dominio que no resuelve no se puede clasificar.
		g.logger.Warn("resolution failed, blocking target",
			"target", target.Normalized, "error", err.Error())
		return &domain.BlockedError{
			Reason: fmt.Sprintf("resolution failed: %v", err),
		}
	}
	if len(ips) == 0 {
		return &domain.BlockedError{Reason: "hostname resolved to no addresses"}
	}

	// Basta una dirección bloqueada para rechazar el target completo.
	for _, ip := range ips {
		if reason := g.classify(ip); reason != "" {
			g.logger.Info("blocked target",
				"target", target.Normalized, "ip", ip.String(), "reason", reason)
			return &domain.BlockedError{
				Reason: fmt.Sprintf("%s resolves to %s (%s)", target.Normalized, ip, reason),
			}
		}
	}
	return nil
}

// classify returns a non-empty reason when ip falls in blocked space.
func (g *Guard) classify(ip net.IP) string {
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	for _, n := range builtinBlocked {
		if n.Contains(ip) {
			return "reserved range " + n.String()
		}
	}
	for _, n := range g.extra {
		if n.Contains(ip) {
			return "configured blocked range " + n.String()
		}
	}
	return ""
}

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, ipnet, err := net.ParseCIDR(c)
		if err != nil {
			panic("netguard: bad builtin cidr " + c + ": " + err.Error())
		}
		nets = append(nets, ipnet)
	}
	return nets
}
