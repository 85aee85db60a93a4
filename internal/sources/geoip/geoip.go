// Package geoip implements the geolocation lookup adapter backed by the
// ip-api.com JSON endpoint. It reports location, ISP/ASN ownership and the
// hosting/proxy flags used by the risk scorer. The free tier allows 45
// requests per minute, so calls are paced with a local token bucket.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"time"

	"exposechain/internal/core/domain"
	"exposechain/internal/core/ports"
	"exposechain/internal/platform/errors"
	"exposechain/internal/platform/httpclient"
	"exposechain/internal/platform/logx"
	"exposechain/internal/platform/rate"
	"exposechain/internal/platform/registry"
)

// Auto-registro del adapter al importar el package
func init() {
	if err := registry.Global().Register(
		domain.SourceKindGeo,
		func(cfg ports.SourceConfig, logger logx.Logger) (ports.Source, error) {
			return New(cfg, logger), nil
		},
		ports.SourceMetadata{
			Name:            "geo",
			Description:     "IP geolocation and hosting classification via ip-api.com",
			Kind:            domain.SourceKindGeo,
			NeedsSocket:     false,
			SupportsIPs:     true,
			SupportsDomains: true,
		},
	); err != nil {
		logx.New().Warn("failed to register geo source", "error", err.Error())
	}
}

const (
	sourceName      = "geo"
	defaultEndpoint = "http://ip-api.com/json"
	defaultRPM      = 45
	defaultTimeout  = 10 * time.Second

	// responseFields limita la respuesta a los campos que consumimos.
	responseFields = "status,message,country,countryCode,regionName,city,timezone," +
		"lat,lon,isp,org,as,asname,mobile,proxy,hosting,reverse,query"
)

// apiResponse es la respuesta de ip-api.com.
type apiResponse struct {
	Status      string  `json:"status"`
	Message     string  `json:"message,omitempty"`
	Country     string  `json:"country"`
	CountryCode string  `json:"countryCode"`
	Region      string  `json:"regionName"`
	City        string  `json:"city"`
	Timezone    string  `json:"timezone"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	ISP         string  `json:"isp"`
	Org         string  `json:"org"`
	AS          string  `json:"as"` // "AS15169 Google LLC"
	ASName      string  `json:"asname"`
	Mobile      bool    `json:"mobile"`
	Proxy       bool    `json:"proxy"`
	Hosting     bool    `json:"hosting"`
	Reverse     string  `json:"reverse"`
	Query       string  `json:"query"`
}

// Source implements ports.Source for geolocation lookups.
type Source struct {
	client   *httpclient.Client
	endpoint string
	quota    *rate.Limiter
	logger   logx.Logger

	// resolve es inyectable para tests de targets dominio.
	resolve func(ctx context.Context, host string) ([]net.IP, error)
}

// New creates a geolocation adapter. cfg.Custom admite "endpoint" (string)
// y "upstream_rpm" (int).
func New(cfg ports.SourceConfig, logger logx.Logger) *Source {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	endpoint := defaultEndpoint
	if e, ok := cfg.Custom["endpoint"].(string); ok && e != "" {
		endpoint = e
	}

	rpm := defaultRPM
	if r, ok := cfg.Custom["upstream_rpm"].(int); ok && r > 0 {
		rpm = r
	}

	client := httpclient.New(httpclient.Config{
		Timeout:    timeout,
		MaxRetries: 2,
	}, logger)

	return &Source{
		client:   client,
		endpoint: endpoint,
		quota:    rate.New(float64(rpm)/60.0, rpm),
		logger:   logger.With("source", sourceName),
		resolve: func(ctx context.Context, host string) ([]net.IP, error) {
			addrs, err := net.DefaultResolver.LookupIPAddr(ctx, host)
			if err != nil {
				return nil, err
			}
			ips := make([]net.IP, 0, len(addrs))
			for _, a := range addrs {
				ips = append(ips, a.IP)
			}
			return ips, nil
		},
	}
}

func (s *Source) Name() string            { return sourceName }
func (s *Source) Kind() domain.SourceKind { return domain.SourceKindGeo }
func (s *Source) NeedsSocket() bool       { return false }
func (s *Source) Close() error            { return nil }

// Lookup geolocates the target. Domain targets are resolved first,
// preferring IPv4 as the upstream does.
func (s *Source) Lookup(ctx context.Context, target domain.Target) (any, error) {
	ip := target.Normalized
	if !target.Kind.IsIP() {
		resolved, err := s.resolveOne(ctx, target.Normalized)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrConnectionFailed,
				"resolving %s for geolocation: %v", target.Normalized, err)
		}
		ip = resolved
	}

	// Cuota del upstream: si el bucket está vacío es mejor fallar rápido
	// que agotar la franquicia gratuita y ganarse un ban temporal.
	if !s.quota.Allow() {
		return nil, errors.Wrapf(errors.ErrUpstreamRateLimit, "geolocation quota exhausted for %s", ip)
	}

	endpoint := fmt.Sprintf("%s/%s?fields=%s", s.endpoint, url.PathEscape(ip), responseFields)
	body, err := s.client.FetchJSON(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidResponse, "decoding geolocation response: %v", err)
	}
	if resp.Status != "success" {
		return nil, errors.Wrapf(errors.ErrInvalidResponse,
			"geolocation lookup for %s: %s", ip, resp.Message)
	}

	return toGeoInfo(ip, resp), nil
}

// resolveOne resuelve un dominio y elige una dirección, prefiriendo IPv4.
func (s *Source) resolveOne(ctx context.Context, host string) (string, error) {
	ips, err := s.resolve(ctx, host)
	if err != nil {
		return "", err
	}
	if len(ips) == 0 {
		return "", fmt.Errorf("%s resolved to no addresses", host)
	}
	for _, ip := range ips {
		if ip.To4() != nil {
			return ip.String(), nil
		}
	}
	return ips[0].String(), nil
}

// toGeoInfo mapea la respuesta del upstream al payload de dominio.
func toGeoInfo(ip string, resp apiResponse) *domain.GeoInfo {
	info := &domain.GeoInfo{
		IP:          ip,
		Country:     resp.Country,
		CountryCode: resp.CountryCode,
		Region:      resp.Region,
		City:        resp.City,
		Timezone:    resp.Timezone,
		Latitude:    resp.Lat,
		Longitude:   resp.Lon,
		ISP:         resp.ISP,
		Org:         resp.Org,
		ASNName:     resp.ASName,
		Mobile:      resp.Mobile,
		Proxy:       resp.Proxy,
		Hosting:     resp.Hosting,
		ReverseDNS:  resp.Reverse,
	}
	if resp.Query != "" {
		info.IP = resp.Query
	}
	info.ASN, _ = splitASField(resp.AS)
	if info.ASNName == "" {
		_, info.ASNName = splitASField(resp.AS)
	}
	return info
}

// splitASField separa "AS15169 Google LLC" en número y nombre.
func splitASField(s string) (asn, name string) {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i], s[i+1:]
		}
	}
	return s, ""
}
