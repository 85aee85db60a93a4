// internal/core/usecases/mocks_test.go
package usecases

import (
	"context"
	"net"
	"sync"
	"time"

	"exposechain/internal/core/domain"
)

// mockSource es una fuente controlable para tests: payload, error y
// latencia inyectables, con contador de invocaciones.
type mockSource struct {
	kind  domain.SourceKind
	data  any
	err   error
	delay time.Duration

	mu    sync.Mutex
	calls int
}

func (m *mockSource) Name() string            { return "mock-" + m.kind.String() }
func (m *mockSource) Kind() domain.SourceKind { return m.kind }
func (m *mockSource) NeedsSocket() bool       { return false }
func (m *mockSource) Close() error            { return nil }

func (m *mockSource) Lookup(ctx context.Context, target domain.Target) (any, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.delay):
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.data, nil
}

func (m *mockSource) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockStore captura los resultados persistidos y señaliza cada Save.
type mockStore struct {
	mu     sync.Mutex
	saved  []*domain.ScanResult
	err    error
	signal chan struct{}
}

func newMockStore() *mockStore {
	return &mockStore{signal: make(chan struct{}, 8)}
}

func (s *mockStore) Save(ctx context.Context, result *domain.ScanResult) error {
	s.mu.Lock()
	s.saved = append(s.saved, result)
	s.mu.Unlock()
	s.signal <- struct{}{}
	return s.err
}

func (s *mockStore) Close() error { return nil }

func (s *mockStore) savedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}

// publicResolver resuelve cualquier host a una IP pública, para que el
// guard deje pasar targets de dominio en tests.
type publicResolver struct{}

func (publicResolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	return []net.IP{net.ParseIP("93.184.216.34")}, nil
}

// payloads de éxito mínimos por fuente
func mockDNSRecords() *domain.DNSRecords {
	return &domain.DNSRecords{
		A:   []domain.IPRecord{{IP: "93.184.216.34", TTL: 300}},
		TXT: []domain.TXTRecord{{Data: "v=spf1 -all"}, {Data: "v=DMARC1; p=reject"}},
	}
}

func mockWhoisInfo() *domain.WhoisInfo {
	return &domain.WhoisInfo{
		Domain:         "example.com",
		Registrar:      "Test Registrar",
		CreatedDate:    time.Now().AddDate(-10, 0, 0),
		ExpirationDate: time.Now().AddDate(2, 0, 0),
		Statuses:       []string{"clientTransferProhibited"},
	}
}

func mockCertInfo() *domain.CertInfo {
	return &domain.CertInfo{
		Subject:       "example.com",
		Issuer:        "Test CA",
		NotBefore:     time.Now().AddDate(0, -1, 0),
		NotAfter:      time.Now().AddDate(1, 0, 0),
		KeyBits:       2048,
		HostnameMatch: true,
		KeyStrength:   "strong",
	}
}

func mockGeoInfo() *domain.GeoInfo {
	return &domain.GeoInfo{
		IP:      "93.184.216.34",
		Country: "United States",
		ISP:     "Test ISP",
	}
}

func fullMockSources() map[domain.SourceKind]*mockSource {
	return map[domain.SourceKind]*mockSource{
		domain.SourceKindDNS:   {kind: domain.SourceKindDNS, data: mockDNSRecords()},
		domain.SourceKindWhois: {kind: domain.SourceKindWhois, data: mockWhoisInfo()},
		domain.SourceKindSSL:   {kind: domain.SourceKindSSL, data: mockCertInfo()},
		domain.SourceKindGeo:   {kind: domain.SourceKindGeo, data: mockGeoInfo()},
	}
}
