// internal/testutil/fixtures.go
package testutil

// Fixture data para tests (valores primitivos solamente, sin dependencias de domain)

// FixtureDomains contiene dominios de prueba válidos.
var FixtureDomains = []string{
	"example.com",
	"test.example.com",
	"subdomain.example.com",
	"another.test.example.com",
}

// FixtureInvalidDomains contiene dominios inválidos.
var FixtureInvalidDomains = []string{
	"",
	"not a domain",
	"-invalid.com",
	"invalid-.com",
	".example.com",
	"example..com",
}

// FixturePublicIPs contiene IPs públicas de prueba.
var FixturePublicIPs = []string{
	"8.8.8.8",
	"1.1.1.1",
	"93.184.216.34",
}

// FixturePrivateIPs contiene IPs en rangos privados o reservados.
var FixturePrivateIPs = []string{
	"127.0.0.1",
	"10.0.0.1",
	"172.16.0.1",
	"192.168.1.1",
	"169.254.1.1",
}

// FixtureIPv6 contiene IPv6 de prueba.
var FixtureIPv6 = []string{
	"2001:db8::1",
	"fe80::1",
	"::1",
	"2606:4700:4700::1111",
}
