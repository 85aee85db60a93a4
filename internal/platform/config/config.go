// internal/platform/config/config.go
package config

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// App
	Target       string `yaml:"target"`
	ScanType     string `yaml:"scan_type"`
	Caller       string `yaml:"caller"`
	PrintVersion bool   `yaml:"-"`

	// IO
	OutputDir  string `yaml:"output_dir"`
	ConfigFile string `yaml:"-"`

	Cache     Cache     `yaml:"cache"`
	RateLimit RateLimit `yaml:"rate_limit"`
	Deadlines Deadlines `yaml:"deadlines"`
	DNS       DNS       `yaml:"dns"`
	Whois     Whois     `yaml:"whois"`
	SSL       SSL       `yaml:"ssl"`
	Geo       Geo       `yaml:"geo"`
	Guard     Guard     `yaml:"guard"`
	Risk      Risk      `yaml:"risk"`
	Outputs   Outputs   `yaml:"outputs"`
}

type Cache struct {
	Capacity    int `yaml:"capacity"`
	TTLS        int `yaml:"ttl_s"`
	FailureTTLS int `yaml:"failure_ttl_s"`
}

type RateLimit struct {
	Limit   int `yaml:"limit"`
	WindowS int `yaml:"window_s"`
}

type Deadlines struct {
	FullS  int `yaml:"full_s"`
	QuickS int `yaml:"quick_s"`
}

type DNS struct {
	Resolvers []string `yaml:"resolvers"`
	TimeoutS  int      `yaml:"timeout_s"`
}

type Whois struct {
	TimeoutS int `yaml:"timeout_s"`
}

type SSL struct {
	Port     int `yaml:"port"`
	TimeoutS int `yaml:"timeout_s"`
}

type Geo struct {
	Endpoint    string `yaml:"endpoint"`
	UpstreamRPM int    `yaml:"upstream_rpm"`
	TimeoutS    int    `yaml:"timeout_s"`
}

type Guard struct {
	ExtraBlockedCIDRs []string `yaml:"extra_blocked_cidrs"`
}

type Risk struct {
	// Weights sobreescribe el peso de findings individuales por ID.
	Weights map[string]int `yaml:"weights"`
}

type Outputs struct {
	TableDisabled bool `yaml:"table_disabled"`
	// Plain usa el resumen tabwriter sin color en lugar del reporte pterm.
	Plain bool `yaml:"plain"`
	// JSON output siempre se genera.
}

// DefaultConfig retorna una configuración por defecto.
func DefaultConfig() Config {
	return Config{
		ScanType:  "full",
		Caller:    "cli",
		OutputDir: "exposechain_out",

		Cache: Cache{
			Capacity:    128,
			TTLS:        300,
			FailureTTLS: 30,
		},
		RateLimit: RateLimit{
			Limit:   10,
			WindowS: 60,
		},
		Deadlines: Deadlines{
			FullS:  30,
			QuickS: 10,
		},
		DNS: DNS{
			Resolvers: []string{"8.8.8.8:53", "8.8.4.4:53"},
			TimeoutS:  5,
		},
		Whois: Whois{
			TimeoutS: 10,
		},
		SSL: SSL{
			Port:     443,
			TimeoutS: 10,
		},
		Geo: Geo{
			Endpoint:    "http://ip-api.com/json",
			UpstreamRPM: 45,
			TimeoutS:    10,
		},
		Risk: Risk{
			Weights: map[string]int{},
		},
	}
}

// Load inicializa la configuración: defaults -> archivo YAML -> ENV -> flags
// (los flags tienen prioridad máxima).
func Load(args []string) (Config, error) {
	cfg := DefaultConfig()

	// El path del archivo puede venir de ENV o del flag --config; el flag
	// se inspecciona antes del parseo completo para respetar el orden de
	// precedencia de las capas.
	cfg.ConfigFile = getenv("EXPOSECHAIN_CONFIG", "")
	if path := peekConfigFlag(args); path != "" {
		cfg.ConfigFile = path
	}
	if cfg.ConfigFile != "" {
		if err := loadFromFile(&cfg, cfg.ConfigFile); err != nil {
			return cfg, err
		}
	}

	loadFromEnv(&cfg)

	if err := loadFromFlags(&cfg, args); err != nil {
		return cfg, err
	}

	normalize(&cfg)
	return cfg, nil
}

// loadFromFile aplica un archivo YAML sobre la configuración actual.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadFromEnv carga configuración desde variables de entorno.
func loadFromEnv(cfg *Config) {
	if v := getenv("EXPOSECHAIN_TARGET", ""); v != "" {
		cfg.Target = v
	}
	if v := getenv("EXPOSECHAIN_SCAN_TYPE", ""); v != "" {
		cfg.ScanType = v
	}
	if v := getenv("EXPOSECHAIN_CALLER", ""); v != "" {
		cfg.Caller = v
	}
	if v := getenv("EXPOSECHAIN_OUTPUT_DIR", ""); v != "" {
		cfg.OutputDir = v
	}

	if v := getenv("EXPOSECHAIN_CACHE_CAPACITY", ""); v != "" {
		cfg.Cache.Capacity = parseInt(v, cfg.Cache.Capacity)
	}
	if v := getenv("EXPOSECHAIN_CACHE_TTL", ""); v != "" {
		cfg.Cache.TTLS = parseInt(v, cfg.Cache.TTLS)
	}
	if v := getenv("EXPOSECHAIN_CACHE_FAILURE_TTL", ""); v != "" {
		cfg.Cache.FailureTTLS = parseInt(v, cfg.Cache.FailureTTLS)
	}

	if v := getenv("EXPOSECHAIN_RATE_LIMIT", ""); v != "" {
		cfg.RateLimit.Limit = parseInt(v, cfg.RateLimit.Limit)
	}
	if v := getenv("EXPOSECHAIN_RATE_WINDOW", ""); v != "" {
		cfg.RateLimit.WindowS = parseInt(v, cfg.RateLimit.WindowS)
	}

	if v := getenv("EXPOSECHAIN_DEADLINE_FULL", ""); v != "" {
		cfg.Deadlines.FullS = parseInt(v, cfg.Deadlines.FullS)
	}
	if v := getenv("EXPOSECHAIN_DEADLINE_QUICK", ""); v != "" {
		cfg.Deadlines.QuickS = parseInt(v, cfg.Deadlines.QuickS)
	}

	if v := getenv("EXPOSECHAIN_DNS_RESOLVERS", ""); v != "" {
		cfg.DNS.Resolvers = splitList(v)
	}
	if v := getenv("EXPOSECHAIN_DNS_TIMEOUT", ""); v != "" {
		cfg.DNS.TimeoutS = parseInt(v, cfg.DNS.TimeoutS)
	}

	if v := getenv("EXPOSECHAIN_SSL_PORT", ""); v != "" {
		cfg.SSL.Port = parseInt(v, cfg.SSL.Port)
	}

	if v := getenv("EXPOSECHAIN_GEO_ENDPOINT", ""); v != "" {
		cfg.Geo.Endpoint = v
	}
	if v := getenv("EXPOSECHAIN_GEO_UPSTREAM_RPM", ""); v != "" {
		cfg.Geo.UpstreamRPM = parseInt(v, cfg.Geo.UpstreamRPM)
	}

	if v := getenv("EXPOSECHAIN_BLOCKED_CIDRS", ""); v != "" {
		cfg.Guard.ExtraBlockedCIDRs = splitList(v)
	}

	if v := getenv("EXPOSECHAIN_NO_TABLE", ""); v != "" {
		cfg.Outputs.TableDisabled = parseBool(v)
	}
}

// loadFromFlags parsea flags de CLI.
func loadFromFlags(cfg *Config, args []string) error {
	fs := pflag.NewFlagSet("exposechain", pflag.ContinueOnError)

	fs.StringVarP(&cfg.Target, "target", "t", cfg.Target, "Dominio o IP objetivo (e.g., example.com)")
	fs.StringVar(&cfg.ScanType, "type", cfg.ScanType, "Tipo de escaneo: full o quick")
	fs.StringVar(&cfg.Caller, "caller", cfg.Caller, "Identidad del caller para rate limiting")
	fs.StringVarP(&cfg.OutputDir, "out", "o", cfg.OutputDir, "Directorio de salida")
	fs.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "Archivo de configuración YAML")
	fs.BoolVarP(&cfg.PrintVersion, "version", "v", false, "Imprimir versión y salir")

	fs.IntVar(&cfg.Cache.Capacity, "cache.capacity", cfg.Cache.Capacity, "Capacidad máxima de la cache de lookups")
	fs.IntVar(&cfg.Cache.TTLS, "cache.ttl", cfg.Cache.TTLS, "TTL en segundos para resultados exitosos")

	fs.IntVar(&cfg.RateLimit.Limit, "rate.limit", cfg.RateLimit.Limit, "Escaneos permitidos por caller por ventana")
	fs.IntVar(&cfg.RateLimit.WindowS, "rate.window", cfg.RateLimit.WindowS, "Ventana de rate limiting en segundos")

	fs.IntVar(&cfg.Deadlines.FullS, "deadline.full", cfg.Deadlines.FullS, "Deadline global para escaneos full (segundos)")
	fs.IntVar(&cfg.Deadlines.QuickS, "deadline.quick", cfg.Deadlines.QuickS, "Deadline global para escaneos quick (segundos)")

	fs.StringSliceVar(&cfg.DNS.Resolvers, "dns.resolvers", cfg.DNS.Resolvers, "Resolvers DNS (host:puerto)")
	fs.StringSliceVar(&cfg.Guard.ExtraBlockedCIDRs, "blocked-cidrs", cfg.Guard.ExtraBlockedCIDRs, "Rangos CIDR bloqueados adicionales")

	fs.BoolVar(&cfg.Outputs.TableDisabled, "no-table", cfg.Outputs.TableDisabled, "Desactivar tabla resumen (JSON siempre se genera)")
	fs.BoolVar(&cfg.Outputs.Plain, "plain", cfg.Outputs.Plain, "Resumen plano sin color en lugar del reporte pterm")

	return fs.Parse(args)
}

func normalize(c *Config) {
	c.Target = strings.TrimSpace(strings.ToLower(strings.TrimSuffix(c.Target, ".")))
	c.ScanType = strings.TrimSpace(strings.ToLower(c.ScanType))
	if c.Caller == "" {
		c.Caller = "cli"
	}
	if c.OutputDir == "" {
		c.OutputDir = "exposechain_out"
	}
	if c.Cache.Capacity < 1 {
		c.Cache.Capacity = 128
	}
	if c.Cache.TTLS < 1 {
		c.Cache.TTLS = 300
	}
	if c.Cache.FailureTTLS < 1 {
		c.Cache.FailureTTLS = 30
	}
	if c.RateLimit.Limit < 1 {
		c.RateLimit.Limit = 10
	}
	if c.RateLimit.WindowS < 1 {
		c.RateLimit.WindowS = 60
	}
	if c.Deadlines.FullS < 1 {
		c.Deadlines.FullS = 30
	}
	if c.Deadlines.QuickS < 1 {
		c.Deadlines.QuickS = 10
	}
	if len(c.DNS.Resolvers) == 0 {
		c.DNS.Resolvers = []string{"8.8.8.8:53", "8.8.4.4:53"}
	}
	if c.DNS.TimeoutS < 1 {
		c.DNS.TimeoutS = 5
	}
	if c.Whois.TimeoutS < 1 {
		c.Whois.TimeoutS = 10
	}
	if c.SSL.Port < 1 || c.SSL.Port > 65535 {
		c.SSL.Port = 443
	}
	if c.SSL.TimeoutS < 1 {
		c.SSL.TimeoutS = 10
	}
	if c.Geo.Endpoint == "" {
		c.Geo.Endpoint = "http://ip-api.com/json"
	}
	if c.Geo.UpstreamRPM < 1 {
		c.Geo.UpstreamRPM = 45
	}
	if c.Geo.TimeoutS < 1 {
		c.Geo.TimeoutS = 10
	}
}

// peekConfigFlag extrae el valor de --config/-c sin parsear el resto.
func peekConfigFlag(args []string) string {
	for i, arg := range args {
		switch {
		case arg == "--config" || arg == "-c":
			if i+1 < len(args) {
				return args[i+1]
			}
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

// ToJSON serializa la configuración a JSON (útil para debugging).
func (c Config) ToJSON() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Duraciones derivadas.

func (c Config) CacheTTL() time.Duration { return time.Duration(c.Cache.TTLS) * time.Second }
func (c Config) CacheFailureTTL() time.Duration {
	return time.Duration(c.Cache.FailureTTLS) * time.Second
}
func (c Config) RateWindow() time.Duration    { return time.Duration(c.RateLimit.WindowS) * time.Second }
func (c Config) FullDeadline() time.Duration  { return time.Duration(c.Deadlines.FullS) * time.Second }
func (c Config) QuickDeadline() time.Duration { return time.Duration(c.Deadlines.QuickS) * time.Second }
func (c Config) DNSTimeout() time.Duration    { return time.Duration(c.DNS.TimeoutS) * time.Second }
func (c Config) WhoisTimeout() time.Duration  { return time.Duration(c.Whois.TimeoutS) * time.Second }
func (c Config) SSLTimeout() time.Duration    { return time.Duration(c.SSL.TimeoutS) * time.Second }
func (c Config) GeoTimeout() time.Duration    { return time.Duration(c.Geo.TimeoutS) * time.Second }

// Helpers

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok {
		return v
	}
	return def
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "t", "true", "y", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(v string, def int) int {
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return i
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
