// internal/adapters/output/json.go
package output

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"exposechain/internal/core/domain"
	"exposechain/internal/platform/logx"
)

// JSONStore persiste resultados de escaneo como archivos JSON bajo un
// directorio base, un subdirectorio por target. El orchestrator invoca
// Save en background: un fallo aquí se registra y nunca afecta al
// escaneo ya completado.
type JSONStore struct {
	dir    string
	logger logx.Logger
}

// NewJSONStore crea un store que escribe bajo dir ("." si está vacío).
func NewJSONStore(dir string, logger logx.Logger) *JSONStore {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = logx.New()
	}
	return &JSONStore{dir: dir, logger: logger.With("component", "jsonstore")}
}

// Save escribe el resultado en
// <dir>/<target>/exposechain_<target>_<timestamp>.json.
// La escritura es atómica: archivo temporal y rename.
func (s *JSONStore) Save(ctx context.Context, result *domain.ScanResult) error {
	targetDir := filepath.Join(s.dir, sanitizeName(result.Target.Normalized))
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	timestamp := result.Metadata.StartTime.Format("20060102_150405")
	filename := fmt.Sprintf("exposechain_%s_%s.json", sanitizeName(result.Target.Normalized), timestamp)
	finalPath := filepath.Join(targetDir, filename)

	tmp, err := os.CreateTemp(targetDir, filename+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(envelopeFor(result)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return fmt.Errorf("failed to finalize output file: %w", err)
	}

	s.logger.Debug("scan result persisted", "scan_id", result.ID, "path", finalPath)
	return nil
}

// Close no retiene recursos; existe para cumplir ports.ScanStore.
func (s *JSONStore) Close() error { return nil }

// envelope serializa un ScanResult con claves estables y un bloque de
// lookup por fuente, de modo que el archivo es legible sin conocer los
// tipos internos.
type envelope struct {
	ID        string                `json:"id"`
	Target    string                `json:"target"`
	Kind      string                `json:"target_kind"`
	ScanType  string                `json:"scan_type"`
	Lookups   map[string]lookupJSON `json:"lookups"`
	Risk      domain.RiskAssessment `json:"risk"`
	StartTime time.Time             `json:"start_time"`
	EndTime   time.Time             `json:"end_time"`
	Duration  string                `json:"duration"`
	Deadline  time.Time             `json:"deadline"`
	Caller    string                `json:"caller"`
	Sources   []string              `json:"sources_dispatched"`
	Version   string                `json:"version,omitempty"`
}

type lookupJSON struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	ErrKind string `json:"error_kind,omitempty"`
	Message string `json:"error,omitempty"`
	Elapsed string `json:"elapsed,omitempty"`
}

func envelopeFor(result *domain.ScanResult) envelope {
	lookups := make(map[string]lookupJSON, 4)
	for _, lr := range result.Lookups() {
		lj := lookupJSON{
			Status:  lr.Status.String(),
			ErrKind: lr.ErrKind.String(),
			Message: lr.Message,
		}
		if lr.OK() {
			lj.Data = lr.Data
			lj.Elapsed = lr.Elapsed.String()
		}
		lookups[lr.Source.String()] = lj
	}
	return envelope{
		ID:        result.ID,
		Target:    result.Target.Normalized,
		Kind:      result.Target.Kind.String(),
		ScanType:  result.ScanType.String(),
		Lookups:   lookups,
		Risk:      result.Risk,
		StartTime: result.Metadata.StartTime,
		EndTime:   result.Metadata.EndTime,
		Duration:  result.Metadata.Duration.String(),
		Deadline:  result.Metadata.Deadline,
		Caller:    result.Metadata.Caller,
		Sources:   result.Metadata.SourcesDispatched,
		Version:   result.Metadata.Version,
	}
}

// sanitizeName convierte un target en un nombre de archivo seguro.
// Ejemplo: "example.com" -> "example_com".
func sanitizeName(target string) string {
	sanitized := strings.ReplaceAll(target, ".", "_")
	sanitized = strings.ReplaceAll(sanitized, ":", "_")
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, sanitized)
}
