// internal/core/ports/store.go
package ports

import (
	"context"

	"exposechain/internal/core/domain"
)

// ScanStore es el port para persistencia de resultados de escaneos.
// La persistencia es un colaborador fire-and-forget: un fallo al guardar
// nunca afecta el resultado entregado al caller.
type ScanStore interface {
	// Save guarda un resultado de escaneo completo
	Save(ctx context.Context, result *domain.ScanResult) error

	// Close libera recursos del store
	Close() error
}

// ScanPresenter renderiza un resultado para consumo humano.
type ScanPresenter interface {
	// Render imprime el resumen del escaneo
	Render(result *domain.ScanResult) error
}
