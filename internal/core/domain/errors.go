// internal/core/domain/errors.go
package domain

import (
	"errors"
	"fmt"
	"time"
)

// Errores de dominio comunes.
var (
	ErrNoSourcesAvailable = errors.New("no sources available for scan")
	ErrScanCanceled       = errors.New("scan was canceled")
	ErrInvalidScanType    = errors.New("invalid scan type")
)

// RejectReason nombra el motivo de un rechazo pre-dispatch.
type RejectReason string

const (
	RejectValidation  RejectReason = "validation"
	RejectRateLimited RejectReason = "rate_limited"
)

// RejectedError indica que el escaneo fue rechazado antes del dispatch:
// entrada inválida o rate limit del caller. Nunca se reintenta dentro
// del core; el retry es prerrogativa del caller.
type RejectedError struct {
	Reason RejectReason
	Detail string

	// RetryAfter hint para el caller cuando Reason == RejectRateLimited
	RetryAfter time.Duration

	// Err causa subyacente (ej: *ValidationError)
	Err error
}

func (e *RejectedError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("scan rejected (%s): %s", e.Reason, e.Detail)
	}
	return fmt.Sprintf("scan rejected (%s)", e.Reason)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// BlockedError indica que la política SSRF bloqueó el target.
// Es permanente para ese target.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("scan blocked: %s", e.Reason)
}
