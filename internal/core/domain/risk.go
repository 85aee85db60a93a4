// internal/core/domain/risk.go
package domain

// Finding registra una condición detectada durante el scoring.
type Finding struct {
	// ID identificador estable de la condición (ej: "cert_expired")
	ID string

	// Description descripción legible
	Description string

	// Severity peso de severidad [0-100]; proviene de la configuración
	Severity int

	// Source fuente que aportó la evidencia
	Source SourceKind
}

// RiskAssessment es la salida del risk scorer.
type RiskAssessment struct {
	// Score riesgo agregado, clamped a [0, 100]
	Score int

	// Level nivel de amenaza derivado del score
	Level ThreatLevel

	// Findings condiciones detectadas, en orden de detección
	Findings []Finding

	// Recommendations acciones sugeridas, en orden
	Recommendations []string

	// SourcesScored fuentes que aportaron señal (las fuentes en
	// failure/timeout son neutrales y no cuentan)
	SourcesScored int
}

// LevelFor deriva el nivel de amenaza a partir de un score [0-100].
func LevelFor(score int) ThreatLevel {
	switch {
	case score >= 75:
		return ThreatLevelCritical
	case score >= 50:
		return ThreatLevelHigh
	case score >= 25:
		return ThreatLevelMedium
	default:
		return ThreatLevelLow
	}
}

// ClampScore limita un score acumulado al rango [0, 100].
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
