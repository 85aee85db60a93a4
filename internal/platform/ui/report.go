// internal/platform/ui/report.go
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"exposechain/internal/core/domain"
)

// Reporter renderiza el resultado de un escaneo en terminal con pterm.
// Implementa ports.ScanPresenter.
type Reporter struct{}

// NewReporter crea el presenter pterm.
func NewReporter() *Reporter { return &Reporter{} }

// Render imprime el reporte completo: cabecera, estado por fuente,
// findings y recomendaciones.
func (r *Reporter) Render(result *domain.ScanResult) error {
	pterm.DefaultHeader.
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("ExposeChain - Attack Surface Scan")

	pterm.Println()

	info := fmt.Sprintf("Target: %s (%s)\n", pterm.Cyan(result.Target.Normalized), result.Target.Kind)
	info += fmt.Sprintf("Type: %s\n", pterm.Yellow(result.ScanType))
	info += fmt.Sprintf("Duration: %s\n", result.Metadata.Duration.Round(time.Millisecond))
	info += fmt.Sprintf("Sources: %s", strings.Join(result.Metadata.SourcesDispatched, ", "))

	pterm.DefaultBox.
		WithTitle("Scan").
		WithTitleTopCenter().
		WithRightPadding(4).
		WithLeftPadding(4).
		Println(info)

	pterm.Println()
	pterm.DefaultSection.Println("Sources")
	for _, lr := range result.Lookups() {
		pterm.Printf("  %s %s %s\n", statusSymbol(lr.Status), lr.Source, statusDetail(lr))
	}

	pterm.Println()
	pterm.DefaultSection.Println("Risk Assessment")
	pterm.Printf("  Score: %s  Level: %s  (signal from %d sources)\n",
		riskStyle(result.Risk.Level).Sprintf("%d/100", result.Risk.Score),
		riskStyle(result.Risk.Level).Sprint(result.Risk.Level),
		result.Risk.SourcesScored,
	)

	if len(result.Risk.Findings) > 0 {
		pterm.Println()
		rows := pterm.TableData{{"Finding", "Severity", "Source"}}
		for _, f := range result.Risk.Findings {
			rows = append(rows, []string{f.Description, fmt.Sprintf("%d", f.Severity), f.Source.String()})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
			return err
		}
	}

	if len(result.Risk.Recommendations) > 0 {
		pterm.Println()
		pterm.DefaultSection.Println("Recommendations")
		items := make([]pterm.BulletListItem, 0, len(result.Risk.Recommendations))
		for _, rec := range result.Risk.Recommendations {
			items = append(items, pterm.BulletListItem{Level: 0, Text: rec})
		}
		if err := pterm.DefaultBulletList.WithItems(items).Render(); err != nil {
			return err
		}
	}

	pterm.Println()
	return nil
}

// statusSymbol retorna el símbolo coloreado de cada estado de lookup.
func statusSymbol(s domain.LookupStatus) string {
	switch s {
	case domain.StatusSuccess:
		return pterm.Green("✓")
	case domain.StatusFailure:
		return pterm.Red("✗")
	case domain.StatusTimedOut:
		return pterm.Yellow("⧖")
	case domain.StatusSkipped:
		return pterm.Gray("⊘")
	default:
		return "?"
	}
}

func statusDetail(lr domain.LookupResult) string {
	switch lr.Status {
	case domain.StatusSuccess:
		return pterm.Gray(fmt.Sprintf("(%s)", lr.Elapsed.Round(time.Millisecond)))
	case domain.StatusFailure:
		return pterm.Red(fmt.Sprintf("[%s] %s", lr.ErrKind, lr.Message))
	case domain.StatusTimedOut:
		return pterm.Yellow("deadline exceeded")
	case domain.StatusSkipped:
		return pterm.Gray("skipped")
	default:
		return ""
	}
}

// riskStyle mapea el nivel de amenaza a un estilo de color.
func riskStyle(level domain.ThreatLevel) *pterm.Style {
	switch level {
	case domain.ThreatLevelCritical:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case domain.ThreatLevelHigh:
		return pterm.NewStyle(pterm.FgLightRed)
	case domain.ThreatLevelMedium:
		return pterm.NewStyle(pterm.FgYellow)
	default:
		return pterm.NewStyle(pterm.FgGreen)
	}
}
