// internal/adapters/output/table.go
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"exposechain/internal/core/domain"
)

// TablePresenter imprime un resumen plano del escaneo con tabwriter.
// Es la salida sin adornos; el reporte con color vive en platform/ui.
type TablePresenter struct {
	w io.Writer
}

// NewTablePresenter crea un presenter que escribe en w (stdout si nil).
func NewTablePresenter(w io.Writer) *TablePresenter {
	if w == nil {
		w = os.Stdout
	}
	return &TablePresenter{w: w}
}

// Render imprime el resumen del resultado.
func (p *TablePresenter) Render(result *domain.ScanResult) error {
	w := tabwriter.NewWriter(p.w, 2, 4, 2, ' ', 0)

	fmt.Fprintf(w, "\n=== ExposeChain Scan Results ===\n")
	fmt.Fprintf(w, "Target:\t%s (%s)\n", result.Target.Normalized, result.Target.Kind)
	fmt.Fprintf(w, "Type:\t%s\n", result.ScanType)
	fmt.Fprintf(w, "Duration:\t%s\n", result.Metadata.Duration)
	fmt.Fprintf(w, "Sources:\t%s\n", strings.Join(result.Metadata.SourcesDispatched, ", "))
	fmt.Fprintf(w, "Risk:\t%d/100 (%s)\n\n", result.Risk.Score, result.Risk.Level)

	fmt.Fprintln(w, "SOURCE\tSTATUS\tELAPSED\tDETAIL")
	fmt.Fprintln(w, "------\t------\t-------\t------")
	for _, lr := range result.Lookups() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			lr.Source,
			lr.Status,
			elapsedOrDash(lr),
			lookupDetail(lr),
		)
	}

	if len(result.Risk.Findings) > 0 {
		fmt.Fprintf(w, "\nFINDING\tSEVERITY\tSOURCE\n")
		fmt.Fprintln(w, "-------\t--------\t------")
		for _, f := range result.Risk.Findings {
			fmt.Fprintf(w, "%s\t%d\t%s\n", f.Description, f.Severity, f.Source)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to flush table: %w", err)
	}

	if len(result.Risk.Recommendations) > 0 {
		fmt.Fprintf(p.w, "\nRecommendations:\n")
		for i, rec := range result.Risk.Recommendations {
			fmt.Fprintf(p.w, "  %d. %s\n", i+1, rec)
		}
	}
	fmt.Fprintln(p.w)
	return nil
}

func elapsedOrDash(lr domain.LookupResult) string {
	if lr.Elapsed > 0 {
		return lr.Elapsed.String()
	}
	return "-"
}

// lookupDetail resume el payload o el error de una fuente en una línea.
func lookupDetail(lr domain.LookupResult) string {
	switch lr.Status {
	case domain.StatusFailure:
		return fmt.Sprintf("[%s] %s", lr.ErrKind, lr.Message)
	case domain.StatusTimedOut:
		return "deadline exceeded"
	case domain.StatusSkipped:
		return "not dispatched for this scan type"
	}

	switch data := lr.Data.(type) {
	case *domain.DNSRecords:
		return fmt.Sprintf("%d addresses, %d MX, %d NS, %d TXT",
			len(data.IPs()), len(data.MX), len(data.NS), len(data.TXT))
	case *domain.WhoisInfo:
		if data.Registrar == "" && data.CreatedDate.IsZero() {
			return "no registration data"
		}
		return fmt.Sprintf("registrar=%s, expires=%s", data.Registrar, dateOrDash(data.ExpirationDate))
	case *domain.CertInfo:
		return fmt.Sprintf("issuer=%s, expires=%s, key=%s", data.Issuer, dateOrDash(data.NotAfter), data.KeyStrength)
	case *domain.GeoInfo:
		return fmt.Sprintf("%s, %s (%s)", data.City, data.Country, data.ISP)
	default:
		return ""
	}
}

func dateOrDash(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
