package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wonny/supersignal/internal/contracts"
)

// Text is the human-readable terminal report.
// Colors are only emitted when w is a terminal.
type Text struct{}

type textStyles struct {
	title    lipgloss.Style
	label    lipgloss.Style
	muted    lipgloss.Style
	errLine  lipgloss.Style
	severity map[contracts.Severity]lipgloss.Style
}

func newTextStyles(w io.Writer) textStyles {
	r := lipgloss.NewRenderer(w)
	badge := r.NewStyle().Bold(true).Padding(0, 1)
	return textStyles{
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("86")),
		label:   r.NewStyle().Bold(true).Width(18),
		muted:   r.NewStyle().Foreground(lipgloss.Color("240")),
		errLine: r.NewStyle().Foreground(lipgloss.Color("197")),
		severity: map[contracts.Severity]lipgloss.Style{
			contracts.SeverityNone:     badge.Foreground(lipgloss.Color("42")),
			contracts.SeverityInfo:     badge.Foreground(lipgloss.Color("39")),
			contracts.SeverityWarning:  badge.Foreground(lipgloss.Color("214")),
			contracts.SeverityCritical: badge.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("197")),
		},
	}
}

// Format implements Formatter
func (Text) Format(w io.Writer, res *contracts.BatchResult) error {
	st := newTextStyles(w)
	var b strings.Builder

	if res.VIX != nil {
		fmt.Fprintf(&b, "%s %.2f\n\n", st.label.Render("VIX"), *res.VIX)
	}

	for i, r := range res.Results {
		if i > 0 {
			b.WriteString("\n")
		}
		if r.Report == nil {
			fmt.Fprintf(&b, "%s\n", st.title.Render(r.Ticker))
			fmt.Fprintf(&b, "  %s\n", st.errLine.Render("error: "+errString(r.Err)))
			continue
		}
		writeReport(&b, st, r)
	}

	fmt.Fprintf(&b, "\n%s\n", st.muted.Render(fmt.Sprintf("run %s: %s", res.RunID, res.Outcome)))

	_, err := io.WriteString(w, b.String())
	return err
}

func writeReport(b *strings.Builder, st textStyles, r contracts.TickerResult) {
	rep := r.Report
	rec := rep.Record

	header := rep.Ticker
	if rec.Name != nil {
		header += "  " + *rec.Name
	}
	if rec.Exchange != nil {
		header += " (" + *rec.Exchange + ")"
	}
	fmt.Fprintf(b, "%s\n", st.title.Render(header))

	line := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(b, "  %s%s\n", st.label.Render(label), value)
	}

	line("Country", strOr(rec.Country, "unknown"))
	line("Headquarters", strOr(rec.HQAddress, strOr(rec.HQCountry, "unknown")))
	line("ADR", adrText(rec.IsADR))
	line("Float", countText(rec.FloatShares))
	line("Shares out", countText(rec.SharesOutstanding))
	line("Price", priceText(rec))
	line("52w range", rangeText(rec.Low52w, rec.High52w))
	if off := rec.PctOffHigh(); off != nil {
		line("Off 52w high", fmt.Sprintf("%.1f%%", *off))
	}
	if rec.MarketCap != nil {
		line("Market cap", humanCount(*rec.MarketCap))
	}
	line("Sector", joinKnown(" / ", rec.Sector, rec.Industry))
	if rec.Volume != nil {
		vol := humanCount(float64(*rec.Volume))
		if rv := rec.RelativeVolume(); rv != nil {
			vol += fmt.Sprintf(" (%.2fx 10d avg)", *rv)
		}
		line("Volume", vol)
	}
	if rec.ShortPctFloat != nil {
		short := fmt.Sprintf("%.2f%% of float", *rec.ShortPctFloat*100)
		if rec.ShortRatio != nil {
			short += fmt.Sprintf(", %.2f days to cover", *rec.ShortRatio)
		}
		line("Short interest", short)
	}
	line("Ownership", ownershipText(rec.InsiderPct, rec.InstitutionPct))
	if rec.TotalDebt != nil {
		debt := humanCount(*rec.TotalDebt)
		if rec.DebtToEquity != nil {
			debt += fmt.Sprintf(" (D/E %.1f%%)", *rec.DebtToEquity)
		}
		line("Total debt", debt)
	}
	if rec.OperatingCashFlow != nil {
		line("Operating CF", humanCount(*rec.OperatingCashFlow))
	}
	if rec.Employees != nil {
		line("Employees", fmt.Sprintf("%d", *rec.Employees))
	}
	line("Website", strOr(rec.Website, ""))
	line("Last split", strOr(rec.LastSplit, ""))
	if len(rec.Directors) > 0 {
		line("Directors", strings.Join(rec.Directors, "; "))
	}

	fmt.Fprintf(b, "  %s%s\n", st.label.Render("Overall"), st.severity[rep.Overall].Render(strings.ToUpper(rep.Overall.String())))
	for _, f := range rep.Flags {
		fmt.Fprintf(b, "    %s %s\n", st.severity[f.Severity].Render(strings.ToUpper(f.Severity.String())), f.Message)
	}

	for _, e := range r.SourceErrors {
		fmt.Fprintf(b, "  %s\n", st.muted.Render("source error: "+e.Error()))
	}
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func adrText(p *bool) string {
	switch {
	case p == nil:
		return "unknown"
	case *p:
		return "yes"
	default:
		return "no"
	}
}

func countText(p *int64) string {
	if p == nil {
		return "unknown"
	}
	return humanCount(float64(*p))
}

func priceText(rec *contracts.CanonicalRecord) string {
	if rec.Price == nil {
		return ""
	}
	s := fmt.Sprintf("%.2f", *rec.Price)
	if rec.PreMarketPrice != nil {
		s += fmt.Sprintf("  pre %.2f", *rec.PreMarketPrice)
	}
	if rec.PostMarketPrice != nil {
		s += fmt.Sprintf("  post %.2f", *rec.PostMarketPrice)
	}
	return s
}

func rangeText(low, high *float64) string {
	if low == nil || high == nil {
		return ""
	}
	return fmt.Sprintf("%.2f - %.2f", *low, *high)
}

func ownershipText(insider, inst *float64) string {
	var parts []string
	if insider != nil {
		parts = append(parts, fmt.Sprintf("insiders %.2f%%", *insider*100))
	}
	if inst != nil {
		parts = append(parts, fmt.Sprintf("institutions %.2f%%", *inst*100))
	}
	return strings.Join(parts, ", ")
}

func joinKnown(sep string, vals ...*string) string {
	var parts []string
	for _, v := range vals {
		if v != nil && *v != "" {
			parts = append(parts, *v)
		}
	}
	return strings.Join(parts, sep)
}
