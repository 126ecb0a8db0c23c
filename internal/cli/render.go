package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Veraticus/finpulse/internal/common"
	"github.com/Veraticus/finpulse/internal/model"
	"github.com/Veraticus/finpulse/internal/service"
	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Format selects how results are written.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an --output flag value.
func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", common.InvalidInputf("unknown output format %q (want text, json or yaml)", raw)
	}
}

// encode writes v as JSON or YAML. It reports false for the text format.
func encode(w io.Writer, v any, format Format) (bool, error) {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

// RenderAnalysis writes a single analysis.
func RenderAnalysis(w io.Writer, customerID string, a *model.Analysis, format Format) error {
	if done, err := encode(w, a, format); done {
		return err
	}

	var b strings.Builder
	title := "Analysis"
	if customerID != "" {
		title += " for " + customerID
	}
	b.WriteString(FormatTitle(title) + "\n")

	in := a.Insights
	fmt.Fprintf(&b, "%s total spend %s, average %s, risk %s, stability %.2f\n",
		BoldStyle.Render("Insights:"),
		in.TotalSpend.StringFixed(2), in.AvgTransaction.StringFixed(2), in.RiskLevel, in.StabilityScore)
	fmt.Fprintf(&b, "%s %s / %s (confidence %d, %s)\n",
		BoldStyle.Render("Persona:"),
		a.Classification.Persona, a.Classification.LifeEvent, a.Classification.Confidence, a.Classification.Source)
	b.WriteString(SubtleStyle.Render(a.Classification.Reason) + "\n")

	gate := fmt.Sprintf("DTI %.2f vs %.2f: %s", a.Verdict.Ratio, a.Verdict.Threshold, a.Verdict.Status)
	if a.Verdict.Blocked() {
		b.WriteString(FormatWarning(gate) + "\n")
	} else {
		b.WriteString(FormatSuccess(gate) + "\n")
	}

	if len(a.Recommendations) > 0 {
		b.WriteString("\n" + BoldStyle.Render("Recommendations") + "\n")
		for i, rec := range a.Recommendations {
			fmt.Fprintf(&b, "  %d. %s (%d%%)\n", i+1, rec.Name, rec.Confidence)
			b.WriteString("     " + SubtleStyle.Render(rec.Reason) + "\n")
		}
	}

	if sub := a.Substitution; sub != nil {
		b.WriteString(FormatWarning(fmt.Sprintf("%s replaced by %s (%s)",
			model.ProductName(sub.From), model.ProductName(sub.To), sub.Reason)) + "\n")
	}

	if _, err := fmt.Fprintln(w, b.String()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, renderAction(a.Action))
	return err
}

func renderAction(action model.Action) string {
	title := actionStyle(action.Type).Render(actionIcon(action.Type) + " " + string(action.Type))
	body := action.Message
	if action.HasProduct() {
		body += "\n" + SubtleStyle.Render("product: "+model.ProductName(action.Product))
	}
	return RenderBox(title, body)
}

// RenderHistory writes audit records, newest first.
func RenderHistory(w io.Writer, records []service.AnalysisRecord, format Format) error {
	if done, err := encode(w, records, format); done {
		return err
	}

	if len(records) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No analyses recorded yet"))
		return err
	}

	header := []string{"WHEN", "CUSTOMER", "PERSONA", "ACTION", "PRODUCT", "DTI", "GATE"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.CustomerID,
			string(r.Persona),
			string(r.ActionType),
			r.Product,
			fmt.Sprintf("%.2f", r.DTIRatio),
			string(r.GuardrailStatus),
		})
	}

	_, err := fmt.Fprintln(w, renderTable(header, rows))
	return err
}

// RenderStats writes the audit aggregates.
func RenderStats(w io.Writer, stats *service.AuditStats, format Format) error {
	if done, err := encode(w, stats, format); done {
		return err
	}

	var b strings.Builder
	b.WriteString(FormatTitle("Audit statistics") + "\n")
	fmt.Fprintf(&b, "Analyses: %d  Customers: %d  Guardrail alerts: %d  Avg confidence: %.1f\n",
		stats.TotalAnalyses, stats.UniqueCustomers, stats.GuardrailAlerts, stats.AverageConfidence)

	writeDistribution(&b, "Actions", stringKeys(stats.ActionDistribution))
	writeDistribution(&b, "Personas", stringKeys(stats.PersonaDistribution))
	writeDistribution(&b, "Products", stats.ProductDistribution)

	_, err := fmt.Fprint(w, b.String())
	return err
}

func stringKeys[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

func writeDistribution(b *strings.Builder, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("\n" + BoldStyle.Render(title) + "\n")
	for _, k := range keys {
		fmt.Fprintf(b, "  %-24s %d\n", k, counts[k])
	}
}

// RenderBatchSummary writes the one-line outcome of a batch run.
func RenderBatchSummary(w io.Writer, total, failed int, counts map[model.ActionType]int) error {
	parts := make([]string, 0, len(counts))
	for _, t := range []model.ActionType{model.ActionProactiveOffer, model.ActionSafetyAdvice, model.ActionNeutral} {
		parts = append(parts, fmt.Sprintf("%s=%d", t, counts[t]))
	}

	line := fmt.Sprintf("Analyzed %d customers (%s)", total-failed, strings.Join(parts, ", "))
	msg := FormatSuccess(line)
	if failed > 0 {
		msg += "\n" + FormatError(fmt.Sprintf("%d statements failed", failed))
	}
	_, err := fmt.Fprintln(w, msg)
	return err
}

func renderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		out := make([]string, len(cells))
		for i, cell := range cells {
			out[i] = style.Width(widths[i] + 2).Render(cell)
		}
		return lipgloss.JoinHorizontal(lipgloss.Top, out...)
	}

	lines := []string{line(header, TableHeaderStyle)}
	for _, row := range rows {
		lines = append(lines, line(row, TableCellStyle))
	}
	return strings.Join(lines, "\n")
}
