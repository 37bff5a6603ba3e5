package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/fwdiff/internal/autodiff"
	"github.com/san-kum/fwdiff/internal/gradcheck"
)

func row(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = lipgloss.NewStyle().Width(widths[i]).Render(c)
	}
	return strings.Join(parts, " ")
}

// Gradient renders a value and its partial derivatives against labels.
func Gradient(title string, labels []string, point []float64, v autodiff.Value) string {
	widths := []int{16, 16, 16}
	var b strings.Builder

	b.WriteString(Title.Render(title) + "\n")
	b.WriteString(MetricLabel.Render("value ") + MetricValue.Render(fmt.Sprintf("%.10g", v.Float())) + "\n\n")
	b.WriteString(HeaderStyle.Render(row([]string{"param", "at", "∂/∂param"}, widths)) + "\n")

	for i, label := range labels {
		b.WriteString(row([]string{
			label,
			fmt.Sprintf("%.6g", point[i]),
			MetricValue.Render(fmt.Sprintf("%.6g", v.Partial(i))),
		}, widths) + "\n")
	}

	return Panel.Render(strings.TrimRight(b.String(), "\n"))
}

// Check renders a gradient check report.
func Check(title string, r *gradcheck.Report, tol float64) string {
	widths := []int{16, 16, 16, 10}
	var b strings.Builder

	b.WriteString(Title.Render(title) + "\n")
	b.WriteString(HeaderStyle.Render(row([]string{"param", "forward", "finite diff", "rel err"}, widths)) + "\n")

	for _, c := range r.Components {
		errStyle := StatusOK
		if c.RelError > tol {
			errStyle = StatusFail
		}
		b.WriteString(row([]string{
			c.Label,
			fmt.Sprintf("%.8g", c.Exact),
			fmt.Sprintf("%.8g", c.Approx),
			errStyle.Render(fmt.Sprintf("%.2e", c.RelError)),
		}, widths) + "\n")
	}

	status := StatusOK.Render("PASS")
	if !r.Passed(tol) {
		status = StatusFail.Render("FAIL")
	}
	b.WriteString("\n" + status + Subtle.Render(fmt.Sprintf("  max rel err %.2e, tol %.0e", r.MaxRel, tol)))

	return Panel.Render(b.String())
}
