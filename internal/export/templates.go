package export

import (
	"bytes"
	"fmt"
	"html/template"
)

var reportTemplate = template.Must(template.New("payroll").Funcs(template.FuncMap{
	"money": formatMoney,
}).Parse(payrollReportTemplate))

// templateData feeds the payroll report template.
type templateData struct {
	Report
	TotalGrossCents int64
	TotalTaxCents   int64
	TotalNetCents   int64
}

// RenderReportHTML renders a payroll run as a printable HTML page.
func RenderReportHTML(r Report) (string, error) {
	data := templateData{Report: r}
	for _, line := range r.Lines {
		data.TotalGrossCents += line.GrossCents
		data.TotalTaxCents += line.TaxCents
		data.TotalNetCents += line.NetCents
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// formatMoney renders cents as a dollar amount.
func formatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

const payrollReportTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Payroll {{.RunID}}</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.5; max-width: 800px; margin: 2rem auto; color: #222; }
    h1 { border-bottom: 2px solid #333; padding-bottom: 0.5rem; }
    .meta { color: #666; font-size: 0.9em; margin-bottom: 2rem; }
    table { width: 100%; border-collapse: collapse; }
    th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #ddd; }
    td.amount, th.amount { text-align: right; font-variant-numeric: tabular-nums; }
    tr.total td { font-weight: bold; border-top: 2px solid #333; }
  </style>
</head>
<body>
  <h1>Payroll Report</h1>
  <div class="meta">
    Run {{.RunID}} ({{.Status}}) &middot;
    {{.PeriodStart.Format "Jan 2, 2006"}} &ndash; {{.PeriodEnd.Format "Jan 2, 2006"}} &middot;
    tax rate {{printf "%.1f" .TaxRate}}% &middot;
    generated {{.GeneratedAt.Format "Jan 2, 2006 15:04"}}
  </div>
  <table>
    <tr>
      <th>Employee</th><th>Department</th><th>Title</th>
      <th class="amount">Gross</th><th class="amount">Tax</th><th class="amount">Net</th>
    </tr>
    {{range .Lines}}
    <tr>
      <td>{{.EmployeeName}}</td><td>{{.Department}}</td><td>{{.JobTitle}}</td>
      <td class="amount">{{money .GrossCents}}</td>
      <td class="amount">{{money .TaxCents}}</td>
      <td class="amount">{{money .NetCents}}</td>
    </tr>
    {{end}}
    <tr class="total">
      <td colspan="3">Total ({{len .Lines}} employees)</td>
      <td class="amount">{{money .TotalGrossCents}}</td>
      <td class="amount">{{money .TotalTaxCents}}</td>
      <td class="amount">{{money .TotalNetCents}}</td>
    </tr>
  </table>
</body>
</html>`
