package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
)

// exportCSV renders a payroll report as CSV for spreadsheet import.
func exportCSV(r Report, name string) (*Result, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"employee", "department", "title", "gross", "tax", "net"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, line := range r.Lines {
		record := []string{
			line.EmployeeName,
			line.Department,
			line.JobTitle,
			centsToDecimal(line.GrossCents),
			centsToDecimal(line.TaxCents),
			centsToDecimal(line.NetCents),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	return &Result{
		Data:     buf.Bytes(),
		Filename: sanitizeFilename(name) + ".csv",
		MimeType: "text/csv",
	}, nil
}

func centsToDecimal(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + fmt.Sprintf("%02d", cents%100)
}
