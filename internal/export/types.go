// Package export renders payroll runs as downloadable reports.
package export

import (
	"errors"
	"time"
)

// Format represents the export output format
type Format string

const (
	FormatPDF Format = "pdf"
	FormatCSV Format = "csv"
)

// Report is the material for one payroll run report.
type Report struct {
	RunID       string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      string
	GeneratedAt time.Time
	TaxRate     float64
	Lines       []Line
}

// Line is one employee's row in a payroll report.
type Line struct {
	EmployeeName string
	Department   string
	JobTitle     string
	GrossCents   int64
	TaxCents     int64
	NetCents     int64
}

// Result contains the export output
type Result struct {
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates PDF export runtime dependencies are unavailable.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)
