package export

import (
	"context"
	"fmt"
	"time"
)

// DataStore defines the interface for data access
type DataStore interface {
	GetPayrollRun(ctx context.Context, runID string) (RunInfo, error)
	ListPayrollLines(ctx context.Context, runID string) ([]Line, error)
}

// RunInfo holds payroll run metadata.
type RunInfo struct {
	ID          string
	PeriodStart time.Time
	PeriodEnd   time.Time
	Status      string
	TaxRate     float64
}

// Service provides payroll report export functionality
type Service struct {
	store DataStore
}

// NewService creates a new export service
func NewService(store DataStore) *Service {
	return &Service{store: store}
}

// Export generates a payroll report in the requested format.
func (s *Service) Export(ctx context.Context, runID string, format Format) (*Result, error) {
	run, err := s.store.GetPayrollRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("get payroll run: %w", err)
	}

	lines, err := s.store.ListPayrollLines(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list payroll lines: %w", err)
	}

	report := Report{
		RunID:       run.ID,
		PeriodStart: run.PeriodStart,
		PeriodEnd:   run.PeriodEnd,
		Status:      run.Status,
		TaxRate:     run.TaxRate,
		GeneratedAt: time.Now(),
		Lines:       lines,
	}

	name := "payroll-" + run.PeriodStart.Format("2006-01-02")

	switch format {
	case FormatPDF:
		html, err := RenderReportHTML(report)
		if err != nil {
			return nil, fmt.Errorf("render template: %w", err)
		}
		return exportPDF(html, name)
	case FormatCSV:
		return exportCSV(report, name)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
