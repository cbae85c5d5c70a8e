// Package report renders validation outcomes into distributable documents.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/omcsuite/daily-delivery/internal/domain/validation"
)

const (
	summarySheet = "Summary"
	detailSheet  = "Deliveries"
	issueSheet   = "Findings"
)

// BatchReportWriter renders a batch validation result as an Excel workbook
type BatchReportWriter struct {
	logger *zap.Logger
}

// NewBatchReportWriter creates a batch report writer
func NewBatchReportWriter(logger *zap.Logger) *BatchReportWriter {
	return &BatchReportWriter{logger: logger}
}

// Write renders the workbook to w
func (bw *BatchReportWriter) Write(batch *validation.BatchResult, w io.Writer) error {
	bw.logger.Info("Rendering batch validation report",
		zap.String("batch_id", batch.BatchSummary.BatchID),
		zap.Int("deliveries", batch.TotalValidated))

	f := excelize.NewFile()
	defer f.Close()

	if err := bw.writeSummary(f, batch); err != nil {
		return err
	}
	if err := bw.writeDeliveries(f, batch); err != nil {
		return err
	}
	if err := bw.writeFindings(f, batch); err != nil {
		return err
	}

	// Drop the default sheet created by excelize
	if idx, err := f.GetSheetIndex(summarySheet); err == nil {
		f.SetActiveSheet(idx)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to remove default sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (bw *BatchReportWriter) writeSummary(f *excelize.File, batch *validation.BatchResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	s := batch.BatchSummary
	rows := [][]interface{}{
		{"Batch ID", s.BatchID},
		{"Validated at", s.StartedAt.Format("2006-01-02 15:04:05")},
		{"Processing time", s.TotalProcessingTime.String()},
		{"Deliveries processed", s.DeliveriesProcessed},
		{"Valid deliveries", s.ValidDeliveries},
		{"Invalid deliveries", s.InvalidDeliveries},
		{"Average score", s.AverageScore},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	line := len(rows) + 2
	if err := bw.writeList(f, summarySheet, line, "Common issues", s.CommonIssues); err != nil {
		return err
	}
	line += len(s.CommonIssues) + 2
	return bw.writeList(f, summarySheet, line, "Recommended actions", s.RecommendedActions)
}

func (bw *BatchReportWriter) writeList(f *excelize.File, sheet string, startRow int, title string, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, startRow)
	if err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, cell, title); err != nil {
		return err
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(2, startRow+1+i)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func (bw *BatchReportWriter) writeDeliveries(f *excelize.File, batch *validation.BatchResult) error {
	if _, err := f.NewSheet(detailSheet); err != nil {
		return fmt.Errorf("failed to create delivery sheet: %w", err)
	}

	header := []interface{}{"Delivery ID", "Valid", "Score", "Status", "Errors", "Warnings", "Compliance issues", "Quality issues"}
	if err := f.SetSheetRow(detailSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write delivery header: %w", err)
	}

	for i, entry := range batch.Results {
		r := entry.Result
		row := []interface{}{
			entry.DeliveryID,
			r.IsValid,
			r.Score,
			r.Summary.OverallStatus,
			len(r.Errors),
			len(r.Warnings),
			len(r.ComplianceIssues),
			len(r.DataQualityIssues),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(detailSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write delivery row: %w", err)
		}
	}
	return nil
}

func (bw *BatchReportWriter) writeFindings(f *excelize.File, batch *validation.BatchResult) error {
	if _, err := f.NewSheet(issueSheet); err != nil {
		return fmt.Errorf("failed to create findings sheet: %w", err)
	}

	header := []interface{}{"Delivery ID", "Kind", "Code", "Severity", "Field", "Message"}
	if err := f.SetSheetRow(issueSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write findings header: %w", err)
	}

	line := 2
	writeRow := func(values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, line)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(issueSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write finding row: %w", err)
		}
		line++
		return nil
	}

	for _, entry := range batch.Results {
		for _, e := range entry.Result.Errors {
			if err := writeRow([]interface{}{entry.DeliveryID, "ERROR", e.ErrorCode, e.Severity, e.FieldName, e.ErrorMessage}); err != nil {
				return err
			}
		}
		for _, w := range entry.Result.Warnings {
			if err := writeRow([]interface{}{entry.DeliveryID, "WARNING", w.WarningCode, "", w.FieldName, w.WarningMessage}); err != nil {
				return err
			}
		}
		for _, c := range entry.Result.ComplianceIssues {
			if err := writeRow([]interface{}{entry.DeliveryID, "COMPLIANCE", c.IssueCode, c.ViolationSeverity, "", c.IssueDescription}); err != nil {
				return err
			}
		}
	}
	return nil
}
