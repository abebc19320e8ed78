// Package export renders finalized reports into Excel workbooks. The numbers
// come from the report structure untouched; this package owns only layout,
// naming and file writing.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/developersatisa/gestor-back-facturas-pendientes/internal/domain/entity"
)

const sheetName = "Informe"

// ExcelWriter writes a report workbook per export request.
type ExcelWriter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExcelWriter creates the report sink. outputDir is created on demand.
func NewExcelWriter(outputDir string, logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{outputDir: outputDir, logger: logger}
}

// Write renders the report and returns the workbook path.
func (w *ExcelWriter) Write(ctx context.Context, report *entity.Report, filter entity.BalanceFilter) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to drop default sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return "", fmt.Errorf("failed to create style: %w", err)
	}

	row := 1
	w.setCell(f, row, "A", "Informe de facturas pendientes")
	_ = f.SetCellStyle(sheetName, cell("A", row), cell("A", row), bold)
	row++
	w.setCell(f, row, "A", "Generado")
	w.setCell(f, row, "B", report.GeneratedAt.Format("2006-01-02 15:04"))
	row++
	w.setCell(f, row, "A", "Saldo")
	w.setCell(f, row, "B", string(filter))
	row += 2

	for _, section := range report.Sections {
		w.setCell(f, row, "A", fmt.Sprintf("%s - %s", section.Company, section.CompanyName))
		_ = f.SetCellStyle(sheetName, cell("A", row), cell("A", row), bold)
		row++

		headers := []string{"Tercero", "Cliente", "CIF", "Facturas", "Importe", "Estado"}
		for i, header := range headers {
			w.setCell(f, row, column(i), header)
		}
		_ = f.SetCellStyle(sheetName, cell("A", row), cell("F", row), bold)
		row++

		for _, line := range section.Clients {
			w.setCell(f, row, "A", line.Tercero)
			w.setCell(f, row, "B", line.ClientName)
			w.setCell(f, row, "C", line.ClientCIF)
			w.setCell(f, row, "D", line.Invoices)
			w.setCell(f, row, "E", line.Amount.StringFixed(2))
			w.setCell(f, row, "F", string(line.Status))
			row++
		}

		w.setCell(f, row, "D", "Total sociedad")
		w.setCell(f, row, "E", section.Total.StringFixed(2))
		_ = f.SetCellStyle(sheetName, cell("D", row), cell("E", row), bold)
		row += 2
	}

	w.setCell(f, row, "A", "Total general")
	w.setCell(f, row, "D", report.GrandTotal.UniqueClients)
	w.setCell(f, row, "E", report.GrandTotal.TotalAmount.StringFixed(2))
	_ = f.SetCellStyle(sheetName, cell("A", row), cell("E", row), bold)

	name := fmt.Sprintf("informe_facturas_%s_%s.xlsx", filter, report.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(w.outputDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	w.logger.Info("Report workbook written",
		zap.String("path", path),
		zap.Int("sections", len(report.Sections)))
	return path, nil
}

func (w *ExcelWriter) setCell(f *excelize.File, row int, col string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell(col, row), value); err != nil {
		w.logger.Warn("Failed to set cell",
			zap.String("cell", cell(col, row)),
			zap.Error(err))
	}
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func column(i int) string {
	return string(rune('A' + i))
}
