package service

import (
	"fmt"

	"brew-stock/internal/stock"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	dailySheet   = "Daily"
	trendsSheet  = "Trends"
)

// renderWeeklyWorkbook writes the report into Summary, Daily and Trends sheets
func renderWeeklyWorkbook(report *stock.WeeklyReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}
	for _, name := range []string{dailySheet, trendsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	w := &sheetWriter{f: f, header: header}
	w.summary(report)
	w.daily(report)
	w.trends(report)
	if w.err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", w.err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so the row writers stay linear
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) row(sheet string, row int, values ...interface{}) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) headerRow(sheet string, row int, values ...interface{}) {
	w.row(sheet, row, values...)
	if w.err != nil {
		return
	}
	w.err = w.f.SetRowStyle(sheet, row, row, w.header)
}

func (w *sheetWriter) summary(report *stock.WeeklyReport) {
	w.headerRow(summarySheet, 1, "Week start", "Week end", "Total usage", "Products used")
	w.row(summarySheet, 2, report.WeekStart, report.WeekEnd,
		float64(report.Summary.TotalUsage), report.Summary.TotalProducts)

	row := 4
	w.headerRow(summarySheet, row, "Most used", "Total usage", "Unit")
	for _, p := range report.Summary.MostUsedProducts {
		row++
		w.row(summarySheet, row, p.Name, float64(p.TotalUsage), p.Unit)
	}

	row += 2
	w.headerRow(summarySheet, row, "Least used", "Total usage", "Unit")
	for _, p := range report.Summary.LeastUsedProducts {
		row++
		w.row(summarySheet, row, p.Name, float64(p.TotalUsage), p.Unit)
	}
}

func (w *sheetWriter) daily(report *stock.WeeklyReport) {
	w.headerRow(dailySheet, 1, "Date", "Product", "Used", "Unit")
	row := 1
	for _, day := range report.DailyUsage {
		for _, p := range day.Products {
			row++
			w.row(dailySheet, row, day.Date, p.Name, float64(p.Used), p.Unit)
		}
	}
}

func (w *sheetWriter) trends(report *stock.WeeklyReport) {
	w.headerRow(trendsSheet, 1, "Product", "Unit", "Current week", "Previous week", "Change %", "Trend")
	for i, t := range report.Trends {
		w.row(trendsSheet, i+2, t.Name, t.Unit,
			float64(t.CurrentWeek), float64(t.PreviousWeek), t.Percentage, string(t.Trend))
	}
}
