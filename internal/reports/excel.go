package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet     = "Summary"
	outstandingSheet = "Pending Payments"
)

// Excel renders the report as a workbook with a summary sheet and a
// pending-payments sheet.
func Excel(data Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if _, err := f.NewSheet(outstandingSheet); err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 11}})
	if err != nil {
		return nil, fmt.Errorf("create bold style: %w", err)
	}
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1A3A7A"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	s := data.Summary
	rows := [][]any{
		{"Generated", s.GeneratedAt},
		{},
		{"Total Leads", s.TotalLeads},
		{"Customers", s.Customers},
		{"Installations", s.Installations},
		{},
		{"Status", "Leads", "Share %"},
	}
	for _, c := range s.Conversion {
		rows = append(rows, []any{c.Status, c.Count, c.Percent})
	}
	income, _ := s.Totals.Income.Value.Float64()
	expenses, _ := s.Totals.Expenses.Value.Float64()
	net, _ := s.Totals.Net.Value.Float64()
	rows = append(rows,
		[]any{},
		[]any{"Total Income", income},
		[]any{"Total Expenses", expenses},
		[]any{"Net Profit", net},
	)

	if err := f.SetCellValue(summarySheet, "A1", "Business Report"); err != nil {
		return nil, err
	}
	f.SetCellStyle(summarySheet, "A1", "A1", bold)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	convHeader := 2 + 6
	f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", convHeader), fmt.Sprintf("C%d", convHeader), header)
	f.SetColWidth(summarySheet, "A", "A", 22)
	f.SetColWidth(summarySheet, "B", "C", 14)

	if err := f.SetSheetRow(outstandingSheet, "A1", &[]any{"Customer", "Phone", "Type", "Total", "Balance"}); err != nil {
		return nil, err
	}
	f.SetCellStyle(outstandingSheet, "A1", "E1", header)
	for i, o := range data.Outstanding {
		total, _ := o.Total.Float64()
		bal, _ := o.Balance.Float64()
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(outstandingSheet, cell, &[]any{o.Name, o.Phone, o.Type, total, bal}); err != nil {
			return nil, fmt.Errorf("write outstanding row %d: %w", i, err)
		}
	}
	f.SetColWidth(outstandingSheet, "A", "A", 28)
	f.SetColWidth(outstandingSheet, "B", "E", 16)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
