package reports

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf/v2"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
)

// PDF renders the report on A4 portrait.
func PDF(data Data) ([]byte, error) {
	s := data.Summary
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, views.BusinessName+" - Business Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", s.GeneratedAt), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Counts
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Overview", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, fmt.Sprintf("Total Leads: %d", s.TotalLeads), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Customers: %d", s.Customers), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Installations: %d", s.Installations), "1", 1, "C", false, 0, "")
	pdf.Ln(5)

	// Conversion
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Lead Conversion", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(110, 7, "Status", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Leads", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Share", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, c := range s.Conversion {
		pdf.CellFormat(110, 6, c.Status, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d", c.Count), "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%d%%", c.Percent), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(5)

	// Revenue
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Revenue Breakdown", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, "Total Income", "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, rupees(s.Totals.Income.Value), "1", 1, "R", false, 0, "")
	pdf.CellFormat(95, 7, "Total Expenses", "1", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, rupees(s.Totals.Expenses.Value), "1", 1, "R", false, 0, "")

	if s.Totals.Net.Value.IsNegative() {
		pdf.SetFillColor(255, 200, 200)
	} else {
		pdf.SetFillColor(200, 255, 200)
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(95, 9, "Net Profit", "1", 0, "L", true, 0, "")
	pdf.CellFormat(95, 9, rupees(s.Totals.Net.Value), "1", 1, "R", true, 0, "")

	if len(data.Outstanding) > 0 {
		pdf.Ln(5)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(190, 8, "Pending Payments", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(60, 7, "Customer", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Phone", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 7, "Type", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Total", "1", 0, "C", true, 0, "")
		pdf.CellFormat(35, 7, "Balance", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		for _, o := range data.Outstanding {
			pdf.CellFormat(60, 6, o.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(35, 6, o.Phone, "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, o.Type, "1", 0, "C", false, 0, "")
			pdf.CellFormat(35, 6, rupees(o.Total), "1", 0, "R", false, 0, "")
			pdf.CellFormat(35, 6, rupees(o.Balance), "1", 1, "R", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
