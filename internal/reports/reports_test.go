package reports

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/VyasaPraveen/Pragathi-CRM/internal/aggregate"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/models"
	"github.com/VyasaPraveen/Pragathi-CRM/internal/views"
)

func sampleData() Data {
	summary := views.ReportsPage{
		TotalLeads:    3,
		Customers:     2,
		Installations: 1,
		Conversion: []aggregate.StatusShare{
			{Status: models.LeadInterested, Count: 2, Percent: 67},
			{Status: models.LeadConverted, Count: 1, Percent: 33},
		},
		Totals: views.RevenueTotals{
			Income:   views.Money{Value: decimal.NewFromInt(50000)},
			Expenses: views.Money{Value: decimal.NewFromInt(12000)},
			Net:      views.Money{Value: decimal.NewFromInt(38000)},
		},
		GeneratedAt: "01 Mar 2024, 10:00 AM",
	}
	customers := []models.Customer{
		{Name: "Paid Up", TotalPrice: 1000, AdvanceAmount: 1000},
		{Name: "Small", Phone: "91", PaymentType: models.PaymentCash, TotalPrice: 1000, AdvanceAmount: 900},
		{Name: "Large", Phone: "92", PaymentType: models.PaymentCash, TotalPrice: 250000, AdvanceAmount: 50000},
	}
	return NewData(summary, customers)
}

func TestNewDataOrdersOutstanding(t *testing.T) {
	d := sampleData()
	if len(d.Outstanding) != 2 {
		t.Fatalf("expected 2 outstanding customers, got %d", len(d.Outstanding))
	}
	if d.Outstanding[0].Name != "Large" || d.Outstanding[0].Balance.IntPart() != 200000 {
		t.Errorf("first = %+v", d.Outstanding[0])
	}
}

func TestRupees(t *testing.T) {
	if got := rupees(decimal.NewFromInt(38000)); got != "Rs. 38,000" {
		t.Errorf("rupees = %q", got)
	}
}

func TestPDF(t *testing.T) {
	out, err := PDF(sampleData())
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF: %q", out[:min(len(out), 8)])
	}
}

func TestExcel(t *testing.T) {
	out, err := Excel(sampleData())
	if err != nil {
		t.Fatalf("Excel: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != summarySheet || sheets[1] != outstandingSheet {
		t.Fatalf("sheets = %v", sheets)
	}

	if v, _ := f.GetCellValue(summarySheet, "A1"); v != "Business Report" {
		t.Errorf("A1 = %q", v)
	}
	if v, _ := f.GetCellValue(summarySheet, "B4"); v != "3" {
		t.Errorf("total leads cell = %q", v)
	}
	if v, _ := f.GetCellValue(summarySheet, "A8"); v != "Status" {
		t.Errorf("conversion header = %q", v)
	}
	if v, _ := f.GetCellValue(outstandingSheet, "A2"); v != "Large" {
		t.Errorf("first outstanding = %q", v)
	}
	if v, _ := f.GetCellValue(outstandingSheet, "E3"); v != "100" {
		t.Errorf("small balance = %q", v)
	}
}
